package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lombada-bot/internal/bot"
	"lombada-bot/internal/catalog"
	"lombada-bot/internal/config"
	"lombada-bot/internal/httpapi"
	"lombada-bot/internal/storage"
	"lombada-bot/pkg/logger"
	"lombada-bot/pkg/redis"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	if err := cfg.ValidateService(); err != nil {
		zapLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("Service stopped with error", zap.Error(err))
	}

	zapLogger.Info("Service shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) (err error) {
	src, closeSource, err := storage.NewCatalogSource(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to init catalog source: %w", err)
	}
	defer func() {
		err = multierr.Append(err, closeSource())
	}()

	// a failed load is not fatal: both surfaces show the load error instead
	res := catalog.Load(ctx, src, log)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	record := func(e error) {
		mu.Lock()
		errs = multierr.Append(errs, e)
		mu.Unlock()
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	if cfg.HTTP.Addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer stop()
			record(serveHTTP(runCtx, cfg.HTTP, res, log))
		}()
	}

	if cfg.Telegram.Token != "" {
		redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			stop()
			wg.Wait()
			return multierr.Append(errs, fmt.Errorf("failed to connect to Redis: %w", err))
		}

		botAPI, err := bot.Authorize(ctx, cfg.Telegram.Token, cfg.Telegram.Debug, log)
		if err != nil {
			stop()
			wg.Wait()
			return multierr.Append(errs, err)
		}

		tgBot := bot.New(
			botAPI,
			bot.NewStateStorage(redisClient),
			res,
			cfg,
			bot.NewRateLimiter(redisClient, cfg.RateLimit),
			log,
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer stop()
			record(tgBot.Start(runCtx))
		}()
	}

	wg.Wait()
	return errs
}

func serveHTTP(ctx context.Context, cfg config.HTTPConfig, res catalog.Result, log *zap.Logger) error {
	e := httpapi.New(res, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Addr))
		errCh <- e.Start(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server")
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
