package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/config"
)

// BotAPI is the part of tgbotapi.BotAPI the bot talks to.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ BotAPI = (*tgbotapi.BotAPI)(nil)

type Bot struct {
	api      BotAPI
	logger   *zap.Logger
	state    *StateStorage
	catalog  catalog.Result
	cfg      *config.Config
	limiter  *RateLimiter
	now      func() time.Time
	mu       sync.Mutex
	handlers map[string]func(context.Context, int64, string)
}

const authorizeTimeout = 2 * time.Minute

// Authorize connects to Telegram, retrying network failures. A rejected
// token is not retried.
func Authorize(ctx context.Context, token string, debug bool, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	var botAPI *tgbotapi.BotAPI

	operation := func() error {
		api, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == 401 {
				return backoff.Permanent(err)
			}
			return err
		}
		botAPI = api
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = authorizeTimeout

	notify := func(err error, next time.Duration) {
		logger.Warn("Telegram authorization failed, retrying",
			zap.Duration("retry_in", next),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(expBackoff, ctx), notify); err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	botAPI.Debug = debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return botAPI, nil
}

func New(
	api BotAPI,
	state *StateStorage,
	res catalog.Result,
	cfg *config.Config,
	limiter *RateLimiter,
	logger *zap.Logger,
) *Bot {
	b := &Bot{
		api:     api,
		logger:  logger,
		state:   state,
		catalog: res,
		cfg:     cfg,
		limiter: limiter,
		now:     time.Now,
	}

	b.registerHandlers()
	return b
}

// text input handlers by step; buttons arrive as callbacks
func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		StepPaperSelection:   b.handlePaperText,
		StepWeightSelection:  b.handleWeightText,
		StepPageCount:        b.handlePageCount,
		StepBindingSelection: b.handlePageCount,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.api.StopReceivingUpdates()
			return nil

		case update, ok := <-updates:
			if !ok {
				b.logger.Info("Updates channel closed")
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if update.Message != nil {
		b.processMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		b.processCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao processar a solicitação")
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, msg.Text)
	} else {
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback",
			zap.String("callback_id", callback.ID),
			zap.Error(err))
	}

	if callback.Message == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	data := callback.Data

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", data))

	switch prefix, value, _ := cutCallback(data); prefix {
	case CallbackPaper:
		b.handlePaperSelection(ctx, chatID, value)
	case CallbackWeight:
		b.handleWeightSelection(ctx, chatID, value)
	case CallbackBinding:
		b.handleBindingToggle(ctx, chatID, callback.Message.MessageID, value)
	case CallbackCalculate:
		b.handleCalculate(ctx, chatID)
	case CallbackRestart:
		b.startForm(ctx, chatID)
	default:
		b.logger.Warn("Unknown callback",
			zap.Int64("chat_id", chatID),
			zap.String("data", data))
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.sendMessage(msg)
}

func (b *Bot) sendError(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "❌ "+text)
	b.sendMessage(msg)
}
