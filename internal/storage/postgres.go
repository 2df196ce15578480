package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/config"
)

// PostgresStorage keeps the paper catalog in two tables (papers,
// paper_weights) and serves it as a catalog.Source.
type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

var _ catalog.Source = (*PostgresStorage)(nil)

type weightRow struct {
	PaperID     int64           `db:"paper_id"`
	PaperName   string          `db:"paper_name"`
	Label       sql.NullString  `db:"valor"`
	BaseDivisor sql.NullFloat64 `db:"valor_base_lombada"`
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = cfg.ConnectTimeout
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.Name))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}, nil
}

func (s *PostgresStorage) Name() string {
	return "postgres"
}

// Load reads the whole catalog in one query. Papers without weights are kept.
func (s *PostgresStorage) Load(ctx context.Context) (*catalog.Catalog, error) {
	const query = `
        SELECT p.id AS paper_id, p.nome AS paper_name, w.valor, w.valor_base_lombada
        FROM papers p
        LEFT JOIN paper_weights w ON w.paper_id = p.id
        ORDER BY p.position, p.id, w.position, w.id
    `

	var rows []weightRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to select catalog: %w", err)
	}

	return catalog.New(assemblePapers(rows)), nil
}

// ReplaceCatalog swaps the stored catalog for c in one transaction.
func (s *PostgresStorage) ReplaceCatalog(ctx context.Context, c *catalog.Catalog) error {
	const operation = "storage.ReplaceCatalog"

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", operation, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM paper_weights`); err != nil {
		return fmt.Errorf("%s: clear weights: %w", operation, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM papers`); err != nil {
		return fmt.Errorf("%s: clear papers: %w", operation, err)
	}

	for i, p := range c.Papers() {
		var paperID int64
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO papers (nome, position) VALUES ($1, $2) RETURNING id`,
			p.Name, i,
		).Scan(&paperID)
		if err != nil {
			return fmt.Errorf("%s: insert paper %q: %w", operation, p.Name, err)
		}

		for j, w := range p.Weights {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO paper_weights (paper_id, valor, valor_base_lombada, position) VALUES ($1, $2, $3, $4)`,
				paperID, w.Label, w.BaseDivisor, j,
			)
			if err != nil {
				return fmt.Errorf("%s: insert weight %q of %q: %w", operation, w.Label, p.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", operation, err)
	}

	s.logger.Info("Paper catalog replaced", zap.Int("papers", c.Len()))
	return nil
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// assemblePapers folds the joined rows back into papers, keeping row order.
// A NULL label comes from a paper with no weights.
func assemblePapers(rows []weightRow) []catalog.PaperType {
	var papers []catalog.PaperType
	index := make(map[int64]int)

	for _, r := range rows {
		i, ok := index[r.PaperID]
		if !ok {
			papers = append(papers, catalog.PaperType{Name: r.PaperName})
			i = len(papers) - 1
			index[r.PaperID] = i
		}
		if !r.Label.Valid {
			continue
		}
		papers[i].Weights = append(papers[i].Weights, catalog.WeightEntry{
			Label:       r.Label.String,
			BaseDivisor: r.BaseDivisor.Float64,
		})
	}
	return papers
}
