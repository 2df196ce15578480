package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/config"
	"lombada-bot/pkg/api"
)

// NewCatalogSource builds the source named by CATALOG_SOURCE. The returned
// close function releases the database connection, if one was opened.
func NewCatalogSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (catalog.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Catalog.Source {
	case config.CatalogSourceFile:
		return catalog.FileSource{Path: cfg.Catalog.Path}, noop, nil

	case config.CatalogSourceHTTP:
		client := api.NewClient(cfg.Catalog.URL, cfg.Catalog.Token, cfg.Catalog.Timeout, logger)
		return catalog.HTTPSource{URL: cfg.Catalog.URL, Fetcher: client}, noop, nil

	case config.CatalogSourcePostgres:
		pg, err := NewPostgresStorage(ctx, cfg.Database, logger)
		if err != nil {
			return nil, noop, err
		}
		return pg, pg.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
}
