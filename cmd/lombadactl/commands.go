package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/form"
	"lombada-bot/internal/lombada"
	"lombada-bot/internal/storage"
)

const defaultReportsDir = "reports"

// loadCatalog reads the configured catalog. Unlike the service, a failed load
// ends the command.
func (e *env) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	src, closeSource, err := storage.NewCatalogSource(ctx, e.cfg, e.log)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	res := catalog.Load(ctx, src, e.log)
	if !res.OK() {
		return nil, res.Err
	}
	return res.Catalog, nil
}

func (e *env) calc(ctx context.Context, cmd *cli.Command) error {
	c, err := e.loadCatalog(ctx)
	if err != nil {
		return err
	}

	msg := form.Submit(c, form.Values{
		Paper:  cmd.String("paper"),
		Weight: cmd.String("weight"),
		Pages:  cmd.String("pages"),
		Binding: lombada.Binding{
			CaseBound: cmd.Bool("cartonado"),
			Milled:    cmd.Bool("fresado"),
			Sewn:      cmd.Bool("costurado"),
		},
	})
	if msg.IsError() {
		return errors.New(msg.Text)
	}

	fmt.Fprintln(e.out, msg.Text)
	return nil
}

func (e *env) papers(ctx context.Context, _ *cli.Command) error {
	c, err := e.loadCatalog(ctx)
	if err != nil {
		return err
	}

	for _, p := range c.Papers() {
		fmt.Fprintf(e.out, "%s\t%d\n", p.Name, len(p.Weights))
	}
	return nil
}

func (e *env) weights(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one PAPER argument")
	}
	paper := cmd.Args().First()

	c, err := e.loadCatalog(ctx)
	if err != nil {
		return err
	}

	sel := form.WeightSelect(c, paper)
	if sel.Disabled {
		return fmt.Errorf("%s: %s", paper, form.NoWeights)
	}

	for _, o := range sel.Choices() {
		w, _ := c.Weight(paper, o.Value)
		fmt.Fprintf(e.out, "%s\t%g\n", o.Text, w.BaseDivisor)
	}
	return nil
}

func (e *env) dump(ctx context.Context, cmd *cli.Command) error {
	format := catalog.Format(strings.ToLower(cmd.String("format")))
	if format != catalog.FormatJSON && format != catalog.FormatYAML {
		return fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}

	c, err := e.loadCatalog(ctx)
	if err != nil {
		return err
	}

	data, err := catalog.Encode(c, format)
	if err != nil {
		return err
	}

	dest := cmd.Args().First()
	if dest == "" {
		_, err = e.out.Write(data)
		return err
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", dest, err)
	}
	e.log.Info("Catalog written", zap.String("path", dest), zap.String("format", string(format)))
	return nil
}

func (e *env) export(ctx context.Context, cmd *cli.Command) error {
	c, err := e.loadCatalog(ctx)
	if err != nil {
		return err
	}

	dest := cmd.Args().First()
	if dest == "" {
		dest = defaultReportsDir
	}

	var path string
	if strings.EqualFold(filepath.Ext(dest), ".xlsx") {
		data, err := storage.CatalogSpreadsheet(c)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("unable to write '%s': %w", dest, err)
		}
		path = dest
	} else {
		path, err = storage.ExportCatalogToExcel(c, dest, time.Now())
		if err != nil {
			return err
		}
	}

	e.log.Info("Catalog spreadsheet written", zap.String("path", path))
	fmt.Fprintln(e.out, path)
	return nil
}

func (e *env) openPostgres(ctx context.Context) (*storage.PostgresStorage, error) {
	if err := e.cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return storage.NewPostgresStorage(ctx, e.cfg.Database, e.log)
}

func (e *env) importCatalog(ctx context.Context, cmd *cli.Command) (err error) {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one FILE argument")
	}

	// the import file is read strictly, inconsistencies are refused
	c, err := catalog.FileSource{Path: cmd.Args().First()}.Load(ctx)
	if err != nil {
		return err
	}
	if err := c.Check(); err != nil {
		return fmt.Errorf("catalog has inconsistencies: %w", err)
	}

	pg, err := e.openPostgres(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, pg.Close())
	}()

	return pg.ReplaceCatalog(ctx, c)
}

type migrateDirection int

const (
	migrateUp migrateDirection = iota
	migrateDown
	migrateStatus
)

func (e *env) migrate(direction migrateDirection) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) (err error) {
		pg, err := e.openPostgres(ctx)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, pg.Close())
		}()

		switch direction {
		case migrateDown:
			return pg.RollbackMigration(ctx)
		case migrateStatus:
			return pg.MigrationStatus(ctx)
		default:
			return pg.RunMigrations(ctx)
		}
	}
}
