package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"lombada-bot/internal/config"
	"lombada-bot/pkg/logger"
)

// env is shared by all subcommands once the command line is parsed
type env struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func (e *env) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help only
		return ctx, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return ctx, fmt.Errorf("unable to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if cmd.Bool("debug") {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return ctx, err
	}

	if path := cmd.String("catalog"); path != "" {
		cfg.Catalog.Source = config.CatalogSourceFile
		cfg.Catalog.Path = path
	}

	e.cfg = cfg
	e.log = log
	return ctx, nil
}

func (e *env) after(context.Context, *cli.Command) error {
	if e.log != nil {
		_ = e.log.Sync()
	}
	return nil
}

func newApp(e *env) *cli.Command {
	return &cli.Command{
		Name:            "lombadactl",
		Usage:           "spine width calculator and paper catalog maintenance",
		HideHelpCommand: true,
		Before:          e.before,
		After:           e.after,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Aliases: []string{"c"}, Usage: "read the catalog from `FILE` (JSON or YAML) instead of CATALOG_SOURCE"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:  "calc",
				Usage: "Calculates the spine width of a book",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "paper", Aliases: []string{"p"}, Usage: "paper `NAME` as listed by the papers command"},
					&cli.StringFlag{Name: "weight", Aliases: []string{"w"}, Usage: "weight `LABEL` as listed by the weights command"},
					&cli.StringFlag{Name: "pages", Aliases: []string{"n"}, Usage: "page `COUNT`"},
					&cli.BoolFlag{Name: "cartonado", Usage: "case bound"},
					&cli.BoolFlag{Name: "fresado", Usage: "milled (perfect bound)"},
					&cli.BoolFlag{Name: "costurado", Usage: "sewn"},
				},
				Action: e.calc,
			},
			{
				Name:   "papers",
				Usage:  "Lists paper types",
				Action: e.papers,
			},
			{
				Name:      "weights",
				Usage:     "Lists the weights of one paper type",
				ArgsUsage: "PAPER",
				Action:    e.weights,
			},
			{
				Name:      "dump",
				Usage:     "Writes the loaded catalog as JSON or YAML",
				ArgsUsage: "[DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "output `FORMAT` (json or yaml)"},
				},
				Action: e.dump,
			},
			{
				Name:      "export",
				Usage:     "Writes the catalog spreadsheet (.xlsx)",
				ArgsUsage: "[FILE.xlsx | DIRECTORY]",
				Action:    e.export,
			},
			{
				Name:      "import",
				Usage:     "Replaces the Postgres catalog with the contents of a file",
				ArgsUsage: "FILE",
				Action:    e.importCatalog,
			},
			{
				Name:  "migrate",
				Usage: "Manages the Postgres schema",
				Commands: []*cli.Command{
					{Name: "up", Usage: "Applies pending migrations", Action: e.migrate(migrateUp)},
					{Name: "down", Usage: "Rolls back the last migration", Action: e.migrate(migrateDown)},
					{Name: "status", Usage: "Prints migration status", Action: e.migrate(migrateStatus)},
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	e := &env{out: os.Stdout}
	err := newApp(e).Run(ctx, os.Args)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "lombadactl: %v\n", err)
		os.Exit(1)
	}
}
