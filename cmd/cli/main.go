// Command cli is the terminal front end and maintenance toolbox for the
// noircase investigation engine. The play subcommand runs a full interactive
// session; the rest operate on the save store and export documents.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"noircase/internal/catalog"
	"noircase/internal/db"
	"noircase/internal/envstruct"
	"noircase/internal/errors"
	"noircase/internal/gateway"
	"noircase/internal/logging"
	"noircase/internal/save"
)

type config struct {
	SQLiteURL    string `env:"NOIRCASE_SQLITE_URL" envDefault:"./noircase.sqlite"`
	Namespace    string `env:"NOIRCASE_NAMESPACE" envDefault:"noircase"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:""`
}

// toolbox bundles everything a subcommand needs. Subcommands open it lazily
// so that --help never touches the database.
type toolbox struct {
	logger  *slog.Logger
	catalog *catalog.Catalog
	agent   gateway.Gateway
	saves   *save.Adapter
	dbs     *db.Database
}

func openToolbox() (*toolbox, error) {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	logger := slog.New(loggerHandler)

	var cfg config
	if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return nil, errors.Wrap(err, "parse configuration")
	}

	dbs, err := db.NewDatabase(cfg.SQLiteURL)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}

	cases, err := catalog.New()
	if err != nil {
		_ = dbs.Close()
		return nil, errors.Wrap(err, "load case catalog")
	}

	return &toolbox{
		logger:  logger,
		catalog: cases,
		agent:   gateway.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger),
		saves:   save.NewAdapter(dbs, cases, cfg.Namespace, logger),
		dbs:     dbs,
	}, nil
}

func (t *toolbox) Close() error {
	return t.dbs.Close()
}

var rootCmd = &cobra.Command{
	Use:           "noircase-cli",
	Long:          `Terminal front end and maintenance tools for the noircase investigation engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
