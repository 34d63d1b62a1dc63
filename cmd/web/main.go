package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"

	"noircase/internal/catalog"
	"noircase/internal/db"
	"noircase/internal/envstruct"
	"noircase/internal/errors"
	"noircase/internal/gateway"
	"noircase/internal/logging"
	"noircase/internal/save"
)

type application struct {
	logger         *slog.Logger
	catalog        *catalog.Catalog
	agent          gateway.Gateway
	saves          *save.Adapter
	sessionManager *scs.SessionManager
	engines        *engineRegistry
}

type config struct {
	Addr         string `env:"NOIRCASE_ADDR" envDefault:"localhost:4000"`
	SQLiteURL    string `env:"NOIRCASE_SQLITE_URL" envDefault:"./noircase.sqlite"`
	Namespace    string `env:"NOIRCASE_NAMESPACE" envDefault:"noircase"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:""`
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	logger := slog.New(loggerHandler)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found")
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error("server exited", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse configuration")
	}

	dbs, err := db.NewDatabase(cfg.SQLiteURL)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to database", slog.String("url", cfg.SQLiteURL))

	cases, err := catalog.New()
	if err != nil {
		return errors.Wrap(err, "load case catalog")
	}

	if cfg.OpenAIAPIKey == "" {
		logger.LogAttrs(ctx, slog.LevelWarn,
			"OPENAI_API_KEY is not set, agent turns will fail with a diagnostic message")
	}
	agent := gateway.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour)
	sessionManager.Lifetime = 7 * 24 * time.Hour

	app := application{
		logger:         logger,
		catalog:        cases,
		agent:          agent,
		saves:          save.NewAdapter(dbs, cases, cfg.Namespace, logger),
		sessionManager: sessionManager,
		engines:        newEngineRegistry(agent, logger),
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
