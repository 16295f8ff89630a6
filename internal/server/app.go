// Package server wires configuration, storage, services and the HTTP
// transport into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/httpapi"
	"github.com/dmitrijs2005/fintrack/internal/server/mailer"
	"github.com/dmitrijs2005/fintrack/internal/server/oauth"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// NewApp opens the database, optionally migrates it and builds the HTTP
// server. The caller owns the returned App and must call Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := newLogger(c, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN, c.DatabaseSchema)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(c.DatabaseSchema)
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
	}

	routes, err := buildRoutes(db, rm, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(c.ListenAddr, logger, routes),
	}, nil
}

func newLogger(c *config.Config, w io.Writer) (logging.Logger, error) {
	return logging.New(logging.Options{Backend: c.LogBackend, Level: c.LogLevel, Format: c.LogFormat}, w)
}

// buildRoutes assembles the services and their handlers.
func buildRoutes(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config, logger logging.Logger) (httpapi.Routes, error) {
	codec := auth.NewCodec(c.SecretKey, c.TokenValidityDuration)
	directory := services.NewDirectory(db, rm)
	session := services.NewSessionVerifier(codec, directory)

	var m mailer.Mailer
	if c.MailEnabled() {
		smtp, err := mailer.NewSMTPMailer(c)
		if err != nil {
			return nil, fmt.Errorf("mailer init error: %w", err)
		}
		m = smtp
	} else {
		logger.Warn(context.Background(), "SMTP_HOST not set, one-time codes are returned in responses")
	}

	oauthFlow := services.NewOAuthService(oauth.NewGoogleProvider(c), directory, codec, logger, c)
	codes := services.NewCodeService(db, rm, directory, codec, m, logger, c)

	return httpapi.Routes{
		"/auth":           httpapi.NewAuthHandler(oauthFlow, codes, session, logger),
		"/transactions":   httpapi.NewTransactionsHandler(session, services.NewTransactionService(db, rm), logger),
		"/fixed-planning": httpapi.NewPlanningHandler(session, services.NewPlanningService(db, rm), logger),
		"/auto-expenses":  httpapi.NewAutoExpensesHandler(session, services.NewAutoExpenseService(db, rm, logger), logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.ListenAddr)
	app.initSignalHandler(cancelFunc)

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}
