// Package server initializes and runs the transfery server: it wires the
// database, object storage, application services and the HTTP/WebSocket
// endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hlf20010508/transfery/internal/logging"
	"github.com/hlf20010508/transfery/internal/server/broadcast"
	"github.com/hlf20010508/transfery/internal/server/config"
	"github.com/hlf20010508/transfery/internal/server/httpapi"
	"github.com/hlf20010508/transfery/internal/server/repositories/repomanager"
	"github.com/hlf20010508/transfery/internal/server/services"
	"github.com/hlf20010508/transfery/internal/server/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Hour
)

type App struct {
	config *config.Config
	logger logging.Logger

	db           *sql.DB
	uploads      *services.UploadService
	certificates *services.CertificateService
	httpServer   *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("bucket init error: %w", err)
	}

	messages := services.NewMessageService(db, manager, cfg)
	certificates := services.NewCertificateService(db, manager, cfg, logger)
	if err := certificates.Init(ctx); err != nil {
		return nil, fmt.Errorf("certificate init error: %w", err)
	}
	uploads := services.NewUploadService(store, messages, cfg, logger)

	hub := broadcast.NewHub(logger)
	httpServer := httpapi.NewServer(messages, uploads, certificates, store, hub, logger)

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		uploads:      uploads,
		certificates: certificates,
		httpServer:   httpServer,
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.httpServer.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)
	app.uploads.StartJanitor(ctx, janitorInterval)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
