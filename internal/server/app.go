// Package server assembles and runs the usersvc HTTP server: storage
// backend, services, router and graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/config"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/usersvc/internal/server/rest"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	server *rest.Server
}

// logOutput is where the application logger writes.
var logOutput io.Writer = os.Stdout

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(logOutput, cfg.LogLevel)

	tokens, err := auth.NewTokenService([]byte(cfg.SecretKey), cfg.TokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token service init error: %w", err)
	}

	rm, err := repomanager.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	us := services.NewUserService(rm.Users(), auth.NewBcryptHasher(cfg.PasswordHashCost), tokens, logger)

	router := rest.NewRouter(
		rest.NewUserHandler(us),
		rest.NewAuthenticator(tokens, rm.Users(), logger),
		logger.With("module", "http"),
	)

	return &App{
		config: cfg,
		logger: logger,
		repos:  rm,
		server: rest.NewServer(cfg.ListenAddr, router, cfg.ShutdownTimeout, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the storage backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "Stopping app...")

	if err := app.repos.Close(); err != nil {
		return fmt.Errorf("storage close error: %w", err)
	}
	return nil
}
