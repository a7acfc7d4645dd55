package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/config"
	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/httpserver"
	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
	"github.com/MrSnakeDoc/wanderlust/internal/metrics"
	"github.com/MrSnakeDoc/wanderlust/internal/seed"
	"github.com/MrSnakeDoc/wanderlust/internal/utils"
	"github.com/MrSnakeDoc/wanderlust/internal/version"
	"github.com/MrSnakeDoc/wanderlust/internal/view"
)

// seedTimeout bounds the startup seeding pass.
const seedTimeout = 30 * time.Second

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  domain.ListingStore
}

// New loads the configuration, connects the listing store (failing fast if it
// stays unreachable), seeds it when configured and builds the HTTP server.
func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	renderer, err := view.New(view.Options{
		Locale:         cfg.PriceLocale,
		CurrencySymbol: cfg.CurrencySymbol,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	store, err := openStore(context.Background(), cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("listing store initialized successfully",
		logger.String("backend", store.Backend()))

	if cfg.SeedFile != "" {
		if err := seedStore(cfg.SeedFile, store, loggerClient); err != nil {
			utils.CloseWithin(store, cfg.ShutdownTimeout, store.Backend(), loggerClient)
			return nil, err
		}
	}

	var mm *metrics.Manager
	handlerStore := store
	if cfg.MetricsEnabled {
		mm = metrics.NewManager("wanderlust")
		handlerStore = metrics.InstrumentStore(store, mm)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Store:           handlerStore,
		Renderer:        renderer,
		Metrics:         mm,
		PingTimeout:     2 * time.Second,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: server,
		store:  store,
	}, nil
}

func seedStore(path string, store domain.ListingStore, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	log.Info("seed file configured", logger.String("file", path))
	if _, err := seed.NewSeeder(seed.NewLoader(path), store, log).Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed listings: %w", err)
	}
	return nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Wanderlust v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Wanderlust %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The store outlives the server so in-flight requests can finish.
	defer utils.CloseWithin(a.store, a.cfg.ShutdownTimeout, a.store.Backend(), a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ Wanderlust stopped cleanly")
	return nil
}
