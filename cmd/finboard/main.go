package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-finboard/components/dashboard"
	"github.com/goliatone/go-finboard/components/dashboard/commands"
	"github.com/goliatone/go-finboard/components/dashboard/gorouter"
	"github.com/goliatone/go-finboard/components/dashboard/httpapi"
	"github.com/goliatone/go-finboard/components/dashboard/views"
)

type cli struct {
	Serve     serveCmd     `cmd:"" default:"1" help:"Start the dashboard server."`
	Endpoints endpointsCmd `cmd:"" help:"List the available upstream endpoints by category."`
}

type serveCmd struct{}

type endpointsCmd struct{}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Configurable finance dashboard over the Indian stock market API."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg := dashboard.LoadConfig()
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("finboard: build logger: %w", err)
	}
	defer logger.Sync()

	if cfg.APIKey == "" {
		logger.Warn("FINBOARD_API_KEY is not set, upstream requests will be unauthenticated")
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	client, err := dashboard.NewClient(dashboard.ClientConfig{
		BaseURL: cfg.UpstreamBaseURL,
		APIKey:  cfg.APIKey,
		Cache:   dashboard.NewDataCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	store := dashboard.NewStateStore(dashboard.NewFileSnapshotStore(cfg.SnapshotPath), logger)
	hook := dashboard.NewBroadcastHook()
	unbind := hook.BindStore(store)
	defer unbind()

	service := dashboard.NewService(dashboard.Options{
		Store:       store,
		Fetcher:     client,
		Catalog:     catalog,
		RefreshHook: hook,
		RenderCache: views.NewChartCache(cfg.ChartCacheTTL, views.DefaultChartCacheEntries),
		Telemetry:   dashboard.NewZapTelemetry(logger),
		Logger:      logger,
	})

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Start(runCtx); err != nil {
		return fmt.Errorf("finboard: start service: %w", err)
	}
	defer service.Close()

	if cfg.SeedOnEmpty {
		if err := service.Seed(runCtx, dashboard.DefaultSeedWidgets()); err != nil {
			logger.Warn("seeding failed", zap.Error(err))
		}
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("finboard: build renderer: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})
	executor := &httpapi.CommandExecutor{
		AddCommander:     commands.NewAddWidgetCommand(service, nil),
		UpdateCommander:  commands.NewUpdateWidgetCommand(service, nil),
		RemoveCommander:  commands.NewRemoveWidgetCommand(service, nil),
		ReorderCommander: commands.NewReorderWidgetsCommand(service, nil),
		RefreshCommander: commands.NewRefreshWidgetCommand(service, nil),
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		Service:    service,
		API:        executor,
		Client:     client,
		Broadcast:  hook,
	}); err != nil {
		return fmt.Errorf("finboard: register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.Serve(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-runCtx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (cmd *endpointsCmd) Run(_ context.Context) error {
	catalog, err := dashboard.NewCatalog()
	if err != nil {
		return err
	}
	for _, group := range catalog.ByCategory() {
		fmt.Fprintf(os.Stdout, "%s\n", group.Category)
		for _, desc := range group.Endpoints {
			fmt.Fprintf(os.Stdout, "  %-22s %-34s %s\n", desc.ID, desc.Path, desc.Description)
		}
	}
	return nil
}

func loadCatalog(cfg *dashboard.Config) (*dashboard.Catalog, error) {
	if cfg.CatalogManifest == "" {
		return dashboard.NewCatalog()
	}
	return dashboard.LoadCatalog(cfg.CatalogManifest)
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	return zcfg.Build()
}
