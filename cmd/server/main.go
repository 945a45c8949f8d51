package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tilegate/internal/config"
	"tilegate/internal/drilldown"
	"tilegate/internal/fonts"
	"tilegate/internal/logger"
	"tilegate/internal/metrics"
	"tilegate/internal/server"
	"tilegate/internal/static"
	"tilegate/internal/tiles"
	"tilegate/internal/tileset"
)

func main() {
	cfg := config.Load()

	catalogPath := pflag.String("catalog", cfg.CatalogPath, "path to the tileset catalog")
	bind := pflag.String("bind", cfg.Bind, "address to bind")
	port := pflag.Int("port", cfg.Port, "port to listen on")
	viewer := pflag.Bool("viewer", cfg.Viewer, "serve the embedded viewer")
	pflag.Parse()

	cfg.CatalogPath = *catalogPath
	cfg.Bind = *bind
	cfg.Port = *port
	cfg.Viewer = *viewer

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting tile gateway",
		zap.String("bind", cfg.Bind),
		zap.Int("port", cfg.Port),
		zap.String("catalog", cfg.CatalogPath),
		zap.Bool("viewer", cfg.Viewer),
	)

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}

	registry, err := tileset.NewRegistry(catalog, log)
	if err != nil {
		log.Fatal("Failed to build tileset registry", zap.Error(err))
	}

	tileService, err := tiles.NewService(cfg.TileBackend, cfg.TileDir, cfg.UpstreamURL, registry, log)
	if err != nil {
		log.Fatal("Failed to initialize tile backend", zap.Error(err))
	}

	fontResolver, err := fonts.NewEmbedded()
	if err != nil {
		log.Fatal("Failed to build font table", zap.Error(err))
	}
	log.Info("Font table ready", zap.Strings("families", fontResolver.Families()))

	staticResolver, err := static.NewResolver(catalog.Static, cfg.Viewer, log)
	if err != nil {
		log.Fatal("Failed to initialize static assets", zap.Error(err))
	}

	analyzer := drilldown.New(registry, tileService)

	srv := server.New(cfg, log, registry, tileService, fontResolver, staticResolver, analyzer, metrics.New())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		Handler: srv.Handler(),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("addr", httpServer.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
