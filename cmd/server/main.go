package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/core"
	"github.com/agenthands/parcelgraph/internal/driver"
	"github.com/agenthands/parcelgraph/internal/logging"
	"github.com/agenthands/parcelgraph/internal/metrics"
	"github.com/agenthands/parcelgraph/internal/server"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "parcelgraph.toml"
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "config file path")
	flag.Parse()

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ApplyCredentials(); err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	opts, err := core.OptionsFromConfig(cfg.Sync)
	if err != nil {
		logger.Error("invalid sync options", logging.Err(err))
		os.Exit(1)
	}

	opener := driver.NewOpener(driver.FromConfig(cfg.Graph), logger)
	engine := core.NewEngine(opener, opts, logger, metrics.New(true))
	srv := server.NewServer(engine, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", logging.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", logging.Err(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", logging.Err(err))
	}
}
