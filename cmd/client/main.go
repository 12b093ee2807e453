package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/driftsync/driftsync/internal/core/engine"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
	"github.com/driftsync/driftsync/internal/core/protocol/quic"
	"github.com/driftsync/driftsync/internal/core/protocol/websocket"
	"github.com/driftsync/driftsync/internal/core/spatial"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml or json config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Level())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, err := dialSource(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error connecting:", err)
		os.Exit(1)
	}

	eng := engine.New(cfg, source,
		engine.WithLogger(logger),
		engine.WithSpatial(spatial.NewMemoryRegistry()))

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() { errCh <- eng.Run(ctx) }()

	select {
	case <-stopCh:
	case err := <-errCh:
		if err != nil {
			fmt.Fprintln(os.Stderr, "Engine stopped:", err)
		}
	}
	cancel()
	if err := source.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Error closing transport:", err)
	}
}

func loadConfig(path string) (engine.Config, error) {
	if path == "" {
		return engine.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return engine.Config{}, err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".json") {
		return engine.LoadJSON(f)
	}
	return engine.LoadYAML(f)
}

func dialSource(ctx context.Context, cfg engine.Config, logger log.Log) (protocol.Source, error) {
	switch cfg.Transport {
	case "quic":
		return quic.Dial(ctx, quic.DefaultConfig(cfg.ServerAddr), logger)
	case "websocket", "":
		url := cfg.ServerAddr
		if !strings.Contains(url, "://") {
			url = "ws://" + url
		}
		return websocket.Dial(ctx, websocket.DefaultConfig(url), logger)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
