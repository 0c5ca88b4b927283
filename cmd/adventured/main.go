// Package main provides the adventure daemon: it records encounter outcomes
// from NATS, answers encounter start requests, and serves Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/config"
	"github.com/cory-johannsen/adventure/internal/feed"
	"github.com/cory-johannsen/adventure/internal/game/adventure"
	"github.com/cory-johannsen/adventure/internal/game/dice"
	"github.com/cory-johannsen/adventure/internal/game/encounter"
	"github.com/cory-johannsen/adventure/internal/observability"
	"github.com/cory-johannsen/adventure/internal/scripting"
	"github.com/cory-johannsen/adventure/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "adventured")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	roller := dice.NewLoggedRoller(logger)

	bestiaryStart := time.Now()
	monsters, err := encounter.LoadBestiary(cfg.Adventure.BestiaryDir)
	if err != nil {
		logger.Fatal("loading bestiary", zap.Error(err))
	}
	logger.Info("bestiary loaded",
		zap.Int("monsters", len(monsters)),
		zap.Duration("elapsed", time.Since(bestiaryStart)),
	)

	var scripts *scripting.Manager
	if cfg.Adventure.ScriptDir != "" {
		scripts = scripting.NewManager(roller, logger)
		defer scripts.Close()
		if err := scripts.LoadGlobal(cfg.Adventure.ScriptDir, cfg.Adventure.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading scripts", zap.String("dir", cfg.Adventure.ScriptDir), zap.Error(err))
		}
	}

	results := adventure.NewResults(cfg.Adventure.ResultsLength)
	generator, err := encounter.NewGenerator(monsters, results, roller, scripts, logger)
	if err != nil {
		logger.Fatal("creating encounter generator", zap.Error(err))
	}

	closed := make(chan struct{})
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name("adventured"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }),
	)
	if err != nil {
		logger.Fatal("connecting to nats", zap.String("url", cfg.NATS.URL), zap.Error(err))
	}

	handler := feed.NewHandler(results, generator, metrics, logger)
	if _, err := handler.Subscribe(nc, cfg.NATS); err != nil {
		logger.Fatal("subscribing feed", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger, server.DefaultStopTimeout)
	lifecycle.Add("feed", &server.FuncService{
		StartFn: func() error {
			<-closed
			return nil
		},
		StopFn: func(ctx context.Context) error {
			if err := nc.Drain(); err != nil {
				nc.Close()
				return fmt.Errorf("draining nats: %w", err)
			}
			select {
			case <-closed:
				return nil
			case <-ctx.Done():
				nc.Close()
				return ctx.Err()
			}
		},
	})
	if cfg.Metrics.Addr != "" {
		natsHealth := func() error {
			if !nc.IsConnected() {
				return fmt.Errorf("nats %s", nc.Status())
			}
			return nil
		}
		lifecycle.Add("metrics", server.NewMetricsService(cfg.Metrics.Addr, registry, natsHealth, logger))
	}

	logger.Info("adventured ready",
		zap.String("nats", cfg.NATS.URL),
		zap.String("metrics", cfg.Metrics.Addr),
		zap.Int("results_length", results.Capacity()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("adventured stopped", zap.Error(err))
	}
}
