package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcpls/mcpls/internal/bridge"
	"github.com/mcpls/mcpls/internal/config"
	"github.com/mcpls/mcpls/internal/mcpserver"
)

// version is overridden at build time via -ldflags.
var version = "dev"

const shutdownGrace = 5 * time.Second

func main() {
	var (
		configPath string
		logLevel   string
		logJSON    bool
		showVer    bool
	)
	flag.StringVar(&configPath, "config", "", "path to mcpls.toml (default: $MCPLS_CONFIG, ./mcpls.toml, or the platform config dir)")
	flag.StringVar(&configPath, "c", "", "shorthand for -config")
	flag.StringVar(&logLevel, "log-level", envOr("MCPLS_LOG", "info"), "log level: debug, info, warn, error")
	flag.StringVar(&logLevel, "l", envOr("MCPLS_LOG", "info"), "shorthand for -log-level")
	flag.BoolVar(&logJSON, "log-json", os.Getenv("MCPLS_LOG_JSON") != "", "emit logs as JSON instead of console-formatted text")
	flag.BoolVar(&showVer, "version", false, "print version and exit")
	flag.Parse()

	if showVer {
		fmt.Println("mcpls " + version)
		return
	}

	log := newLogger(logLevel, logJSON)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	b := bridge.New(bridge.Options{
		Config:    cfg.RegistryConfig(),
		CacheOpts: cfg.CacheOpts,
		Logger:    log,
	})

	srv := mcpserver.New(b, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("mcp server exited with error")
			shutdown(b, log)
			os.Exit(1)
		}
		shutdown(b, log)
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		shutdown(b, log)
	}
}

func shutdown(b *bridge.Bridge, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	b.Shutdown(ctx)
	log.Info().Msg("shutdown complete")
}

func newLogger(level string, asJSON bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var writer = os.Stderr
	logger := zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	if !asJSON {
		logger = logger.Output(zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339})
	}
	return logger
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
