// Command hemd runs the HEM service.
//
// The service keeps key contexts in memory, encodes float vectors into
// opaque key-bound tokens, and evaluates arithmetic over those tokens
// without returning plaintext to clients. Plaintext is only available
// through the decrypt endpoint, and only when explicitly enabled.
//
// # Configuration
//
// Settings are loaded from built-in defaults, an optional YAML file
// (--config) and HEM_* environment variables, then overridden by flags.
//
// # Usage
//
//	go run ./cmd/hemd --listen-addr=:8000 --metrics-addr=:9090
//
// Write a commented default configuration file and exit:
//
//	go run ./cmd/hemd --write-default-config=hem.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Raoof128/HEM/api/httpserver"
	"github.com/Raoof128/HEM/audit"
	"github.com/Raoof128/HEM/config"
	"github.com/Raoof128/HEM/engine"
	"github.com/Raoof128/HEM/keystore"
	"github.com/Raoof128/HEM/server"
)

func main() {
	var (
		configPath       = flag.String("config", "", "Path to YAML config file")
		listenAddr       = flag.String("listen-addr", "", "Override HTTP listen address")
		metricsAddr      = flag.String("metrics-addr", "", "Override metrics listen address")
		enablePprof      = flag.Bool("pprof", false, "Enable pprof debugging API")
		logJSON          = flag.Bool("log-json", false, "Log in JSON format")
		logDebug         = flag.Bool("log-debug", false, "Log at debug level")
		writeDefaultConf = flag.String("write-default-config", "", "Write the default config to the given path and exit")
	)
	flag.Parse()

	if *writeDefaultConf != "" {
		if err := config.WriteDefaultConfig(*writeDefaultConf); err != nil {
			fmt.Printf("Write config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config to %s\n", *writeDefaultConf)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	// Flags override file and environment values.
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *enablePprof {
		cfg.EnablePprof = true
	}
	if *logJSON {
		cfg.LogJSON = true
	}
	if *logDebug {
		cfg.LogDebug = true
	}

	log := newLogger(cfg)

	auditLog, err := buildAuditLogger(cfg, log)
	if err != nil {
		fmt.Printf("Audit log error: %v\n", err)
		os.Exit(1)
	}

	keys := keystore.NewStore()
	hemServer := server.New(cfg, log, keys, engine.New(keys), auditLog)

	srv := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		EnablePprof:              cfg.EnablePprof,
		Log:                      log,
		RateLimitPerMinute:       cfg.RateLimitPerMinute,
		DrainDuration:            cfg.DrainDuration(),
		GracefulShutdownDuration: cfg.GracefulShutdownDuration(),
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
	}, hemServer)

	if cfg.EnableSimulatedDecrypt {
		log.Warn("Simulated decrypt endpoint is enabled; plaintext can be revealed over the API")
	}

	auditLog.Record(context.Background(), audit.EventStartup, map[string]string{
		"service":     cfg.ServiceName,
		"listen_addr": cfg.ListenAddr,
	})

	log.Info("Starting HEM service", "service", cfg.ServiceName, "listenAddr", cfg.ListenAddr)
	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")
	srv.Shutdown()
	if err := auditLog.Close(); err != nil {
		log.Error("Audit log close failed", "err", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogDebug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// buildAuditLogger assembles the configured sinks. The memory sink is always
// attached so recent events can be inspected in tests and debugging sessions.
func buildAuditLogger(cfg *config.Config, log *slog.Logger) (*audit.Logger, error) {
	sinks := []audit.Sink{audit.NewMemorySink()}

	if cfg.AuditLogPath != "" {
		fileSink, err := audit.NewFileSink(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("audit file sink: %w", err)
		}
		sinks = append(sinks, fileSink)
	}

	if cfg.AuditDatabaseURL != "" {
		pgSink, err := audit.NewPostgresSink(cfg.AuditDatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("audit postgres sink: %w", err)
		}
		sinks = append(sinks, pgSink)
	}

	return audit.NewLogger(log, sinks...), nil
}
