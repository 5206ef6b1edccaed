package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/api"
	"github.com/fileswarm/fileswarm/pkg/audit"
	"github.com/fileswarm/fileswarm/pkg/config"
	"github.com/fileswarm/fileswarm/pkg/configsource"
	"github.com/fileswarm/fileswarm/pkg/groups"
	"github.com/fileswarm/fileswarm/pkg/metrics"
	"github.com/fileswarm/fileswarm/pkg/scheduler"
	"github.com/fileswarm/fileswarm/pkg/userservice"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `FileSwarm - upload admission scheduler daemon

Usage:
  fileswarmd <command> [flags]

Commands:
  init     Write a sample configuration file
  start    Start the daemon
  token    Mint an operator bearer token (mint <subject> [--admin])
  config   Configuration utilities (schema)
  version  Show version information

Flags:
  --config string    Path to config file (default: $XDG_CONFIG_HOME/fileswarm/config.yaml)
  --force            Force overwrite existing config file (init command only)

Environment Variables:
  All configuration options can be overridden using environment variables.
  Format: FILESWARM_<SECTION>_<KEY> (use underscores for nested keys)

  Example:
    FILESWARM_LOGGING_LEVEL=DEBUG fileswarmd start
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit()
	case "start":
		runStart()
	case "token":
		runToken()
	case "config":
		runConfig()
	case "help", "--help", "-h":
		fmt.Print(usage)
		os.Exit(0)
	case "version", "--version", "-v":
		fmt.Printf("fileswarmd %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runInit() {
	configFile, force := parseInitFlags(os.Args[2:])

	var (
		configPath string
		err        error
	)
	if configFile != "" {
		configPath, err = config.InitConfigToPath(configFile, force)
	} else {
		configPath, err = config.InitConfig(force)
	}
	if err != nil {
		log.Fatalf("failed to initialize config: %v", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file, in particular api.jwt.secret")
	fmt.Println("  2. Start the daemon with: fileswarmd start")
}

func runStart() {
	configFile, _ := parseStartFlags(os.Args[2:])

	cfg, err := config.MustLoad(configFile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := cfg.Telemetry
	telemetryCfg.ServiceName = "fileswarmd"
	telemetryCfg.ServiceVersion = version
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingCfg := cfg.Profiling
	profilingCfg.ServiceName = "fileswarmd"
	profilingCfg.ServiceVersion = version
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		log.Fatalf("failed to initialize profiling: %v", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("starting fileswarmd", "version", version, "commit", commit)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Profiling.Endpoint)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}
		go func() {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	userService, err := buildUserService(cfg.UserService)
	if err != nil {
		log.Fatalf("failed to initialize user service: %v", err)
	}

	var auditSink scheduler.AuditSink
	if cfg.Audit.Enabled {
		store, err := audit.NewStore(audit.Config{
			Type:       cfg.Audit.Type,
			SQLitePath: cfg.Audit.SQLitePath,
			Postgres:   cfg.Audit.Postgres,
		})
		if err != nil {
			log.Fatalf("failed to initialize audit store: %v", err)
		}
		sink := audit.NewSink(store, audit.DefaultSinkConfig(), nil)
		sink.Start()
		defer sink.Stop(cfg.ShutdownTimeout)
		auditSink = sink
	}

	sched := scheduler.New(userService,
		scheduler.WithAuditSink(auditSink),
		scheduler.WithMetricsRecorder(metrics.NewSchedulerRecorder()))

	seedOpts, err := cfg.Scheduler.Options()
	if err != nil {
		log.Fatalf("failed to build seed group topology: %v", err)
	}
	if err := sched.Configure(ctx, seedOpts); err != nil {
		log.Fatalf("failed to apply seed group topology: %v", err)
	}

	source, err := buildConfigSource(ctx, cfg.ConfigSource)
	if err != nil {
		log.Fatalf("failed to initialize config source: %v", err)
	}

	var cache configsource.Cache
	if cfg.ConfigSource.SnapshotCachePath != "" {
		badgerCache, err := configsource.NewBadgerSnapshotCache(cfg.ConfigSource.SnapshotCachePath)
		if err != nil {
			log.Fatalf("failed to open group topology snapshot cache: %v", err)
		}
		defer badgerCache.Close()
		cache = badgerCache
	}

	if snapshot, err := source.Snapshot(ctx); err != nil {
		logger.Warn("initial group topology snapshot failed", "error", err)
		if cache != nil {
			if cached, found, cacheErr := cache.Load(ctx); cacheErr == nil && found {
				if err := sched.Configure(ctx, cached); err != nil {
					logger.Warn("cached group topology rejected, running with seed topology", "error", err)
				} else {
					logger.Info("group topology restored from cache", "global_slots", cached.GlobalSlots)
				}
			} else {
				logger.Warn("no cached group topology available, running with seed topology")
			}
		} else {
			logger.Warn("running with seed topology, no snapshot cache configured")
		}
	} else if err := sched.Configure(ctx, snapshot); err != nil {
		logger.Warn("initial group topology snapshot rejected, running with seed topology", "error", err)
	} else {
		logger.Info("group topology loaded from config source", "global_slots", snapshot.GlobalSlots)
		if cache != nil {
			if err := cache.Store(ctx, snapshot); err != nil {
				logger.Warn("failed to persist group topology snapshot cache", "error", err)
			}
		}
	}

	if watcher, ok := source.(configsource.Watcher); ok {
		go func() {
			err := watcher.Watch(ctx,
				func(opts groups.Options) {
					if err := sched.Configure(ctx, opts); err != nil {
						logger.Error("rejected reloaded group topology", "error", err)
						return
					}
					logger.Info("group topology reloaded", "global_slots", opts.GlobalSlots)
					if cache != nil {
						if err := cache.Store(ctx, opts); err != nil {
							logger.Warn("failed to persist group topology snapshot cache", "error", err)
						}
					}
				},
				func(err error) {
					logger.Error("config source watch error", "error", err)
				})
			if err != nil && ctx.Err() == nil {
				logger.Error("config source watch loop exited", "error", err)
			}
		}()
	}

	var assigner userservice.Assigner
	if a, ok := userService.(userservice.Assigner); ok {
		assigner = a
	}

	server, err := api.NewServer(cfg.API, sched, assigner, source)
	if err != nil {
		log.Fatalf("failed to create management API server: %v", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("fileswarmd is running", "port", cfg.API.Port)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining in-flight requests", "timeout", cfg.ShutdownTimeout)
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("management API shutdown error", "error", err)
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("management API exited", "error", err)
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	logger.Info("fileswarmd stopped")
}

// runToken mints an operator bearer token without the server exposing
// a login endpoint (spec.md names no peer-facing auth flow; operators
// authenticate out of band and hand peers a token directly).
func runToken() {
	if len(os.Args) < 4 || os.Args[2] != "mint" {
		fmt.Fprintln(os.Stderr, "Usage: fileswarmd token mint <subject> [--admin] [--config path]")
		os.Exit(1)
	}
	admin, configFile := parseTokenFlags(os.Args[4:])
	subject := os.Args[3]

	cfg, err := config.MustLoad(configFile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	server, err := api.NewServer(cfg.API, nil, nil, nil)
	if err != nil {
		log.Fatalf("failed to build JWT service: %v", err)
	}

	token, err := server.JWTService().Mint(subject, admin)
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Println(token.Token)
}

// runConfig handles `fileswarmd config schema`, printing the JSON
// Schema for the configuration file so editors can offer completion
// and validation against it.
func runConfig() {
	if len(os.Args) < 3 || os.Args[2] != "schema" {
		fmt.Fprintln(os.Stderr, "Usage: fileswarmd config schema")
		os.Exit(1)
	}
	data, err := config.SchemaJSON()
	if err != nil {
		log.Fatalf("failed to render config schema: %v", err)
	}
	fmt.Println(string(data))
}

func buildUserService(cfg userservice.Config) (scheduler.UserService, error) {
	return userservice.NewStore(cfg)
}

func buildConfigSource(ctx context.Context, cfg config.ConfigSourceConfig) (configsource.Source, error) {
	switch cfg.Type {
	case "s3":
		return configsource.NewS3Source(ctx, configsource.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			PollInterval:    cfg.PollInterval,
		})
	case "file":
		return configsource.NewFileSource(cfg.File)
	default:
		return nil, fmt.Errorf("unsupported config_source.type %q", cfg.Type)
	}
}
