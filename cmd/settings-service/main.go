package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"settings-service/internal/config"
	"settings-service/internal/core"
	"settings-service/internal/hardware"
	"settings-service/internal/logger"
	"settings-service/internal/messaging"
	"settings-service/internal/params"
	"settings-service/internal/uiserver"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML configuration file")

	// Service log level, -1 keeps the configured one
	var serviceLogLevel int
	flag.IntVar(&serviceLogLevel, "log", -1, "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")

	flag.Parse()

	// Create standard logger with appropriate format
	var stdLogger *log.Logger
	if os.Getenv("INVOCATION_ID") != "" {
		// Running under systemd, use minimal format
		stdLogger = log.New(os.Stdout, "", 0)
	} else {
		// Running interactively, use timestamps
		stdLogger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdLogger.Fatalf("Failed to load config: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		stdLogger.Printf("%v, using info", err)
		level = logger.LogLevelInfo
	}
	if serviceLogLevel >= 0 {
		level = logger.LogLevel(serviceLogLevel)
	}

	// Create leveled logger
	l := logger.NewLogger(stdLogger, level)

	l.Infof("Starting settings service (config %s, store %s)", *configPath, cfg.Store.Backend)

	engine, err := params.Open(cfg, l.WithTag("Store"))
	if err != nil {
		l.Fatalf("Failed to open parameter store: %v", err)
	}

	variant := hardware.Detect(cfg.Hardware.Root)
	osVersion := hardware.OSVersion(cfg.Hardware.Root, variant)
	l.Infof("Hardware %s, OS %s", variant, osVersion)

	redis := messaging.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, l.WithTag("Redis"), messaging.Callbacks{})

	// The server only accepts connections once system.Start has run
	var system *core.SettingsSystem
	var server core.UIServer
	if cfg.Server.Enabled {
		server = uiserver.NewServer(cfg.Server.Listen, l.WithTag("WS"), func(cmd string) {
			if err := system.Command(cmd); err != nil {
				l.Warnf("Error handling WebSocket command %q: %v", cmd, err)
			}
		})
	}

	system = core.NewSettingsSystem(core.Deps{
		Config:    cfg,
		Engine:    engine,
		Messaging: redis,
		Server:    server,
		Runner:    hardware.NewExecRunner(l.WithTag("Exec"), cfg.Commands.CommandTimeout.Std()),
		Variant:   variant,
		OSVersion: osVersion,
		Logger:    l.WithTag("Settings"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := system.Start(ctx); err != nil {
		l.Fatalf("Failed to start system: %v", err)
	}

	l.Infof("System started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	l.Infof("Received signal %v, shutting down...", sig)
	system.Shutdown()
	l.Infof("Shutdown complete")
}
