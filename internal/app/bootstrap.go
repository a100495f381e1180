package app

import (
	"context"
	"fmt"
	"os"

	"eclipse/internal/config"
	"eclipse/pkg/logging"
)

// Application bootstraps and runs the eclipse agent.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: load configuration, initialize logging, set up services
//  2. Execution phase: connect to Discord and handle events until stopped
//
// Example usage:
//
//	cfg := app.NewConfig(false, "")
//	application, err := app.NewApplication(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads the configuration, initializes logging from it and
// creates all services. Nothing connects to Discord before Run.
func NewApplication(ctx context.Context, cfg *Config) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	if cfg.Settings == nil {
		settings, err := config.Load(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.Settings = &settings
	}
	InitLogging(cfg.Settings.Logging, cfg.Debug)

	services, err := InitializeServices(ctx, cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// InitLogging applies the configured level and format. debug overrides the
// configured level.
func InitLogging(settings config.LoggingConfig, debug bool) {
	level, err := logging.ParseLevel(settings.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	if debug {
		level = logging.LevelDebug
	}
	logging.Init(level, logging.Format(settings.Format), os.Stderr)
}

// Run connects to Discord and handles events until ctx is cancelled or the
// process receives SIGINT or SIGTERM, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	return a.services.Run(ctx)
}

// Services exposes the initialized services.
func (a *Application) Services() *Services {
	return a.services
}
