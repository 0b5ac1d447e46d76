// Package providers contains dependency injection providers for docwatch.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/docwatch/internal/config"
	"github.com/listenupapp/docwatch/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting docwatch",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"watch_root", cfg.Watch.Root,
		"store_path", cfg.Store.Path,
	)

	for _, warning := range cfg.Warnings {
		log.Warn("Configuration warning", "warning", warning)
	}

	return log, nil
}
