// Package di provides dependency injection configuration for docwatch.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/docwatch/internal/config"
	"github.com/listenupapp/docwatch/internal/di/providers"
	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/logger"
	"github.com/listenupapp/docwatch/internal/trigger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Result sinks
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Generation
	do.Provide(injector, providers.ProvideGenerator)
	do.Provide(injector, providers.ProvideDispatcher)
	do.Provide(injector, providers.ProvideController)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Services start in dependency order:
// sinks before the controller, the controller before the watcher feeding it.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[generator.Generator](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*generator.Dispatcher](injector)
	_ = do.MustInvoke[*trigger.Controller](injector)

	if _, err := do.Invoke[*providers.FileWatcherHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
