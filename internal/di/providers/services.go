package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/docwatch/internal/config"
	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/logger"
	"github.com/listenupapp/docwatch/internal/ratelimit"
	"github.com/listenupapp/docwatch/internal/store"
	"github.com/listenupapp/docwatch/internal/trigger"
)

// ProvideGenerator provides the documentation generator. Without a
// configured command the dry-run generator only logs what it would do.
func ProvideGenerator(i do.Injector) (generator.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Generator.Command == "" {
		log.Warn("No generator command configured, running in dry-run mode")
		return generator.NewDryRunGenerator(log.Logger, cfg.Watch.Root, cfg.Trigger.DocSuffix, cfg.Trigger.DocOutputDir), nil
	}

	gen, err := generator.NewCommandGenerator(cfg.Generator.Command, cfg.Generator.Timeout, cfg.Watch.Root)
	if err != nil {
		return nil, err
	}

	log.Info("Generator command configured",
		"command", cfg.Generator.Command,
		"timeout", cfg.Generator.Timeout,
	)

	return gen, nil
}

// ProvideDispatcher provides the throttled generation dispatcher.
func ProvideDispatcher(i do.Injector) (*generator.Dispatcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	gen := do.MustInvoke[generator.Generator](i)

	limiter := ratelimit.PerMinute(cfg.Generator.RatePerMinute, cfg.Generator.Burst)

	log.Info("Generation dispatcher ready",
		"rate_per_minute", cfg.Generator.RatePerMinute,
		"burst", cfg.Generator.Burst,
	)

	return generator.NewDispatcher(gen, limiter, log.Logger), nil
}

// ProvideController provides the trigger controller. Every result is
// recorded in the history store and broadcast to SSE clients.
func ProvideController(i do.Injector) (*trigger.Controller, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	dispatcher := do.MustInvoke[*generator.Dispatcher](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	resolver := cfg.Resolver()
	classifier := cfg.Classifier(resolver)

	sink := trigger.Sinks(
		store.Recorder(storeHandle.Store, log.Logger),
		sseHandle.Publish,
	)

	controller := trigger.New(cfg.TriggerConfig(), classifier, resolver, dispatcher, sink, nil, log.Logger)

	log.Info("Trigger controller ready",
		"threshold", cfg.Trigger.ChangeThreshold,
		"debounce", cfg.Trigger.Debounce,
		"cooldown", cfg.Trigger.Cooldown,
		"generate_on_create", cfg.Trigger.GenerateOnCreate,
		"extensions", resolver.Extensions(),
	)

	return controller, nil
}
