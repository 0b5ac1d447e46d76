package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/docwatch/internal/config"
	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/trigger"
)

func newTestInjector(t *testing.T, args ...string) (do.Injector, string) {
	t.Helper()

	root := t.TempDir()
	base := []string{
		"-root", root,
		"-store-path", filepath.Join(t.TempDir(), "history.db"),
		"-env-file", filepath.Join(t.TempDir(), ".env"),
		"-log-level", "error",
		"-server", "false",
	}

	cfg, err := config.Load(append(base, args...))
	require.NoError(t, err)

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvideSSEManager)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideGenerator)
	do.Provide(injector, ProvideDispatcher)
	do.Provide(injector, ProvideController)
	do.Provide(injector, ProvideFileWatcher)
	do.Provide(injector, ProvideHTTPServer)

	t.Cleanup(func() {
		_ = injector.Shutdown()
	})

	return injector, root
}

func TestProvideGenerator_DryRunWithoutCommand(t *testing.T) {
	injector, _ := newTestInjector(t)

	gen := do.MustInvoke[generator.Generator](injector)
	assert.IsType(t, &generator.DryRunGenerator{}, gen)
}

func TestProvideGenerator_Command(t *testing.T) {
	injector, _ := newTestInjector(t, "-generator-command", "docgen --fast")

	gen := do.MustInvoke[generator.Generator](injector)
	assert.IsType(t, &generator.CommandGenerator{}, gen)
}

func TestProvideHTTPServer_Disabled(t *testing.T) {
	injector, _ := newTestInjector(t)

	handle := do.MustInvoke[*HTTPServerHandle](injector)
	assert.Nil(t, handle.Server)
	assert.NoError(t, handle.Shutdown())
}

func TestProviders_NewFileIsDocumentedAndRecorded(t *testing.T) {
	injector, root := newTestInjector(t, "-generate-on-create", "true")

	_ = do.MustInvoke[*FileWatcherHandle](injector)
	controller := do.MustInvoke[*trigger.Controller](injector)
	storeHandle := do.MustInvoke[*StoreHandle](injector)

	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))

	assert.Eventually(t, func() bool {
		results, err := storeHandle.History(context.Background(), path, 10)
		return err == nil && len(results) == 1
	}, 5*time.Second, 20*time.Millisecond)

	results, err := storeHandle.History(context.Background(), path, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, generator.TriggerCreate, results[0].Trigger)
	assert.True(t, results[0].Success)
	assert.True(t, controller.IsFileDocumented(path))
}
