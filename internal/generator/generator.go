// Package generator invokes documentation generation for a single file and
// normalizes the outcome into a Result.
package generator

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/listenupapp/docwatch/internal/classify"
)

// Trigger records why a generation was started.
type Trigger string

const (
	// TriggerAuto is a debounced dispatch after the change threshold was reached.
	TriggerAuto Trigger = "auto"
	// TriggerCreate is an immediate dispatch for a newly created file.
	TriggerCreate Trigger = "create"
	// TriggerManual is an explicit request through the control API.
	TriggerManual Trigger = "manual"
)

// Request is the input handed to a Generator.
type Request struct {
	Path        string
	DetailLevel classify.DetailLevel
	// Guidance is optional free text, only set for manual triggers.
	Guidance string
}

// Response is what a Generator reports back.
type Response struct {
	Success        bool
	OutputLocation string
	ErrorMessage   string
}

// Generator produces documentation for one file. Implementations may be
// slow and may fail; errors are converted to failed results by the Dispatcher.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, req Request) (Response, error)

// Generate calls f(ctx, req).
func (f Func) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// DocPath returns the documentation file that belongs to path: the source
// extension is replaced by suffix, and the file is placed under outputDir
// when one is given. outputDir is resolved relative to root.
func DocPath(root, path, suffix, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + suffix
	if outputDir == "" {
		return filepath.Join(filepath.Dir(path), base)
	}

	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = ""
	}
	return filepath.Join(root, outputDir, rel, base)
}
