package generator

import (
	"context"
	"log/slog"
)

// DryRunGenerator logs what would be generated and reports success with
// the documentation path that a real generator would write.
type DryRunGenerator struct {
	logger    *slog.Logger
	root      string
	suffix    string
	outputDir string
}

// NewDryRunGenerator creates a DryRunGenerator.
func NewDryRunGenerator(logger *slog.Logger, root, suffix, outputDir string) *DryRunGenerator {
	return &DryRunGenerator{logger: logger, root: root, suffix: suffix, outputDir: outputDir}
}

// Generate implements Generator.
func (g *DryRunGenerator) Generate(_ context.Context, req Request) (Response, error) {
	out := DocPath(g.root, req.Path, g.suffix, g.outputDir)
	g.logger.Info("dry run: would generate documentation",
		"path", req.Path,
		"detail_level", req.DetailLevel,
		"output", out,
		"has_guidance", req.Guidance != "",
	)
	return Response{Success: true, OutputLocation: out}, nil
}
