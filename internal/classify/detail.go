package classify

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DetailLevel selects how verbose generated documentation should be.
type DetailLevel string

const (
	// DetailMinimal produces a short summary.
	DetailMinimal DetailLevel = "minimal"
	// DetailStandard is the default level.
	DetailStandard DetailLevel = "standard"
	// DetailDetailed produces exhaustive documentation.
	DetailDetailed DetailLevel = "detailed"
)

// String returns the level name.
func (d DetailLevel) String() string {
	return string(d)
}

// ParseDetailLevel converts a config string to a DetailLevel.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch DetailLevel(strings.ToLower(strings.TrimSpace(s))) {
	case DetailMinimal:
		return DetailMinimal, nil
	case DetailStandard:
		return DetailStandard, nil
	case DetailDetailed:
		return DetailDetailed, nil
	default:
		return "", fmt.Errorf("unknown detail level %q (must be minimal, standard, or detailed)", s)
	}
}

// DefaultExtensions are documented at the standard level when no
// per-extension map is configured.
var DefaultExtensions = []string{
	".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".kt", ".rs",
	".rb", ".php", ".c", ".h", ".cpp", ".hpp", ".cs", ".swift", ".scala",
}

// Resolver maps file extensions to detail levels. It is immutable once built.
type Resolver struct {
	levels map[string]DetailLevel
}

// NewResolver builds a lookup table from an extension map. Keys are
// normalized to lowercase with a leading dot. An empty map falls back to
// DefaultExtensions at DetailStandard.
func NewResolver(extensionLevels map[string]DetailLevel) *Resolver {
	levels := make(map[string]DetailLevel, len(extensionLevels))
	for ext, level := range extensionLevels {
		levels[NormalizeExt(ext)] = level
	}

	if len(levels) == 0 {
		for _, ext := range DefaultExtensions {
			levels[ext] = DetailStandard
		}
	}

	return &Resolver{levels: levels}
}

// Resolve returns the detail level for path, or DetailStandard when its
// extension is not configured.
func (r *Resolver) Resolve(path string) DetailLevel {
	if level, ok := r.levels[NormalizeExt(filepath.Ext(path))]; ok && level != "" {
		return level
	}
	return DetailStandard
}

// Configured reports whether path's extension has a detail level.
func (r *Resolver) Configured(path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	_, ok := r.levels[NormalizeExt(ext)]
	return ok
}

// Extensions returns the number of configured extensions.
func (r *Resolver) Extensions() int {
	return len(r.levels)
}

// NormalizeExt lowercases ext and ensures it has a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
