package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludedDirs are never walked or watched.
var DefaultExcludedDirs = []string{
	"node_modules", ".git", "dist", "build", "vendor", "coverage",
	"__pycache__", ".next", "target", ".idea", ".vscode",
}

// DefaultIgnorePatterns skip editor and OS scratch files.
var DefaultIgnorePatterns = []string{"*.tmp", "*.swp", "*~", ".DS_Store"}

// DefaultMaxSnapshotBytes caps how much of a file is kept as a diff baseline.
const DefaultMaxSnapshotBytes int64 = 5 << 20

// Options configures which entries the scanner and watcher consider.
type Options struct {
	// ExcludedDirs are directory names or nested paths ("src/gen") to skip.
	ExcludedDirs []string
	// IgnorePatterns are glob patterns matched against the base name and
	// the root-relative path of every entry.
	IgnorePatterns []string
	// MaxSnapshotBytes marks larger files as unreadable.
	MaxSnapshotBytes int64
	// IncludeHidden disables the hidden entry skip.
	IncludeHidden bool
}

func (o *Options) setDefaults() {
	if o.ExcludedDirs == nil {
		o.ExcludedDirs = DefaultExcludedDirs
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = DefaultIgnorePatterns
	}
	if o.MaxSnapshotBytes <= 0 {
		o.MaxSnapshotBytes = DefaultMaxSnapshotBytes
	}
}

// Filter decides which entries under a root are skipped.
type Filter struct {
	root          string
	excluded      []string
	globs         []glob.Glob
	includeHidden bool
}

// NewFilter compiles opts for entries under root.
func NewFilter(root string, opts Options) (*Filter, error) {
	opts.setDefaults()

	excluded := make([]string, 0, len(opts.ExcludedDirs))
	for _, dir := range opts.ExcludedDirs {
		dir = strings.Trim(filepath.ToSlash(strings.TrimSpace(dir)), "/")
		if dir != "" {
			excluded = append(excluded, "/"+dir+"/")
		}
	}

	globs := make([]glob.Glob, 0, len(opts.IgnorePatterns))
	for _, pattern := range opts.IgnorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	return &Filter{
		root:          filepath.Clean(root),
		excluded:      excluded,
		globs:         globs,
		includeHidden: opts.IncludeHidden,
	}, nil
}

// Skip reports whether path should be ignored. The root itself is never
// skipped. For directories, a true result means the whole subtree is skipped.
func (f *Filter) Skip(path string, isDir bool) bool {
	rel, err := filepath.Rel(f.root, filepath.Clean(path))
	if err != nil || rel == "." {
		return false
	}
	if strings.HasPrefix(rel, "..") {
		return true
	}
	slashed := "/" + filepath.ToSlash(rel) + "/"

	if !f.includeHidden {
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			if strings.HasPrefix(part, ".") {
				return true
			}
		}
	}

	for _, dir := range f.excluded {
		if strings.Contains(slashed, dir) {
			// A file named like an excluded dir is fine; only its parents count.
			if isDir || strings.Contains(strings.TrimSuffix(slashed, filepath.Base(rel)+"/"), dir) {
				return true
			}
		}
	}

	base := filepath.Base(rel)
	for _, g := range f.globs {
		if g.Match(base) || g.Match(filepath.ToSlash(rel)) {
			return true
		}
	}

	return false
}
