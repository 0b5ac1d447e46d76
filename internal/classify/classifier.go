// Package classify decides which watched paths are eligible for automatic
// documentation and at what detail level.
package classify

import (
	"path/filepath"
	"strings"
)

// Verdict is the outcome of classifying a path.
type Verdict int

const (
	// Eligible paths may trigger documentation.
	Eligible Verdict = iota
	// ExcludedDirectory paths live under an excluded directory.
	ExcludedDirectory
	// DocumentationOutput paths are generated documentation themselves.
	DocumentationOutput
	// UnconfiguredExtension paths have no detail level configured.
	UnconfiguredExtension
)

// String returns the string representation of a Verdict.
func (v Verdict) String() string {
	switch v {
	case Eligible:
		return "eligible"
	case ExcludedDirectory:
		return "excluded_directory"
	case DocumentationOutput:
		return "documentation_output"
	case UnconfiguredExtension:
		return "unconfigured_extension"
	default:
		return "unknown"
	}
}

// Classifier filters paths before they reach the trigger controller.
type Classifier struct {
	root      string
	excluded  []string
	docSuffix string
	docDir    string
	resolver  *Resolver
}

// NewClassifier creates a Classifier. Directory rules match segments below
// root only, so a root that itself sits under "build" or "docs" is still
// watched. excludedDirs may contain nested segments such as "src/generated".
// docSuffix marks generated files by name and docOutputDir marks them by
// location; either may be empty.
func NewClassifier(root string, excludedDirs []string, docSuffix, docOutputDir string, resolver *Resolver) *Classifier {
	excluded := make([]string, 0, len(excludedDirs))
	for _, dir := range excludedDirs {
		dir = strings.Trim(filepath.ToSlash(strings.TrimSpace(dir)), "/")
		if dir != "" {
			excluded = append(excluded, "/"+dir+"/")
		}
	}

	docDir := strings.Trim(filepath.ToSlash(strings.TrimSpace(docOutputDir)), "/")
	if docDir != "" {
		docDir = "/" + docDir + "/"
	}

	if root != "" {
		root = filepath.Clean(root)
	}

	return &Classifier{
		root:      root,
		excluded:  excluded,
		docSuffix: strings.ToLower(docSuffix),
		docDir:    docDir,
		resolver:  resolver,
	}
}

// Classify returns the verdict for path. Checks run in order: excluded
// directory, documentation output, extension.
func (c *Classifier) Classify(path string) Verdict {
	// Wrapping in separators makes "node_modules" match only whole segments.
	slashed := "/" + strings.TrimPrefix(filepath.ToSlash(c.relative(path)), "/")

	for _, dir := range c.excluded {
		if strings.Contains(slashed, dir) {
			return ExcludedDirectory
		}
	}

	if c.isDocumentationOutput(slashed) {
		return DocumentationOutput
	}

	if !c.resolver.Configured(path) {
		return UnconfiguredExtension
	}

	return Eligible
}

// Eligible reports whether path may trigger documentation.
func (c *Classifier) Eligible(path string) bool {
	return c.Classify(path) == Eligible
}

// relative strips the root from absolute paths inside it. Relative paths and
// paths outside the root are matched as given.
func (c *Classifier) relative(path string) string {
	if c.root == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (c *Classifier) isDocumentationOutput(slashed string) bool {
	if c.docSuffix != "" && strings.HasSuffix(strings.ToLower(slashed), c.docSuffix) {
		return true
	}
	return c.docDir != "" && strings.Contains(slashed, c.docDir)
}
