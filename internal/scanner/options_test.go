package scanner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.Equal(t, DefaultExcludedDirs, opts.ExcludedDirs)
	assert.Contains(t, opts.IgnorePatterns, "*.tmp")
	assert.Equal(t, DefaultMaxSnapshotBytes, opts.MaxSnapshotBytes)
	assert.False(t, opts.IncludeHidden)
}

func TestOptions_CustomValuesPreserved(t *testing.T) {
	opts := Options{
		ExcludedDirs:     []string{"gen"},
		IgnorePatterns:   []string{},
		MaxSnapshotBytes: 10,
	}
	opts.setDefaults()

	assert.Equal(t, []string{"gen"}, opts.ExcludedDirs)
	assert.Empty(t, opts.IgnorePatterns)
	assert.Equal(t, int64(10), opts.MaxSnapshotBytes)
}

func TestFilter_Skip(t *testing.T) {
	root := filepath.FromSlash("/repo")
	filter, err := NewFilter(root, Options{
		ExcludedDirs:   []string{"node_modules", "src/generated"},
		IgnorePatterns: []string{"*.tmp", "**/fixtures/*.golden"},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{"root", "/repo", true, false},
		{"plain file", "/repo/main.go", false, false},
		{"excluded dir", "/repo/node_modules", true, true},
		{"file under excluded dir", "/repo/node_modules/x/index.js", false, true},
		{"file named like excluded dir", "/repo/node_modules", false, false},
		{"nested exclusion", "/repo/src/generated", true, true},
		{"sibling of nested exclusion", "/repo/src/handwritten", true, false},
		{"hidden dir", "/repo/.cache", true, true},
		{"file under hidden dir", "/repo/.github/workflows/ci.yml", false, true},
		{"hidden file", "/repo/.env", false, true},
		{"glob on base name", "/repo/pkg/out.tmp", false, true},
		{"glob on relative path", "/repo/testdata/fixtures/a.golden", false, true},
		{"outside root", "/elsewhere/a.go", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Skip(filepath.FromSlash(tt.path), tt.isDir))
		})
	}
}

func TestFilter_IncludeHidden(t *testing.T) {
	filter, err := NewFilter("/repo", Options{IncludeHidden: true, IgnorePatterns: []string{}})
	require.NoError(t, err)

	assert.False(t, filter.Skip("/repo/.github/workflows/ci.yml", false))
	assert.True(t, filter.Skip("/repo/.git/HEAD", false), ".git stays excluded by the denylist")
}
