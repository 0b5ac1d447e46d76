// Package diff computes cheap positional line statistics between two
// snapshots of a file.
//
// The comparison is index based: line i of the old content is compared with
// line i of the new content. A line that moved is counted as changed rather
// than matched, so inserting a line near the top of a file reports every
// following line as modified. Callers use the totals as an activity signal,
// not as a patch.
package diff

import "strings"

// Stats summarizes the difference between two snapshots.
type Stats struct {
	// Total is Modified + Added + Deleted.
	Total    int `json:"total"`
	Added    int `json:"added"`
	Deleted  int `json:"deleted"`
	Modified int `json:"modified"`
}

// Lines compares oldContent with newContent line by line.
func Lines(oldContent, newContent string) Stats {
	oldLines := SplitLines(oldContent)
	newLines := SplitLines(newContent)

	var s Stats
	s.Added = max(0, len(newLines)-len(oldLines))
	s.Deleted = max(0, len(oldLines)-len(newLines))

	for i := range min(len(oldLines), len(newLines)) {
		if oldLines[i] != newLines[i] {
			s.Modified++
		}
	}

	s.Total = s.Modified + s.Added + s.Deleted
	return s
}

// SplitLines splits content on newline boundaries. CRLF endings are
// normalized first. Empty content is a single empty line.
func SplitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

// CountLines returns the number of lines SplitLines would produce.
func CountLines(content string) int {
	return strings.Count(strings.ReplaceAll(content, "\r\n", "\n"), "\n") + 1
}
