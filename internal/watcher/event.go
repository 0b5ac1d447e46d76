package watcher

// Kind is the normalized kind of a change notification.
type Kind int

const (
	// KindCreated is emitted for a file that was not known before.
	KindCreated Kind = iota
	// KindModified is emitted for a known file whose content was written.
	KindModified
	// KindDirectoryCreated is emitted for a directory that was not known before.
	KindDirectoryCreated
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindModified:
		return "modified"
	case KindDirectoryCreated:
		return "directory_created"
	default:
		return "unknown"
	}
}

// Event is a normalized change notification. It is produced once per
// native notification and never mutated afterwards.
type Event struct {
	Kind Kind
	// Name is the base name of Path.
	Name string
	// Path is absolute and cleaned.
	Path string

	// LinesChanged is the line count for created files and the diff total
	// for modified files. Only meaningful when HasCounts is true.
	LinesChanged int
	// LinesAdded and LinesDeleted are set for modified files only.
	LinesAdded   int
	LinesDeleted int
	HasCounts    bool
}
