package trigger

import "time"

// Default trigger settings.
const (
	DefaultChangeThreshold = 40
	DefaultDebounce        = 20 * time.Second
	DefaultCooldown        = 30 * time.Second
)

// Config holds the timing and threshold settings of the controller. Path
// eligibility and detail levels live in the classifier and resolver.
type Config struct {
	// Root resolves relative paths passed to the public API.
	Root string
	// ChangeThreshold is the accumulated line count that arms the debounce timer.
	ChangeThreshold int
	// GenerateOnCreate dispatches immediately for newly created files.
	GenerateOnCreate bool
	// Debounce is the quiet period after the last qualifying change.
	Debounce time.Duration
	// Cooldown is the minimum spacing between dispatch starts for one path.
	Cooldown time.Duration
}

func (c *Config) setDefaults() {
	if c.ChangeThreshold <= 0 {
		c.ChangeThreshold = DefaultChangeThreshold
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}
}
