// Package trigger decides when a changed file should be documented. It
// accumulates changed lines per path, arms a debounce timer once the
// threshold is reached, and enforces a cooldown between dispatches.
package trigger

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/listenupapp/docwatch/internal/classify"
	"github.com/listenupapp/docwatch/internal/clock"
	"github.com/listenupapp/docwatch/internal/errors"
	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/watcher"
)

// Dispatcher runs a generation job and always returns a result.
type Dispatcher interface {
	Dispatch(ctx context.Context, job generator.Job) generator.Result
}

// pathState is created lazily on the first qualifying event for a path.
type pathState struct {
	accumulated int
	lastStart   time.Time
	timer       clock.Timer
	// timerSeq identifies the live timer so a stale callback can detect
	// that it was replaced or canceled.
	timerSeq   uint64
	documented bool
}

// Status is a point-in-time view of one path's trigger state.
type Status struct {
	Path                    string     `json:"path"`
	AccumulatedLines        int        `json:"accumulated_lines"`
	Documented              bool       `json:"documented"`
	CoolingDown             bool       `json:"cooling_down"`
	Pending                 bool       `json:"pending"`
	LastGenerationStartedAt *time.Time `json:"last_generation_started_at,omitempty"`
}

// Controller is the per-path trigger state machine.
type Controller struct {
	cfg        Config
	classifier *classify.Classifier
	resolver   *classify.Resolver
	dispatcher Dispatcher
	sink       Sink
	clock      clock.Clock
	logger     *slog.Logger

	mu     sync.Mutex
	states map[string]*pathState
	seq    uint64

	// inflight tracks dispatches so shutdown can wait for them.
	inflight sync.WaitGroup
}

// New creates a Controller. sink may be nil.
func New(
	cfg Config,
	classifier *classify.Classifier,
	resolver *classify.Resolver,
	dispatcher Dispatcher,
	sink Sink,
	clk clock.Clock,
	logger *slog.Logger,
) *Controller {
	cfg.setDefaults()
	if sink == nil {
		sink = func(generator.Result) {}
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &Controller{
		cfg:        cfg,
		classifier: classifier,
		resolver:   resolver,
		dispatcher: dispatcher,
		sink:       sink,
		clock:      clk,
		logger:     logger,
		states:     make(map[string]*pathState),
	}
}

// Callback returns a function suitable for consuming watcher events.
func (c *Controller) Callback() func(watcher.Event) {
	return c.HandleEvent
}

// HandleEvent applies one change event. Events for a single path must be
// delivered in order; events for different paths may interleave.
func (c *Controller) HandleEvent(event watcher.Event) {
	if event.Kind == watcher.KindDirectoryCreated {
		return
	}

	if verdict := c.classifier.Classify(event.Path); verdict != classify.Eligible {
		c.logger.Debug("ignoring change", "path", event.Path, "reason", verdict.String())
		return
	}

	lines := 0
	if event.HasCounts {
		lines = event.LinesChanged
	}

	switch event.Kind {
	case watcher.KindCreated:
		c.handleCreated(event.Path, lines)
	case watcher.KindModified:
		c.handleModified(event.Path, lines)
	}
}

func (c *Controller) handleCreated(path string, lines int) {
	if !c.cfg.GenerateOnCreate {
		c.mu.Lock()
		// A created file starts a fresh count.
		c.stateLocked(path).accumulated = lines
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	job := c.scheduleLocked(path, generator.TriggerCreate, "")
	job.LinesChanged = lines
	c.mu.Unlock()

	c.dispatchAsync(job)
}

func (c *Controller) handleModified(path string, lines int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked(path)
	st.accumulated += lines

	if st.accumulated < c.cfg.ChangeThreshold {
		return
	}

	if c.coolingDownLocked(st) {
		c.logger.Debug("threshold reached during cooldown",
			"path", path,
			"accumulated", st.accumulated,
		)
		return
	}

	c.stopTimerLocked(st)
	c.seq++
	seq := c.seq
	st.timerSeq = seq
	st.timer = c.clock.AfterFunc(c.cfg.Debounce, func() { c.fire(path, seq) })

	c.logger.Debug("debounce armed",
		"path", path,
		"accumulated", st.accumulated,
		"delay", c.cfg.Debounce,
	)
}

// fire runs when a debounce timer expires. State is looked up fresh so a
// reset or replaced timer turns the callback into a no-op.
func (c *Controller) fire(path string, seq uint64) {
	c.mu.Lock()
	st, ok := c.states[path]
	if !ok || st.timer == nil || st.timerSeq != seq {
		c.mu.Unlock()
		return
	}
	st.timer = nil

	if c.coolingDownLocked(st) {
		c.mu.Unlock()
		return
	}

	job := c.scheduleLocked(path, generator.TriggerAuto, "")
	c.mu.Unlock()

	c.dispatchAsync(job)
}

// scheduleLocked enters cooldown and drains the accumulator. The start
// timestamp is recorded before the dispatch exists so a second timer for
// the same path observes the cooldown.
func (c *Controller) scheduleLocked(path string, trigger generator.Trigger, guidance string) generator.Job {
	st := c.stateLocked(path)
	c.stopTimerLocked(st)

	st.lastStart = c.clock.Now()
	lines := st.accumulated
	st.accumulated = 0

	return generator.Job{
		Request: generator.Request{
			Path:        path,
			DetailLevel: c.resolver.Resolve(path),
			Guidance:    guidance,
		},
		Trigger:      trigger,
		LinesChanged: lines,
	}
}

func (c *Controller) dispatchAsync(job generator.Job) {
	c.logger.Info("dispatching documentation",
		"path", job.Path,
		"trigger", job.Trigger,
		"lines", job.LinesChanged,
		"detail_level", job.DetailLevel,
	)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.deliver(c.dispatcher.Dispatch(context.Background(), job))
	}()
}

// deliver records the documented marker and hands the result to the sink.
// Results for paths reset while in flight are still delivered.
func (c *Controller) deliver(result generator.Result) {
	if result.Success {
		c.mu.Lock()
		if st, ok := c.states[result.FilePath]; ok {
			st.documented = true
		}
		c.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("result sink panicked", "path", result.FilePath, "panic", r)
		}
	}()
	c.sink(result)
}

// DocumentFile dispatches path immediately, bypassing threshold and
// debounce, and waits for the result. Ineligible paths are rejected with
// an EXCLUDED error. The result is also delivered to the sink.
func (c *Controller) DocumentFile(ctx context.Context, path, guidance string) (generator.Result, error) {
	path = c.normalize(path)

	if verdict := c.classifier.Classify(path); verdict != classify.Eligible {
		return generator.Result{}, errors.Excludedf("%s is not eligible for documentation (%s)", path, verdict)
	}

	c.mu.Lock()
	job := c.scheduleLocked(path, generator.TriggerManual, guidance)
	c.mu.Unlock()

	c.logger.Info("manual documentation requested", "path", path, "lines", job.LinesChanged)

	c.inflight.Add(1)
	defer c.inflight.Done()

	// The accumulator is already drained, so a disconnecting caller must not
	// abort the generation it started.
	result := c.dispatcher.Dispatch(context.WithoutCancel(ctx), job)
	c.deliver(result)
	return result, nil
}

// ResetFileTracking clears the accumulated count and cooldown for path and
// cancels its pending timer. An in-flight dispatch is not affected.
func (c *Controller) ResetFileTracking(path string) {
	path = c.normalize(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[path]
	if !ok {
		return
	}
	c.stopTimerLocked(st)
	st.accumulated = 0
	st.lastStart = time.Time{}
}

// FileChanges returns the accumulated changed-line count for path.
func (c *Controller) FileChanges(path string) int {
	path = c.normalize(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[path]; ok {
		return st.accumulated
	}
	return 0
}

// IsFileDocumented reports whether a dispatch for path has ever succeeded.
func (c *Controller) IsFileDocumented(path string) bool {
	path = c.normalize(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[path]
	return ok && st.documented
}

// Status returns a snapshot of path's trigger state.
func (c *Controller) Status(path string) Status {
	path = c.normalize(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{Path: path}
	st, ok := c.states[path]
	if !ok {
		return status
	}

	status.AccumulatedLines = st.accumulated
	status.Documented = st.documented
	status.CoolingDown = c.coolingDownLocked(st)
	status.Pending = st.timer != nil
	if !st.lastStart.IsZero() {
		started := st.lastStart
		status.LastGenerationStartedAt = &started
	}
	return status
}

// Reset cancels every pending timer and forgets all per-path state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, st := range c.states {
		c.stopTimerLocked(st)
	}
	c.states = make(map[string]*pathState)
	c.logger.Info("trigger state reset")
}

// Wait blocks until all in-flight dispatches have delivered their results.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Shutdown cancels pending timers and waits for in-flight dispatches.
func (c *Controller) Shutdown() error {
	c.Reset()
	c.Wait()
	return nil
}

func (c *Controller) stateLocked(path string) *pathState {
	st, ok := c.states[path]
	if !ok {
		st = &pathState{}
		c.states[path] = st
	}
	return st
}

func (c *Controller) stopTimerLocked(st *pathState) {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
}

func (c *Controller) coolingDownLocked(st *pathState) bool {
	if st.lastStart.IsZero() {
		return false
	}
	return c.clock.Now().Sub(st.lastStart) < c.cfg.Cooldown
}

// ResolvePath returns the absolute, cleaned form of path that the controller
// uses as its state key. Relative paths are taken against the watch root.
func (c *Controller) ResolvePath(path string) string {
	return c.normalize(path)
}

func (c *Controller) normalize(path string) string {
	if !filepath.IsAbs(path) && c.cfg.Root != "" {
		path = filepath.Join(c.cfg.Root, path)
	}
	return filepath.Clean(path)
}
