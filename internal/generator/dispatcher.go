package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/docwatch/internal/id"
)

// Job describes one dispatch.
type Job struct {
	Request
	Trigger      Trigger
	LinesChanged int
}

// Result is the normalized outcome of a dispatch. Exactly one Result is
// produced per dispatch attempt, whether or not the generator succeeded.
type Result struct {
	ID             string    `json:"id"`
	FilePath       string    `json:"file_path"`
	DetailLevel    string    `json:"detail_level"`
	Trigger        Trigger   `json:"trigger"`
	LinesChanged   int       `json:"lines_changed"`
	Success        bool      `json:"success"`
	OutputLocation string    `json:"output_location,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Limiter throttles outbound generation per key.
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// Dispatcher wraps a Generator so that no error or panic escapes a dispatch.
type Dispatcher struct {
	gen     Generator
	limiter Limiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewDispatcher creates a Dispatcher. limiter may be nil to disable throttling.
func NewDispatcher(gen Generator, limiter Limiter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		gen:     gen,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// Dispatch runs job and always returns a Result. Throttling is keyed by
// trigger kind so manual requests never consume the automatic budget.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) Result {
	result := Result{
		FilePath:     job.Path,
		DetailLevel:  job.DetailLevel.String(),
		Trigger:      job.Trigger,
		LinesChanged: job.LinesChanged,
		StartedAt:    d.now(),
	}

	dispatchID, err := id.Generate(id.PrefixGeneration)
	if err != nil {
		d.logger.Warn("failed to generate dispatch id", "error", err)
	}
	result.ID = dispatchID

	resp, err := d.run(ctx, job)
	result.FinishedAt = d.now()

	switch {
	case err != nil:
		result.Success = false
		result.ErrorMessage = err.Error()
	case !resp.Success:
		result.Success = false
		result.ErrorMessage = resp.ErrorMessage
		if result.ErrorMessage == "" {
			result.ErrorMessage = "generator reported failure"
		}
	default:
		result.Success = true
		result.OutputLocation = resp.OutputLocation
	}

	if result.Success {
		d.logger.Info("documentation generated",
			"id", result.ID,
			"path", result.FilePath,
			"trigger", result.Trigger,
			"output", result.OutputLocation,
			"duration", result.FinishedAt.Sub(result.StartedAt),
		)
	} else {
		d.logger.Warn("documentation generation failed",
			"id", result.ID,
			"path", result.FilePath,
			"trigger", result.Trigger,
			"error", result.ErrorMessage,
		)
	}

	return result
}

// run waits for a token and calls the generator, converting panics to errors.
func (d *Dispatcher) run(ctx context.Context, job Job) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, string(job.Trigger)); err != nil {
			return Response{}, fmt.Errorf("waiting for generation slot: %w", err)
		}
	}

	return d.gen.Generate(ctx, job.Request)
}
