package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/docwatch/internal/errors"
	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/store"
	"github.com/listenupapp/docwatch/internal/trigger"
)

func (s *Server) registerFileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "documentFile",
		Method:      http.MethodPost,
		Path:        "/api/v1/files/document",
		Summary:     "Document file",
		Description: "Generates documentation for a file now, skipping the change threshold and debounce. Waits for the generator and returns its result.",
		Tags:        []string{"Files"},
	}, s.handleDocumentFile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFileChanges",
		Method:      http.MethodGet,
		Path:        "/api/v1/files/changes",
		Summary:     "Get file changes",
		Description: "Returns the accumulated change count and trigger state for a file",
		Tags:        []string{"Files"},
	}, s.handleGetFileChanges)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFileHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/files/history",
		Summary:     "Get generation history",
		Description: "Returns recorded generation results, newest first. Omit path for all files.",
		Tags:        []string{"Files"},
	}, s.handleGetFileHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLastSuccess",
		Method:      http.MethodGet,
		Path:        "/api/v1/files/last-success",
		Summary:     "Get last successful generation",
		Description: "Returns the most recent successful generation for a file",
		Tags:        []string{"Files"},
	}, s.handleGetLastSuccess)
}

// === DTOs ===

// DocumentFileRequest is the request body for a manual generation.
type DocumentFileRequest struct {
	Path     string `json:"path" validate:"required" doc:"File path, absolute or relative to the watch root"`
	Guidance string `json:"guidance,omitempty" validate:"omitempty,max=4000" doc:"Free-form instructions passed to the generator"`
}

// DocumentFileInput wraps the document file request for Huma.
type DocumentFileInput struct {
	Body DocumentFileRequest
}

// GenerationResponse is one generation result in API responses.
type GenerationResponse struct {
	ID             string    `json:"id" doc:"Dispatch ID"`
	FilePath       string    `json:"file_path" doc:"Absolute path of the documented file"`
	DetailLevel    string    `json:"detail_level" doc:"Detail level requested from the generator"`
	Trigger        string    `json:"trigger" enum:"auto,create,manual" doc:"What started the generation"`
	LinesChanged   int       `json:"lines_changed" doc:"Accumulated changed lines at dispatch time"`
	Success        bool      `json:"success" doc:"Whether the generator succeeded"`
	OutputLocation string    `json:"output_location,omitempty" doc:"Where the documentation was written"`
	ErrorMessage   string    `json:"error_message,omitempty" doc:"Failure reason"`
	StartedAt      time.Time `json:"started_at" doc:"Dispatch start time"`
	FinishedAt     time.Time `json:"finished_at" doc:"Dispatch finish time"`
}

func newGenerationResponse(r generator.Result) GenerationResponse {
	return GenerationResponse{
		ID:             r.ID,
		FilePath:       r.FilePath,
		DetailLevel:    r.DetailLevel,
		Trigger:        string(r.Trigger),
		LinesChanged:   r.LinesChanged,
		Success:        r.Success,
		OutputLocation: r.OutputLocation,
		ErrorMessage:   r.ErrorMessage,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

// GenerationOutput wraps a generation result for Huma.
type GenerationOutput struct {
	Body GenerationResponse
}

// FilePathInput selects one file by query parameter.
type FilePathInput struct {
	Path string `query:"path" required:"true" doc:"File path, absolute or relative to the watch root"`
}

// FileChangesResponse is the trigger state of one file.
type FileChangesResponse struct {
	Path                    string     `json:"path" doc:"Absolute file path"`
	AccumulatedLines        int        `json:"accumulated_lines" doc:"Changed lines since the last generation"`
	Documented              bool       `json:"documented" doc:"Whether a generation has succeeded for this file"`
	CoolingDown             bool       `json:"cooling_down" doc:"Whether the file is inside its cooldown window"`
	Pending                 bool       `json:"pending" doc:"Whether a debounce timer is armed"`
	LastGenerationStartedAt *time.Time `json:"last_generation_started_at,omitempty" doc:"When the last generation started"`
}

func newFileChangesResponse(st trigger.Status) FileChangesResponse {
	return FileChangesResponse{
		Path:                    st.Path,
		AccumulatedLines:        st.AccumulatedLines,
		Documented:              st.Documented,
		CoolingDown:             st.CoolingDown,
		Pending:                 st.Pending,
		LastGenerationStartedAt: st.LastGenerationStartedAt,
	}
}

// FileChangesOutput wraps the file changes response for Huma.
type FileChangesOutput struct {
	Body FileChangesResponse
}

// HistoryInput contains parameters for listing generation history.
type HistoryInput struct {
	Path  string `query:"path" doc:"File path; empty lists every file"`
	Limit int    `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Maximum results to return"`
}

// HistoryResponse contains a page of generation results.
type HistoryResponse struct {
	Path    string               `json:"path,omitempty" doc:"File path the history is filtered to"`
	Results []GenerationResponse `json:"results" doc:"Generation results, newest first"`
}

// HistoryOutput wraps the history response for Huma.
type HistoryOutput struct {
	Body HistoryResponse
}

// === Handlers ===

func (s *Server) handleDocumentFile(ctx context.Context, input *DocumentFileInput) (*GenerationOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, handlerError(err)
	}

	result, err := s.services.Controller.DocumentFile(ctx, input.Body.Path, input.Body.Guidance)
	if err != nil {
		return nil, handlerError(err)
	}

	resp := newGenerationResponse(result)
	if !result.Success {
		return nil, handlerError(domainerrors.GenerationFailed(result.ErrorMessage).WithDetails(resp))
	}

	return &GenerationOutput{Body: resp}, nil
}

func (s *Server) handleGetFileChanges(_ context.Context, input *FilePathInput) (*FileChangesOutput, error) {
	status := s.services.Controller.Status(input.Path)
	return &FileChangesOutput{Body: newFileChangesResponse(status)}, nil
}

func (s *Server) handleGetFileHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	if s.services.History == nil {
		return nil, huma.Error503ServiceUnavailable("history store not configured")
	}

	path := ""
	if input.Path != "" {
		path = s.services.Controller.ResolvePath(input.Path)
	}

	results, err := s.services.History.History(ctx, path, store.ClampLimit(input.Limit))
	if err != nil {
		s.logger.Error("failed to read generation history", "path", path, "error", err)
		return nil, handlerError(domainerrors.Internal("failed to read generation history").WithCause(err))
	}

	resp := HistoryResponse{
		Path:    path,
		Results: make([]GenerationResponse, 0, len(results)),
	}
	for _, r := range results {
		resp.Results = append(resp.Results, newGenerationResponse(r))
	}

	return &HistoryOutput{Body: resp}, nil
}

func (s *Server) handleGetLastSuccess(ctx context.Context, input *FilePathInput) (*GenerationOutput, error) {
	if s.services.History == nil {
		return nil, huma.Error503ServiceUnavailable("history store not configured")
	}

	result, err := s.services.History.LastSuccess(ctx, s.services.Controller.ResolvePath(input.Path))
	if err != nil {
		return nil, handlerError(err)
	}

	return &GenerationOutput{Body: newGenerationResponse(*result)}, nil
}
