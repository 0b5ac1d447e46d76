package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/docwatch/internal/sse"
)

func (s *Server) registerTrackingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "resetFileTracking",
		Method:      http.MethodDelete,
		Path:        "/api/v1/files/tracking",
		Summary:     "Reset file tracking",
		Description: "Clears the accumulated change count and cooldown for a file and cancels its pending timer",
		Tags:        []string{"Tracking"},
	}, s.handleResetFileTracking)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetAllTracking",
		Method:      http.MethodPost,
		Path:        "/api/v1/tracking/reset",
		Summary:     "Reset all tracking",
		Description: "Cancels every pending timer and forgets all per-file trigger state",
		Tags:        []string{"Tracking"},
	}, s.handleResetAllTracking)
}

// ResetAllResponse acknowledges a global reset.
type ResetAllResponse struct {
	Reset bool `json:"reset" doc:"Always true"`
}

// ResetAllOutput wraps the reset response for Huma.
type ResetAllOutput struct {
	Body ResetAllResponse
}

func (s *Server) handleResetFileTracking(_ context.Context, input *FilePathInput) (*FileChangesOutput, error) {
	path := s.services.Controller.ResolvePath(input.Path)
	s.services.Controller.ResetFileTracking(path)
	s.emit(sse.NewTrackingResetEvent(path))

	s.logger.Info("file tracking reset", "path", path)

	return &FileChangesOutput{Body: newFileChangesResponse(s.services.Controller.Status(path))}, nil
}

func (s *Server) handleResetAllTracking(_ context.Context, _ *struct{}) (*ResetAllOutput, error) {
	s.services.Controller.Reset()
	s.emit(sse.NewTrackingResetEvent(""))

	return &ResetAllOutput{Body: ResetAllResponse{Reset: true}}, nil
}

func (s *Server) emit(event sse.Event) {
	if s.services.Events != nil {
		s.services.Events.Emit(event)
	}
}
