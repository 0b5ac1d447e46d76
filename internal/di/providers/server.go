package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/listenupapp/docwatch/internal/api"
	"github.com/listenupapp/docwatch/internal/config"
	"github.com/listenupapp/docwatch/internal/logger"
	"github.com/listenupapp/docwatch/internal/sse"
	"github.com/listenupapp/docwatch/internal/trigger"
)

// HTTPServerHandle wraps http.Server with Shutdownable. Server is nil when
// the control API is disabled.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	if h.Server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the control API server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Server.Enabled {
		log.Info("Control API disabled by configuration")
		return &HTTPServerHandle{}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	controller := do.MustInvoke[*trigger.Controller](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, cfg.Watch.Root, log.Logger)

	services := &api.Services{
		Controller: controller,
		History:    storeHandle.Store,
		Events:     sseHandle.Manager,
	}

	handler := api.NewServer(services, sseHandler, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Bind before returning so a taken port fails bootstrap.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
