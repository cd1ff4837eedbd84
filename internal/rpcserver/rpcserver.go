// Copyright 2025 James Ross

// Package rpcserver exposes ApplicationManager over JSON-over-HTTP: one
// handler per front-end → manager request, plus a Server-Sent-Events stream
// relaying ApplicationManager.HostEvents() for host → front-end messages.
package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/appmanager"
	"github.com/gauntlet-host/launcherd/internal/domain"
)

// Server is the HTTP surface wrapping one ApplicationManager.
type Server struct {
	manager *appmanager.ApplicationManager
	logger  *zap.Logger
	http    *http.Server
}

// NewServer constructs a Server listening on addr.
func NewServer(addr string, manager *appmanager.ApplicationManager, logger *zap.Logger) *Server {
	s := &Server{manager: manager, logger: logger}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // the events stream is long-lived
	}
	return s
}

// Start runs the HTTP server; blocks until it exits or errors.
func (s *Server) Start() error {
	s.logger.Info("starting rpc server", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/v1/ping", s.handlePing).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/setup", s.handleSetup).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/events", s.handleEvents).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/show-window", s.handleShowWindow).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/show-settings-window", s.handleShowSettingsWindow).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/search", s.handleSearch).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/run-action", s.handleRunAction).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/send-view-event", s.handleSendViewEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/handle-keyboard-event", s.handleHandleKeyboardEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/request-render-view", s.handleRequestRenderView).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/request-view-close", s.handleRequestViewClose).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/plugins/state", s.handleSetPluginState).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/entrypoints/state", s.handleSetEntrypointState).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/preferences", s.handleSetPreferenceValue).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/shortcuts/global", s.handleSetGlobalShortcut).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/shortcuts/entrypoint", s.handleSetGlobalEntrypointShortcut).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/entrypoints/alias", s.handleSetEntrypointSearchAlias).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/theme", s.handleSetTheme).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/window-position-mode", s.handleSetWindowPositionMode).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/plugins/download", s.handleDownloadPlugin).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/plugins/download/{plugin_id}", s.handleDownloadStatus).Methods(http.MethodGet)

	return r
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleShowWindow and handleShowSettingsWindow ask the native host shell to
// raise a window; that shell is an external collaborator this repo doesn't
// implement, so these just acknowledge the request for the front-end's sake.
func (s *Server) handleShowWindow(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShowSettingsWindow(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	data, err := s.manager.Setup(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, data)
}

// handleEvents streams ApplicationManager.HostEvents() as SSE frames, one
// JSON-encoded HostMessage per event, until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.internalError(w, fmt.Errorf("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	events := s.manager.HostEvents()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Error("failed to marshal host event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text             string `json:"text"`
		RenderInlineView bool   `json:"render_inline_view"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	results, err := s.manager.Search(r.Context(), req.Text, req.RenderInlineView)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, results)
}

func (s *Server) handleRunAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string `json:"plugin_id"`
		EntrypointID string `json:"entrypoint_id"`
		ActionID     string `json:"action_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.manager.RunAction(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID, req.ActionID); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSendViewEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string                   `json:"plugin_id"`
		EntrypointID string                   `json:"entrypoint_id"`
		WidgetID     uint32                   `json:"widget_id"`
		Property     string                   `json:"property"`
		Args         []domain.PropertyValue   `json:"args"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	err := s.manager.SendViewEvent(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID, req.WidgetID, req.Property, req.Args)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHandleKeyboardEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string               `json:"plugin_id"`
		EntrypointID string               `json:"entrypoint_id"`
		WidgetID     uint32               `json:"widget_id"`
		Property     string               `json:"property"`
		Key          domain.PropertyValue `json:"key"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	err := s.manager.HandleKeyboardEvent(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID, req.WidgetID, req.Property, req.Key)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRequestRenderView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string `json:"plugin_id"`
		EntrypointID string `json:"entrypoint_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	shortcuts, err := s.manager.RequestRenderView(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, shortcuts)
}

func (s *Server) handleRequestViewClose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string `json:"plugin_id"`
		EntrypointID string `json:"entrypoint_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.manager.RequestViewClose(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetPluginState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID string `json:"plugin_id"`
		Enabled  bool   `json:"enabled"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.manager.SetPluginState(r.Context(), domain.PluginID(req.PluginID), req.Enabled); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetEntrypointState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string `json:"plugin_id"`
		EntrypointID string `json:"entrypoint_id"`
		Enabled      bool   `json:"enabled"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	err := s.manager.SetEntrypointState(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID, req.Enabled)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetGlobalShortcut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Shortcut *domain.PhysicalShortcut `json:"shortcut"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	regErr := s.manager.SetGlobalShortcut(r.Context(), req.Shortcut)
	resp := map[string]string{"status": "ok"}
	if regErr != nil {
		resp["registration_error"] = regErr.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleSetGlobalEntrypointShortcut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string                   `json:"plugin_id"`
		EntrypointID string                   `json:"entrypoint_id"`
		Shortcut     *domain.PhysicalShortcut `json:"shortcut"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	regErr := s.manager.SetGlobalEntrypointShortcut(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID, req.Shortcut)
	resp := map[string]string{"status": "ok"}
	if regErr != nil {
		resp["registration_error"] = regErr.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleSetEntrypointSearchAlias(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PluginID     string `json:"plugin_id"`
		EntrypointID string `json:"entrypoint_id"`
		Alias        string `json:"alias"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	err := s.manager.SetEntrypointSearchAlias(r.Context(), domain.PluginID(req.PluginID), req.EntrypointID, req.Alias)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.manager.SetTheme(r.Context(), req.Theme); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetWindowPositionMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.manager.SetWindowPositionMode(r.Context(), req.Mode); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDownloadPlugin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RepoURL string `json:"repo_url"`
		Token   string `json:"token,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	pluginID, err := s.manager.DownloadPlugin(r.Context(), req.RepoURL, appmanagerAuthToken(req.Token))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"plugin_id": string(pluginID)})
}

func (s *Server) handleDownloadStatus(w http.ResponseWriter, r *http.Request) {
	pluginID := domain.PluginID(mux.Vars(r)["plugin_id"])
	state, ok := s.manager.DownloadStatus(pluginID)
	if !ok {
		s.notFound(w, "no download recorded for this plugin id")
		return
	}
	resp := map[string]string{"phase": string(state.Phase)}
	if state.Err != nil {
		resp["error"] = state.Err.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
