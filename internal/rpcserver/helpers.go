package rpcserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/plugindownload"
)

func appmanagerAuthToken(raw string) plugindownload.AuthToken {
	return plugindownload.AuthToken(raw)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.errorResponse(w, http.StatusBadRequest, message)
}

func (s *Server) notFound(w http.ResponseWriter, message string) {
	s.errorResponse(w, http.StatusNotFound, message)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("internal server error", zap.Error(err))
	s.errorResponse(w, http.StatusInternalServerError, "internal server error")
}

// decode parses the request body's JSON into dst, writing a 400 response
// and returning false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.badRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// handleError maps a domain.Error's code to its HTTP status.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if e, ok := err.(*domain.Error); ok {
		de = e
	}
	if de == nil {
		s.internalError(w, err)
		return
	}
	switch de.Code {
	case domain.ErrorCodePermissionDenied, domain.ErrorCodeIllegalImport:
		s.errorResponse(w, http.StatusForbidden, de.Error())
	case domain.ErrorCodeInvalidAction, domain.ErrorCodeUnknownComponent, domain.ErrorCodeTypeMismatch,
		domain.ErrorCodeRequiredChildMissing, domain.ErrorCodeSingletonViolation, domain.ErrorCodeUnexpectedChild,
		domain.ErrorCodeDuplicateWidgetID, domain.ErrorCodeConfigError:
		s.badRequest(w, de.Error())
	default:
		s.internalError(w, de)
	}
}
