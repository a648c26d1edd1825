package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/practice-engine/internal/models"
	"github.com/terra-clan/practice-engine/internal/personas"
	"github.com/terra-clan/practice-engine/internal/practice"
	"github.com/terra-clan/practice-engine/internal/rooms"
	"github.com/terra-clan/practice-engine/internal/sessions"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps orchestration errors to status codes.
// Unknown errors are logged and reported as "failed to <action>".
func respondServiceError(w http.ResponseWriter, err error, action string, attrs ...any) {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		respondError(w, http.StatusNotFound, "room_not_found", "room not found")
	case errors.Is(err, sessions.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", "no active session for room")
	case errors.Is(err, personas.ErrUnknownScenario):
		respondError(w, http.StatusNotFound, "unknown_scenario", err.Error())
	case errors.Is(err, personas.ErrUnknownPersona):
		respondError(w, http.StatusNotFound, "unknown_persona", err.Error())
	case errors.Is(err, models.ErrInvalidParameter):
		respondError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
	case errors.Is(err, rooms.ErrRoomExists):
		respondError(w, http.StatusConflict, "room_exists", "room already exists")
	case errors.Is(err, rooms.ErrRoomNameExhausted):
		respondError(w, http.StatusServiceUnavailable, "room_name_exhausted", "could not allocate a room name, retry")
	case errors.Is(err, practice.ErrArchiveDisabled):
		respondError(w, http.StatusNotImplemented, "archive_disabled", "session history is not configured")
	default:
		slog.Error("failed to "+action, append([]any{"error", err}, attrs...)...)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// pathParam returns an unescaped URL parameter
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Ping(r.Context()); err != nil {
		slog.Warn("readiness check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// User handlers

func (s *Server) handleCleanupUser(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user id is required")
		return
	}

	cleaned := s.manager.CleanupUserSessions(r.Context(), userID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"cleaned": cleaned,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	summaries, err := s.manager.History(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err, "load session history", "user_id", userID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
		"total":     len(summaries),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.Stats())
}
