package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/terra-clan/practice-engine/internal/models"
	"github.com/terra-clan/practice-engine/internal/practice"
)

// Room handlers

// handleCreateRoom starts a room from a loose key/value payload.
// Bad scenario or difficulty values fall back and are reported as warnings.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	payload, err := practice.ParsePayload(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "body must be a JSON object")
		return
	}

	boot, err := s.manager.Bootstrap(r.Context(), payload)
	if err != nil {
		respondServiceError(w, err, "create room")
		return
	}

	createdBy := ""
	if client := ClientFromContext(r.Context()); client != nil {
		createdBy = client.Name
	}
	slog.Info("room bootstrapped via api", "room", boot.Room.RoomName, "client", createdBy, "warnings", len(boot.Warnings))

	respondJSON(w, http.StatusCreated, boot)
}

func (s *Server) handleRoomMetadata(w http.ResponseWriter, r *http.Request) {
	var req models.RoomMetadataRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Scenario == "" || req.Difficulty == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "scenario and difficulty are required")
		return
	}

	metadata, err := s.manager.RoomMetadata(req)
	if err != nil {
		respondServiceError(w, err, "create room metadata")
		return
	}
	respondJSON(w, http.StatusOK, metadata)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	list := s.manager.ListRooms(r.URL.Query().Get("user_id"))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rooms": list,
		"total": len(list),
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	view, err := s.manager.RoomView(name)
	if err != nil {
		respondServiceError(w, err, "get room", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleDeleteRoom is idempotent. The room is always removed; an archive
// failure is surfaced as a warning.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")

	resp := map[string]interface{}{
		"room_name": name,
		"status":    "cleaned",
	}
	if err := s.manager.CleanupRoom(r.Context(), name); err != nil {
		slog.Warn("room removed but summary not archived", "room", name, "error", err)
		resp["warning"] = "session summary could not be archived"
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWelcome(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	msg, err := s.manager.GetWelcomeMessage(name)
	if err != nil {
		respondServiceError(w, err, "get welcome message", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"welcome_message": msg})
}

func (s *Server) handleGetVoice(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	voice, err := s.manager.GetVoiceModel(name)
	if err != nil {
		respondServiceError(w, err, "get voice model", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"voice_model": voice})
}

func (s *Server) handleGetInstructions(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	instructions, err := s.manager.GetInstructions(name)
	if err != nil {
		respondServiceError(w, err, "get instructions", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"instructions": instructions})
}
