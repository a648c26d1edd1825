package api

import (
	"net/http"

	"github.com/terra-clan/practice-engine/internal/practice"
)

// Session handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	session, err := s.manager.CreateSession(r.Context(), name)
	if err != nil {
		respondServiceError(w, err, "create session", "room", name)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	session, err := s.manager.GetSession(name)
	if err != nil {
		respondServiceError(w, err, "get session", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	summary, err := s.manager.GetSessionSummary(name)
	if err != nil {
		respondServiceError(w, err, "get session summary", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleSessionStatus never 404s: a missing session is reported as not_found
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.SessionStatus(pathParam(r, "name")))
}

// Session event handlers, called by the coaching agent

func (s *Server) handleRecordFeedback(w http.ResponseWriter, r *http.Request) {
	var in practice.FeedbackInput
	if !decodeJSON(w, r, &in) {
		return
	}

	name := pathParam(r, "name")
	result, err := s.manager.RecordFeedback(r.Context(), name, in)
	if err != nil {
		respondServiceError(w, err, "record feedback", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecordTurn(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	turns, err := s.manager.RecordTurn(name)
	if err != nil {
		respondServiceError(w, err, "record turn", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"conversation_turns": turns})
}

func (s *Server) handleSuggestStarters(w http.ResponseWriter, r *http.Request) {
	var in practice.StartersInput
	if !decodeJSON(w, r, &in) {
		return
	}

	name := pathParam(r, "name")
	result, err := s.manager.SuggestStarters(r.Context(), name, in)
	if err != nil {
		respondServiceError(w, err, "suggest starters", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleShareTip(w http.ResponseWriter, r *http.Request) {
	var in practice.TipInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Tip == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "tip is required")
		return
	}

	name := pathParam(r, "name")
	result, err := s.manager.ShareTip(r.Context(), name, in)
	if err != nil {
		respondServiceError(w, err, "share tip", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	var in practice.QuestionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Question == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "question is required")
		return
	}

	name := pathParam(r, "name")
	result, err := s.manager.AskInterviewQuestion(r.Context(), name, in)
	if err != nil {
		respondServiceError(w, err, "ask interview question", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	var in practice.InterviewFeedbackInput
	if !decodeJSON(w, r, &in) {
		return
	}

	name := pathParam(r, "name")
	result, err := s.manager.InterviewFeedback(r.Context(), name, in)
	if err != nil {
		respondServiceError(w, err, "record interview feedback", "room", name)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
