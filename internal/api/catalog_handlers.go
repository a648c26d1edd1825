package api

import (
	"net/http"

	"github.com/terra-clan/practice-engine/internal/models"
)

// Catalog handlers: scenarios, personas and interviewers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := s.manager.Scenarios()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"total":     len(scenarios),
	})
}

func (s *Server) handleVoiceMapping(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.VoiceMapping())
}

func (s *Server) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	scenario, err := models.ParseScenario(pathParam(r, "scenario"))
	if err != nil {
		respondServiceError(w, err, "get persona")
		return
	}

	info, err := s.manager.PersonaInfo(scenario, r.URL.Query().Get("persona_name"))
	if err != nil {
		respondServiceError(w, err, "get persona", "scenario", scenario)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleListInterviewers(w http.ResponseWriter, r *http.Request) {
	names := s.manager.InterviewPersonaNames()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"interviewers": names,
		"total":        len(names),
	})
}

func (s *Server) handleGetInterviewer(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	info, err := s.manager.InterviewerInfo(name)
	if err != nil {
		respondServiceError(w, err, "get interviewer", "name", name)
		return
	}
	respondJSON(w, http.StatusOK, info)
}
