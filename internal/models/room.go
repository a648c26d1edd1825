package models

import (
	"time"
)

// Room defaults
const (
	DefaultMaxParticipants = 2
	DefaultTimeoutMinutes  = 30
)

// RoomConfig is the frozen binding of a room to its scenario, tier, persona and user
type RoomConfig struct {
	RoomName         string           `json:"room_name"`
	Scenario         ScenarioType     `json:"scenario"`
	Difficulty       DifficultyLevel  `json:"difficulty"`
	PersonaName      string           `json:"persona_name"`
	VoiceModel       string           `json:"voice_model"`
	UserID           string           `json:"user_id"`
	MaxParticipants  int              `json:"max_participants"`
	TimeoutMinutes   int              `json:"timeout_minutes"`
	InterviewContext InterviewContext `json:"interview_context,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Clone returns a deep copy
func (c *RoomConfig) Clone() *RoomConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.InterviewContext = c.InterviewContext.Clone()
	return &out
}

// ExpiresAt returns the instant the room outlives its timeout
func (c *RoomConfig) ExpiresAt() time.Time {
	timeout := c.TimeoutMinutes
	if timeout <= 0 {
		timeout = DefaultTimeoutMinutes
	}
	return c.CreatedAt.Add(time.Duration(timeout) * time.Minute)
}

// IsExpired checks the timeout against now
func (c *RoomConfig) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt())
}

// RoomView is the frontend representation of a room configuration
type RoomView struct {
	RoomName        string          `json:"room_name"`
	Scenario        ScenarioType    `json:"scenario"`
	Difficulty      DifficultyLevel `json:"difficulty"`
	PersonaName     string          `json:"persona_name"`
	VoiceModel      string          `json:"voice_model"`
	UserID          string          `json:"user_id"`
	MaxParticipants int             `json:"max_participants"`
	TimeoutMinutes  int             `json:"timeout_minutes"`
}

// View returns the frontend representation
func (c *RoomConfig) View() RoomView {
	return RoomView{
		RoomName:        c.RoomName,
		Scenario:        c.Scenario,
		Difficulty:      c.Difficulty,
		PersonaName:     c.PersonaName,
		VoiceModel:      c.VoiceModel,
		UserID:          c.UserID,
		MaxParticipants: c.MaxParticipants,
		TimeoutMinutes:  c.TimeoutMinutes,
	}
}

// CreateRoomRequest is the typed input to room creation
type CreateRoomRequest struct {
	Scenario         ScenarioType
	Difficulty       DifficultyLevel
	UserID           string
	RoomName         string
	InterviewContext InterviewContext
}

// RoomMetadataRequest is the strict request used to mint room/token metadata
type RoomMetadataRequest struct {
	Scenario   string `json:"scenario"`
	Difficulty string `json:"difficulty"`
	UserID     string `json:"user_id"`
}

// ScenarioOverview describes a scenario for listing endpoints
type ScenarioOverview struct {
	Scenario    ScenarioType `json:"scenario"`
	Persona     PersonaInfo  `json:"persona"`
	VoiceModel  string       `json:"voice_model"`
	Description string       `json:"description"`
}
