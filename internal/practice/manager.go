package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/terra-clan/practice-engine/internal/channels"
	"github.com/terra-clan/practice-engine/internal/models"
	"github.com/terra-clan/practice-engine/internal/personas"
	"github.com/terra-clan/practice-engine/internal/rooms"
	"github.com/terra-clan/practice-engine/internal/sessions"
)

// AgentType is reported in room metadata
const AgentType = "wingman-social-coach"

var ErrArchiveDisabled = errors.New("session archive not configured")

// Manager defines the orchestration surface used by the API and the agent
type Manager interface {
	// Rooms
	CreateRoomConfig(ctx context.Context, req models.CreateRoomRequest) (*models.RoomConfig, error)
	RoomMetadata(req models.RoomMetadataRequest) (map[string]string, error)
	Bootstrap(ctx context.Context, payload Payload) (*Bootstrap, error)
	GetRoom(room string) (*models.RoomConfig, error)
	ListRooms(userID string) []*models.RoomConfig
	RoomView(room string) (models.RoomView, error)
	GetVoiceModel(room string) (string, error)
	GetWelcomeMessage(room string) (string, error)
	GetInstructions(room string) (string, error)

	// Sessions
	CreateSession(ctx context.Context, room string) (*models.PracticeSession, error)
	GetSession(room string) (*models.PracticeSession, error)
	GetSessionSummary(room string) (models.SessionSummary, error)
	SessionStatus(room string) SessionStatus

	// Session events
	RecordFeedback(ctx context.Context, room string, in FeedbackInput) (*FeedbackResult, error)
	RecordTurn(room string) (int, error)
	SuggestStarters(ctx context.Context, room string, in StartersInput) (*EventResult, error)
	ShareTip(ctx context.Context, room string, in TipInput) (*EventResult, error)
	AskInterviewQuestion(ctx context.Context, room string, in QuestionInput) (*EventResult, error)
	InterviewFeedback(ctx context.Context, room string, in InterviewFeedbackInput) (*FeedbackResult, error)

	// Channels
	AttachChannel(room string, ch channels.Channel) error
	DetachChannel(room string, ch channels.Channel)

	// Lifecycle
	CleanupRoom(ctx context.Context, room string) error
	CleanupUserSessions(ctx context.Context, userID string) int
	CleanupExpired(ctx context.Context) int
	History(ctx context.Context, userID string, limit int) ([]*models.SessionSummary, error)

	// Catalog
	Scenarios() []models.ScenarioOverview
	VoiceMapping() map[models.ScenarioType]string
	PersonaInfo(scenario models.ScenarioType, personaName string) (models.PersonaInfo, error)
	InterviewerInfo(name string) (models.PersonaInfo, error)
	InterviewPersonaNames() []string

	Stats() Stats
	Ping(ctx context.Context) error
}

// Archive stores summaries of finished sessions
type Archive interface {
	SaveSummary(ctx context.Context, s *models.SessionSummary) error
	ListSummaries(ctx context.Context, userID string, limit int) ([]*models.SessionSummary, error)
	Ping(ctx context.Context) error
}

// ChannelFactory builds a default channel for a room
type ChannelFactory interface {
	ForRoom(room string) channels.Channel
}

// Bootstrap is the result of starting a room from an inbound payload
type Bootstrap struct {
	Room     *models.RoomConfig      `json:"room"`
	Session  *models.PracticeSession `json:"session"`
	Welcome  string                  `json:"welcome_message"`
	Warnings []string                `json:"warnings,omitempty"`
}

// SessionStatus is the frontend view of a room's session
type SessionStatus struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Summary *models.SessionSummary `json:"summary,omitempty"`
}

// Stats describes live orchestrator state
type Stats struct {
	ActiveSessions int      `json:"active_sessions"`
	ActiveRooms    []string `json:"active_rooms"`
	RoomConfigs    int      `json:"room_configs"`
	Channels       int      `json:"channels"`
	ChannelRooms   []string `json:"channel_rooms"`
}

// Orchestrator implements Manager over the in-memory registries
type Orchestrator struct {
	catalog   *personas.Catalog
	rooms     *rooms.Registry
	sessions  *sessions.Registry
	directory *channels.Directory
	factory   ChannelFactory
	archive   Archive
	now       func() time.Time
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithChannelFactory registers a default channel for every new session
func WithChannelFactory(f ChannelFactory) Option {
	return func(o *Orchestrator) { o.factory = f }
}

// WithArchive stores summaries on room cleanup
func WithArchive(a Archive) Option {
	return func(o *Orchestrator) { o.archive = a }
}

// WithClock sets the clock for event timestamps and expiry checks
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires the registries together
func NewOrchestrator(
	catalog *personas.Catalog,
	roomRegistry *rooms.Registry,
	sessionRegistry *sessions.Registry,
	directory *channels.Directory,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		catalog:   catalog,
		rooms:     roomRegistry,
		sessions:  sessionRegistry,
		directory: directory,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateRoomConfig resolves the persona and registers the room
func (o *Orchestrator) CreateRoomConfig(ctx context.Context, req models.CreateRoomRequest) (*models.RoomConfig, error) {
	var ictx models.InterviewContext
	if req.Scenario.IsInterview() {
		ictx = req.InterviewContext
	}

	persona, err := o.catalog.Resolve(req.Scenario, ictx)
	if err != nil {
		return nil, err
	}

	cfg, err := o.rooms.Create(rooms.NewRoom{
		RoomName:         req.RoomName,
		Scenario:         req.Scenario,
		Difficulty:       req.Difficulty,
		PersonaName:      persona.Name(),
		VoiceModel:       persona.VoiceModel(),
		UserID:           req.UserID,
		InterviewContext: ictx,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room config: %w", err)
	}

	slog.Info("room config created",
		"room", cfg.RoomName,
		"scenario", cfg.Scenario,
		"difficulty", cfg.Difficulty,
		"persona", cfg.PersonaName,
		"user_id", cfg.UserID,
	)
	return cfg, nil
}

// RoomMetadata validates the request strictly and returns the metadata used to
// mint a room. Invalid scenario or difficulty strings are an error here.
func (o *Orchestrator) RoomMetadata(req models.RoomMetadataRequest) (map[string]string, error) {
	scenario, err := models.ParseScenario(req.Scenario)
	if err != nil {
		return nil, err
	}
	difficulty, err := models.ParseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}

	persona, err := o.catalog.Resolve(scenario, nil)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"scenario":     string(scenario),
		"difficulty":   string(difficulty),
		"user_id":      req.UserID,
		"persona_name": persona.Name(),
		"voice_model":  persona.VoiceModel(),
		"agent_type":   AgentType,
	}, nil
}

// Bootstrap creates the room config and its session from a lenient payload
func (o *Orchestrator) Bootstrap(ctx context.Context, payload Payload) (*Bootstrap, error) {
	req, warnings := o.parsePayload(payload)

	cfg, err := o.CreateRoomConfig(ctx, req)
	if err != nil {
		return nil, err
	}

	session, err := o.CreateSession(ctx, cfg.RoomName)
	if err != nil {
		o.rooms.Remove(cfg.RoomName)
		return nil, err
	}

	welcome, err := o.GetWelcomeMessage(cfg.RoomName)
	if err != nil {
		if cleanupErr := o.CleanupRoom(ctx, cfg.RoomName); cleanupErr != nil {
			slog.Warn("failed to roll back room", "room", cfg.RoomName, "error", cleanupErr)
		}
		return nil, err
	}

	return &Bootstrap{
		Room:     cfg,
		Session:  session,
		Welcome:  welcome,
		Warnings: warnings,
	}, nil
}

// GetRoom returns a copy of the room config
func (o *Orchestrator) GetRoom(room string) (*models.RoomConfig, error) {
	return o.rooms.Get(room)
}

// ListRooms returns the user's rooms, or every room when userID is empty,
// sorted by name
func (o *Orchestrator) ListRooms(userID string) []*models.RoomConfig {
	var snapshot map[string]*models.RoomConfig
	if userID == "" {
		snapshot = o.rooms.ListAll()
	} else {
		snapshot = o.rooms.ListForUser(userID)
	}

	out := make([]*models.RoomConfig, 0, len(snapshot))
	for _, cfg := range snapshot {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomName < out[j].RoomName })
	return out
}

// RoomView returns the frontend representation of a room
func (o *Orchestrator) RoomView(room string) (models.RoomView, error) {
	cfg, err := o.rooms.Get(room)
	if err != nil {
		return models.RoomView{}, err
	}
	return cfg.View(), nil
}

// GetVoiceModel returns the room's voice model
func (o *Orchestrator) GetVoiceModel(room string) (string, error) {
	cfg, err := o.rooms.Get(room)
	if err != nil {
		return "", err
	}
	return cfg.VoiceModel, nil
}

// GetWelcomeMessage returns the persona greeting for the room's difficulty
func (o *Orchestrator) GetWelcomeMessage(room string) (string, error) {
	cfg, persona, err := o.personaFor(room)
	if err != nil {
		return "", err
	}
	return persona.Welcome(cfg.Difficulty), nil
}

// GetInstructions returns the agent prompt for the room
func (o *Orchestrator) GetInstructions(room string) (string, error) {
	cfg, persona, err := o.personaFor(room)
	if err != nil {
		return "", err
	}
	return persona.Instructions(cfg.Difficulty, cfg.InterviewContext), nil
}

// personaFor re-resolves the room's persona from its frozen scenario and context
func (o *Orchestrator) personaFor(room string) (*models.RoomConfig, *personas.Persona, error) {
	cfg, err := o.rooms.Get(room)
	if err != nil {
		return nil, nil, err
	}
	persona, err := o.catalog.Resolve(cfg.Scenario, cfg.InterviewContext)
	if err != nil {
		return nil, nil, err
	}
	return cfg, persona, nil
}

// CreateSession starts a fresh session for an existing room and registers the
// default channel when one is configured
func (o *Orchestrator) CreateSession(ctx context.Context, room string) (*models.PracticeSession, error) {
	cfg, err := o.rooms.Get(room)
	if err != nil {
		return nil, err
	}

	session := o.sessions.Create(cfg)
	if o.factory != nil {
		if _, ok := o.directory.Lookup(room); !ok {
			o.directory.Register(room, o.factory.ForRoom(room))
		}
	}

	slog.Info("session created", "room", room, "session_id", session.SessionID, "user_id", session.UserID)
	return session, nil
}

// GetSession returns a copy of the room's session
func (o *Orchestrator) GetSession(room string) (*models.PracticeSession, error) {
	return o.sessions.Get(room)
}

// GetSessionSummary reports the room's session progress
func (o *Orchestrator) GetSessionSummary(room string) (models.SessionSummary, error) {
	return o.sessions.Summarize(room)
}

// SessionStatus reports not_found instead of an error for absent sessions
func (o *Orchestrator) SessionStatus(room string) SessionStatus {
	summary, err := o.sessions.Summarize(room)
	if err != nil {
		return SessionStatus{Status: "not_found", Message: "No active session"}
	}
	return SessionStatus{Status: "active", Summary: &summary}
}

// AttachChannel registers ch as the room's channel. The room must exist.
func (o *Orchestrator) AttachChannel(room string, ch channels.Channel) error {
	if _, err := o.rooms.Get(room); err != nil {
		return err
	}
	o.directory.Register(room, ch)
	slog.Info("room channel attached", "room", room)
	return nil
}

// DetachChannel drops ch if it is still the room's channel, restoring the
// default channel while the session is live
func (o *Orchestrator) DetachChannel(room string, ch channels.Channel) {
	if !o.directory.UnregisterIf(room, ch) {
		return
	}
	slog.Info("room channel detached", "room", room)

	if o.factory == nil {
		return
	}
	if _, err := o.sessions.Get(room); err == nil {
		o.directory.Register(room, o.factory.ForRoom(room))
	}
}

// Scenarios lists each available scenario with its persona and description
func (o *Orchestrator) Scenarios() []models.ScenarioOverview {
	list := o.catalog.Scenarios()
	out := make([]models.ScenarioOverview, 0, len(list))
	for _, scenario := range list {
		info, err := o.catalog.Info(scenario, "")
		if err != nil {
			continue
		}
		out = append(out, models.ScenarioOverview{
			Scenario:    scenario,
			Persona:     info,
			VoiceModel:  info.VoiceModel,
			Description: fmt.Sprintf("Practice social skills with %s in a %s setting", info.Name, strings.ToLower(string(scenario))),
		})
	}
	return out
}

// VoiceMapping maps scenarios to their default voice
func (o *Orchestrator) VoiceMapping() map[models.ScenarioType]string {
	return o.catalog.VoiceMapping()
}

// PersonaInfo describes a scenario's persona
func (o *Orchestrator) PersonaInfo(scenario models.ScenarioType, personaName string) (models.PersonaInfo, error) {
	return o.catalog.Info(scenario, personaName)
}

// InterviewerInfo describes a named interviewer
func (o *Orchestrator) InterviewerInfo(name string) (models.PersonaInfo, error) {
	return o.catalog.InterviewerInfo(name)
}

// InterviewPersonaNames lists the selectable interviewers
func (o *Orchestrator) InterviewPersonaNames() []string {
	return o.catalog.InterviewPersonaNames()
}

// Stats reports live state sizes
func (o *Orchestrator) Stats() Stats {
	return Stats{
		ActiveSessions: o.sessions.ActiveCount(),
		ActiveRooms:    o.sessions.ActiveRoomNames(),
		RoomConfigs:    o.rooms.Count(),
		Channels:       o.directory.Count(),
		ChannelRooms:   o.directory.Rooms(),
	}
}

// Ping checks the optional archive
func (o *Orchestrator) Ping(ctx context.Context) error {
	if o.archive == nil {
		return nil
	}
	if err := o.archive.Ping(ctx); err != nil {
		return fmt.Errorf("archive ping failed: %w", err)
	}
	return nil
}
