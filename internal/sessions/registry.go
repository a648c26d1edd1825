package sessions

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/practice-engine/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// ChannelRemover drops a room's outbound channel
type ChannelRemover interface {
	Unregister(room string) bool
}

// Registry holds the live PracticeSession of every room behind one mutex.
// Nothing blocking runs under the lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*models.PracticeSession
	channels ChannelRemover
	now      func() time.Time
}

// NewRegistry creates an empty session registry. channels may be nil.
func NewRegistry(channels ChannelRemover) *Registry {
	return &Registry{
		sessions: make(map[string]*models.PracticeSession),
		channels: channels,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for session start and summaries
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Create starts a fresh session for the room, replacing any previous one.
// Every call mints a new session_id.
func (r *Registry) Create(room *models.RoomConfig) *models.PracticeSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[room.RoomName]; exists {
		slog.Info("replacing existing session", "room", room.RoomName)
	}

	s := &models.PracticeSession{
		SessionID:             uuid.New().String(),
		RoomName:              room.RoomName,
		UserID:                room.UserID,
		Scenario:              room.Scenario,
		Difficulty:            room.Difficulty,
		SessionStart:          r.now(),
		FeedbackGiven:         []models.FeedbackEntry{},
		ConfidenceScores:      []float64{},
		TopicsDiscussed:       []string{},
		SocialSkillsPracticed: []string{},
	}
	r.sessions[room.RoomName] = s
	return s.Clone()
}

// Get returns a copy of the room's session
func (r *Registry) Get(room string) (*models.PracticeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[room]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, room)
	}
	return s.Clone(), nil
}

// Replace swaps the stored session wholesale. The room must already have one.
func (r *Registry) Replace(room string, s *models.PracticeSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[room]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, room)
	}
	stored := s.Clone()
	stored.RoomName = room
	r.sessions[room] = stored
	return nil
}

// Update applies fn to the stored session atomically with respect to other
// registry calls. fn must not block. The updated copy is returned.
func (r *Registry) Update(room string, fn func(s *models.PracticeSession)) (*models.PracticeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[room]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, room)
	}
	fn(s)
	return s.Clone(), nil
}

// Summarize reports the session's progress as of now
func (r *Registry) Summarize(room string) (models.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[room]
	if !ok {
		return models.SessionSummary{}, fmt.Errorf("%w: %s", ErrSessionNotFound, room)
	}
	return s.Summarize(r.now()), nil
}

// CleanupSession drops the room's session and its channel registration.
// Cleaning an absent room is a no-op; the return reports whether a session existed.
func (r *Registry) CleanupSession(room string) bool {
	r.mu.Lock()
	_, existed := r.sessions[room]
	delete(r.sessions, room)
	r.mu.Unlock()

	if r.channels != nil {
		r.channels.Unregister(room)
	}
	if existed {
		slog.Info("session cleaned up", "room", room)
	}
	return existed
}

// ActiveCount returns the number of live sessions
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ActiveRoomNames returns the sorted names of rooms with a live session
func (r *Registry) ActiveRoomNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
