package rooms

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/practice-engine/internal/models"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomExists        = errors.New("room already exists")
	ErrRoomNameExhausted = errors.New("could not generate a unique room name")
)

// DefaultPrefix is prepended to generated room names
const DefaultPrefix = "wingman"

const maxNameAttempts = 8

// NewRoom carries the resolved fields of a room to register
type NewRoom struct {
	RoomName         string
	Scenario         models.ScenarioType
	Difficulty       models.DifficultyLevel
	PersonaName      string
	VoiceModel       string
	UserID           string
	InterviewContext models.InterviewContext
}

// Registry owns every live RoomConfig. All reads hand out copies.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*models.RoomConfig

	prefix          string
	maxParticipants int
	timeoutMinutes  int
	now             func() time.Time
	newSuffix       func() string
}

// Option configures a Registry
type Option func(*Registry)

// WithPrefix sets the generated room name prefix
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithLimits overrides the default participant and timeout limits
func WithLimits(maxParticipants, timeoutMinutes int) Option {
	return func(r *Registry) {
		if maxParticipants > 0 {
			r.maxParticipants = maxParticipants
		}
		if timeoutMinutes > 0 {
			r.timeoutMinutes = timeoutMinutes
		}
	}
}

// WithClock sets the clock used for created_at
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// withSuffix replaces the random suffix source; tests use it to force collisions
func withSuffix(fn func() string) Option {
	return func(r *Registry) { r.newSuffix = fn }
}

// NewRegistry creates an empty room registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:           make(map[string]*models.RoomConfig),
		prefix:          DefaultPrefix,
		maxParticipants: models.DefaultMaxParticipants,
		timeoutMinutes:  models.DefaultTimeoutMinutes,
		now:             time.Now,
		newSuffix: func() string {
			return uuid.New().String()[:8]
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a room. An empty RoomName is generated as
// <prefix>-<scenario-slug>-<8 hex> and checked against live rooms; an explicit
// name that is already live fails with ErrRoomExists.
func (r *Registry) Create(room NewRoom) (*models.RoomConfig, error) {
	if !room.Scenario.IsValid() {
		return nil, fmt.Errorf("%w: scenario %q", models.ErrInvalidParameter, room.Scenario)
	}
	if !room.Difficulty.IsValid() {
		return nil, fmt.Errorf("%w: difficulty %q", models.ErrInvalidParameter, room.Difficulty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := room.RoomName
	if name == "" {
		var err error
		if name, err = r.generateName(room.Scenario); err != nil {
			return nil, err
		}
	} else if _, exists := r.rooms[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, name)
	}

	cfg := &models.RoomConfig{
		RoomName:         name,
		Scenario:         room.Scenario,
		Difficulty:       room.Difficulty,
		PersonaName:      room.PersonaName,
		VoiceModel:       room.VoiceModel,
		UserID:           room.UserID,
		MaxParticipants:  r.maxParticipants,
		TimeoutMinutes:   r.timeoutMinutes,
		InterviewContext: room.InterviewContext.Clone(),
		CreatedAt:        r.now(),
	}
	r.rooms[name] = cfg
	return cfg.Clone(), nil
}

// generateName expects the write lock held
func (r *Registry) generateName(scenario models.ScenarioType) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := fmt.Sprintf("%s-%s-%s", r.prefix, scenario.Slug(), r.newSuffix())
		if _, exists := r.rooms[name]; !exists {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrRoomNameExhausted, scenario)
}

// Get returns a copy of the room config
func (r *Registry) Get(name string) (*models.RoomConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.rooms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, name)
	}
	return cfg.Clone(), nil
}

// Remove deletes a room config and reports whether it existed. Removing an
// absent room is a no-op.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[name]; !ok {
		return false
	}
	delete(r.rooms, name)
	return true
}

// ListForUser returns a snapshot of the rooms owned by userID
func (r *Registry) ListForUser(userID string) map[string]*models.RoomConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.RoomConfig)
	for name, cfg := range r.rooms {
		if cfg.UserID == userID {
			out[name] = cfg.Clone()
		}
	}
	return out
}

// ListAll returns a snapshot of every live room
func (r *Registry) ListAll() map[string]*models.RoomConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.RoomConfig, len(r.rooms))
	for name, cfg := range r.rooms {
		out[name] = cfg.Clone()
	}
	return out
}

// Expired returns the sorted names of rooms past their timeout at now
func (r *Registry) Expired(now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, cfg := range r.rooms {
		if cfg.IsExpired(now) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
