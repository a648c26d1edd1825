package sessions

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/terra-clan/practice-engine/internal/models"
)

type fakeChannels struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeChannels) Unregister(room string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, room)
	return true
}

func testRoom(name string) *models.RoomConfig {
	return &models.RoomConfig{
		RoomName:   name,
		Scenario:   models.ScenarioGym,
		Difficulty: models.DifficultyIntermediate,
		UserID:     "u1",
	}
}

func TestFreshSessionSummary(t *testing.T) {
	r := NewRegistry(nil)
	r.Create(testRoom("room-1"))

	summary, err := r.Summarize("room-1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.AverageConfidence != 0 {
		t.Errorf("average = %v, want 0", summary.AverageConfidence)
	}
	if summary.PerformanceLevel != models.PerformanceKeepPracticing {
		t.Errorf("level = %q, want Keep Practicing", summary.PerformanceLevel)
	}
	if summary.ConversationTurns != 0 || summary.FeedbackEntries != 0 {
		t.Errorf("unexpected counts: %+v", summary)
	}
}

func TestSummaryAfterFeedback(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start
	r := NewRegistry(nil)
	r.SetClock(func() time.Time { return now })
	r.Create(testRoom("room-1"))

	for _, c := range []int{9, 9, 9, 3, 3, 3} {
		_, err := r.Update("room-1", func(s *models.PracticeSession) {
			s.AddFeedback(models.FeedbackEntry{QualityScore: 6, ConfidenceLevel: c, SkillFocus: "active listening"})
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	now = start.Add(4*time.Minute + 30*time.Second)
	summary, err := r.Summarize("room-1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.AverageConfidence != 6.0 {
		t.Errorf("average = %v, want 6.0", summary.AverageConfidence)
	}
	if summary.PerformanceLevel != models.PerformanceGood {
		t.Errorf("level = %q, want Good", summary.PerformanceLevel)
	}
	if summary.ConversationTurns != 6 || summary.FeedbackEntries != 6 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.SessionDurationMinutes != 4.5 {
		t.Errorf("duration = %v, want 4.5", summary.SessionDurationMinutes)
	}
	if len(summary.SkillsPracticed) != 1 {
		t.Errorf("skills should be deduplicated: %v", summary.SkillsPracticed)
	}
}

func TestSummarizeMissing(t *testing.T) {
	r := NewRegistry(nil)

	if _, err := r.Summarize("ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCreateMintsNewSessionID(t *testing.T) {
	r := NewRegistry(nil)

	first := r.Create(testRoom("room-1"))
	r.Update("room-1", func(s *models.PracticeSession) { s.ConversationTurns = 4 })
	second := r.Create(testRoom("room-1"))

	if first.SessionID == second.SessionID {
		t.Fatal("recreated session reused the session_id")
	}
	got, _ := r.Get("room-1")
	if got.ConversationTurns != 0 {
		t.Errorf("recreated session kept old state: %d turns", got.ConversationTurns)
	}
	if r.ActiveCount() != 1 {
		t.Errorf("expected 1 active session, got %d", r.ActiveCount())
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry(nil)
	r.Create(testRoom("room-1"))

	s, _ := r.Get("room-1")
	s.AddTopic("weather")
	s.ConversationTurns = 99

	again, _ := r.Get("room-1")
	if again.ConversationTurns != 0 || len(again.TopicsDiscussed) != 0 {
		t.Errorf("mutating a copy leaked into the registry: %+v", again)
	}
}

func TestReplace(t *testing.T) {
	r := NewRegistry(nil)
	r.Create(testRoom("room-1"))

	s, _ := r.Get("room-1")
	s.AddTopic("travel")
	if err := r.Replace("room-1", s); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	got, _ := r.Get("room-1")
	if len(got.TopicsDiscussed) != 1 || got.TopicsDiscussed[0] != "travel" {
		t.Errorf("replace not applied: %v", got.TopicsDiscussed)
	}

	if err := r.Replace("ghost", s); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCleanupSessionIdempotent(t *testing.T) {
	ch := &fakeChannels{}
	r := NewRegistry(ch)
	r.Create(testRoom("room-1"))

	if !r.CleanupSession("room-1") {
		t.Error("first cleanup should report an existing session")
	}
	if r.CleanupSession("room-1") {
		t.Error("second cleanup should be a no-op")
	}
	if r.ActiveCount() != 0 {
		t.Errorf("expected no sessions, got %d", r.ActiveCount())
	}
	if len(ch.removed) != 2 || ch.removed[0] != "room-1" {
		t.Errorf("channel unregister not called: %v", ch.removed)
	}
}

func TestCleanupSessionUnknownRoomKeepsOthers(t *testing.T) {
	r := NewRegistry(&fakeChannels{})
	r.Create(testRoom("room-1"))

	if r.CleanupSession("never-created") {
		t.Error("cleanup of an unknown room should report no session")
	}
	if r.ActiveCount() != 1 {
		t.Errorf("expected 1 session, got %d", r.ActiveCount())
	}
	if _, err := r.Get("room-1"); err != nil {
		t.Errorf("live session lost: %v", err)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	r := NewRegistry(nil)
	r.Create(testRoom("room-1"))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Update("room-1", func(s *models.PracticeSession) { s.ConversationTurns++ })
		}()
	}
	wg.Wait()

	got, _ := r.Get("room-1")
	if got.ConversationTurns != 100 {
		t.Errorf("lost updates: %d turns", got.ConversationTurns)
	}
}

func TestActiveRoomNames(t *testing.T) {
	r := NewRegistry(nil)
	r.Create(testRoom("b-room"))
	r.Create(testRoom("a-room"))

	names := r.ActiveRoomNames()
	if len(names) != 2 || names[0] != "a-room" || names[1] != "b-room" {
		t.Errorf("unexpected names: %v", names)
	}
}
