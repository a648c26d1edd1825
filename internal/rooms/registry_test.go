package rooms

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/terra-clan/practice-engine/internal/models"
)

var generatedName = regexp.MustCompile(`^wingman-coffee-shop-[0-9a-f]{8}$`)

func coffeeRoom(userID string) NewRoom {
	return NewRoom{
		Scenario:    models.ScenarioCoffeeShop,
		Difficulty:  models.DifficultyBeginner,
		PersonaName: "Emma",
		VoiceModel:  "21m00Tcm4TlvDq8ikWAM",
		UserID:      userID,
	}
}

func TestCreateGeneratesName(t *testing.T) {
	r := NewRegistry()

	cfg, err := r.Create(coffeeRoom("u1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !generatedName.MatchString(cfg.RoomName) {
		t.Errorf("unexpected room name %q", cfg.RoomName)
	}
	if cfg.MaxParticipants != 2 || cfg.TimeoutMinutes != 30 {
		t.Errorf("unexpected defaults: %d / %d", cfg.MaxParticipants, cfg.TimeoutMinutes)
	}
}

func TestCreateManyDistinctNames(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		cfg, err := r.Create(coffeeRoom("u1"))
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		if seen[cfg.RoomName] {
			t.Fatalf("duplicate room name %q", cfg.RoomName)
		}
		seen[cfg.RoomName] = true
	}
	if r.Count() != 10000 {
		t.Errorf("expected 10000 rooms, got %d", r.Count())
	}
}

func TestCreateRetriesCollidingSuffix(t *testing.T) {
	suffixes := []string{"aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
	i := 0
	r := NewRegistry(withSuffix(func() string {
		s := suffixes[i%len(suffixes)]
		i++
		return s
	}))

	first, err := r.Create(coffeeRoom("u1"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Create(coffeeRoom("u1"))
	if err != nil {
		t.Fatal(err)
	}
	if first.RoomName == second.RoomName {
		t.Fatalf("collision not retried: %s", first.RoomName)
	}
	if second.RoomName != "wingman-coffee-shop-bbbbbbbb" {
		t.Errorf("unexpected second name %q", second.RoomName)
	}
}

func TestCreateExhausted(t *testing.T) {
	r := NewRegistry(withSuffix(func() string { return "deadbeef" }))

	if _, err := r.Create(coffeeRoom("u1")); err != nil {
		t.Fatal(err)
	}
	_, err := r.Create(coffeeRoom("u1"))
	if !errors.Is(err, ErrRoomNameExhausted) {
		t.Fatalf("expected ErrRoomNameExhausted, got %v", err)
	}
}

func TestCreateExplicitNameConflict(t *testing.T) {
	r := NewRegistry()

	nr := coffeeRoom("u1")
	nr.RoomName = "my-room"
	if _, err := r.Create(nr); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create(nr); !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestCreateRejectsInvalidEnums(t *testing.T) {
	r := NewRegistry()

	nr := coffeeRoom("u1")
	nr.Difficulty = "Expert"
	if _, err := r.Create(nr); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestListForUserIsolationAndCopy(t *testing.T) {
	r := NewRegistry()

	a, _ := r.Create(coffeeRoom("u1"))
	_, _ = r.Create(coffeeRoom("u1"))
	_, _ = r.Create(coffeeRoom("u2"))

	list := r.ListForUser("u1")
	if len(list) != 2 {
		t.Fatalf("expected 2 rooms for u1, got %d", len(list))
	}
	for _, cfg := range list {
		if cfg.UserID != "u1" {
			t.Errorf("foreign room in listing: %+v", cfg)
		}
	}

	list[a.RoomName].PersonaName = "mutated"
	delete(list, a.RoomName)

	got, err := r.Get(a.RoomName)
	if err != nil {
		t.Fatalf("room disappeared after mutating snapshot: %v", err)
	}
	if got.PersonaName != "Emma" {
		t.Errorf("snapshot mutation leaked: %q", got.PersonaName)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	r := NewRegistry()

	cfg, _ := r.Create(coffeeRoom("u1"))
	if !r.Remove(cfg.RoomName) {
		t.Error("first remove should report existing room")
	}
	if r.Remove(cfg.RoomName) {
		t.Error("second remove should be a no-op")
	}
	if _, err := r.Get(cfg.RoomName); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(WithClock(func() time.Time { return now }), WithLimits(0, 10))

	cfg, _ := r.Create(coffeeRoom("u1"))

	if got := r.Expired(now.Add(5 * time.Minute)); len(got) != 0 {
		t.Errorf("nothing should be expired yet, got %v", got)
	}
	got := r.Expired(now.Add(11 * time.Minute))
	if len(got) != 1 || got[0] != cfg.RoomName {
		t.Errorf("expected %s expired, got %v", cfg.RoomName, got)
	}
}

func TestConcurrentCreate(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := r.Create(coffeeRoom(fmt.Sprintf("u%d", i))); err != nil {
					t.Errorf("Create failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if r.Count() != 1000 {
		t.Errorf("expected 1000 rooms, got %d", r.Count())
	}
}
