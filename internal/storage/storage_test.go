package storage

import (
	"context"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/practice-engine/internal/models"
	"github.com/terra-clan/practice-engine/internal/practice"
)

func TestRepositoryServesAsArchive(t *testing.T) {
	var repo Repository = &PostgresRepository{}
	if _, ok := repo.(practice.Archive); !ok {
		t.Error("Repository should satisfy practice.Archive")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	fsys, err := Migrations("")
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}

	names, err := migrationNames(fsys)
	if err != nil {
		t.Fatalf("migrationNames: %v", err)
	}
	if len(names) == 0 || names[0] != "001_session_summaries.sql" {
		t.Errorf("names = %v", names)
	}
}

func TestMigrationNamesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":   {Data: []byte("SELECT 1")},
		"001_a.sql":   {Data: []byte("SELECT 1")},
		"README.md":   {Data: []byte("docs")},
		"sub/003.sql": {Data: []byte("SELECT 1")},
	}

	names, err := migrationNames(fsys)
	if err != nil {
		t.Fatalf("migrationNames: %v", err)
	}
	if len(names) != 2 || names[0] != "001_a.sql" || names[1] != "002_b.sql" {
		t.Errorf("names = %v", names)
	}
}

func TestPostgresSummaryRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	ctx := context.Background()
	repo, err := NewPostgresRepository(ctx, PostgresConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer repo.Close()

	fsys, _ := Migrations("")
	if err := RunMigrations(ctx, repo.Pool(), fsys); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := RunMigrations(ctx, repo.Pool(), fsys); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	user := "test-" + uuid.NewString()
	older := &models.SessionSummary{
		SessionID:        uuid.NewString(),
		RoomName:         "wingman-gym-aaaa1111",
		UserID:           user,
		Scenario:         models.ScenarioGym,
		Difficulty:       models.DifficultyBeginner,
		PerformanceLevel: models.PerformanceKeepPracticing,
		GeneratedAt:      time.Now().Add(-time.Hour).UTC().Truncate(time.Second),
	}
	newer := &models.SessionSummary{
		SessionID:         uuid.NewString(),
		RoomName:          "wingman-coffee-shop-bbbb2222",
		UserID:            user,
		Scenario:          models.ScenarioCoffeeShop,
		Difficulty:        models.DifficultyAdvanced,
		ConversationTurns: 4,
		FeedbackEntries:   2,
		AverageConfidence: 6.5,
		PerformanceLevel:  models.PerformanceGood,
		SkillsPracticed:   []string{"active listening"},
		TopicsDiscussed:   []string{"coffee"},
		GeneratedAt:       time.Now().UTC().Truncate(time.Second),
	}

	for _, s := range []*models.SessionSummary{older, newer} {
		if err := repo.SaveSummary(ctx, s); err != nil {
			t.Fatalf("SaveSummary: %v", err)
		}
	}

	got, err := repo.ListSummaries(ctx, user, 10)
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2", len(got))
	}
	if got[0].SessionID != newer.SessionID {
		t.Errorf("newest first expected, got %s", got[0].RoomName)
	}
	if got[0].AverageConfidence != 6.5 || len(got[0].SkillsPracticed) != 1 {
		t.Errorf("round trip lost data: %+v", got[0])
	}
	if len(got[1].TopicsDiscussed) != 0 {
		t.Errorf("topics = %v, want empty", got[1].TopicsDiscussed)
	}
}
