package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/practice-engine/internal/models"
)

// DefaultHistoryLimit caps ListSummaries when no limit is given
const DefaultHistoryLimit = 50

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 1
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// SaveSummary stores a session summary. Saving the same session twice
// overwrites the earlier row.
func (r *PostgresRepository) SaveSummary(ctx context.Context, s *models.SessionSummary) error {
	skillsJSON, err := json.Marshal(nonNil(s.SkillsPracticed))
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	topicsJSON, err := json.Marshal(nonNil(s.TopicsDiscussed))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
		INSERT INTO session_summaries (
			session_id, room_name, user_id, scenario, difficulty, duration_minutes,
			conversation_turns, feedback_entries, average_confidence, performance_level,
			skills_practiced, topics_discussed, generated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (session_id) DO UPDATE SET
			duration_minutes = EXCLUDED.duration_minutes,
			conversation_turns = EXCLUDED.conversation_turns,
			feedback_entries = EXCLUDED.feedback_entries,
			average_confidence = EXCLUDED.average_confidence,
			performance_level = EXCLUDED.performance_level,
			skills_practiced = EXCLUDED.skills_practiced,
			topics_discussed = EXCLUDED.topics_discussed,
			generated_at = EXCLUDED.generated_at
	`

	_, err = r.pool.Exec(ctx, query,
		s.SessionID,
		s.RoomName,
		s.UserID,
		string(s.Scenario),
		string(s.Difficulty),
		s.SessionDurationMinutes,
		s.ConversationTurns,
		s.FeedbackEntries,
		s.AverageConfidence,
		s.PerformanceLevel,
		skillsJSON,
		topicsJSON,
		s.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session summary: %w", err)
	}

	return nil
}

// ListSummaries returns a user's archived summaries, newest first
func (r *PostgresRepository) ListSummaries(ctx context.Context, userID string, limit int) ([]*models.SessionSummary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT session_id, room_name, user_id, scenario, difficulty, duration_minutes,
		       conversation_turns, feedback_entries, average_confidence, performance_level,
		       skills_practiced, topics_discussed, generated_at
		FROM session_summaries
		WHERE user_id = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list session summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.SessionSummary, 0)

	for rows.Next() {
		var s models.SessionSummary
		var scenario, difficulty string
		var skillsJSON, topicsJSON []byte

		err := rows.Scan(
			&s.SessionID,
			&s.RoomName,
			&s.UserID,
			&scenario,
			&difficulty,
			&s.SessionDurationMinutes,
			&s.ConversationTurns,
			&s.FeedbackEntries,
			&s.AverageConfidence,
			&s.PerformanceLevel,
			&skillsJSON,
			&topicsJSON,
			&s.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}

		s.Scenario = models.ScenarioType(scenario)
		s.Difficulty = models.DifficultyLevel(difficulty)

		if err := json.Unmarshal(skillsJSON, &s.SkillsPracticed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
		}
		if err := json.Unmarshal(topicsJSON, &s.TopicsDiscussed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
		}

		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session summaries: %w", err)
	}

	return summaries, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
