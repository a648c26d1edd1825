package storage

import (
	"context"

	"github.com/terra-clan/practice-engine/internal/models"
)

// Repository archives finished practice sessions.
// Live rooms and sessions stay in memory; only summaries are persisted.
type Repository interface {
	SaveSummary(ctx context.Context, s *models.SessionSummary) error
	ListSummaries(ctx context.Context, userID string, limit int) ([]*models.SessionSummary, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
