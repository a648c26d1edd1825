package practice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terra-clan/practice-engine/internal/models"
)

// CleanupRoom archives the room's summary when an archive is configured, then
// drops the session, the channel and the room config. Removal always happens;
// an archive failure is returned afterwards. Cleaning an absent room is a no-op.
func (o *Orchestrator) CleanupRoom(ctx context.Context, room string) error {
	var archiveErr error
	if o.archive != nil {
		if summary, err := o.sessions.Summarize(room); err == nil {
			if err := o.archive.SaveSummary(ctx, &summary); err != nil {
				archiveErr = fmt.Errorf("failed to archive session for %s: %w", room, err)
			}
		}
	}

	o.sessions.CleanupSession(room)
	if o.rooms.Remove(room) {
		slog.Info("room cleaned up", "room", room)
	}
	return archiveErr
}

// CleanupUserSessions cleans every room owned by userID and returns how many
// were cleaned without error. One room failing, even by panicking, does not
// stop the others.
func (o *Orchestrator) CleanupUserSessions(ctx context.Context, userID string) int {
	cleaned := 0
	for name := range o.rooms.ListForUser(userID) {
		if err := o.safeCleanup(ctx, name); err != nil {
			slog.Warn("error cleaning up room for user", "room", name, "user_id", userID, "error", err)
			continue
		}
		cleaned++
		slog.Info("cleaned up session for user", "room", name, "user_id", userID)
	}
	return cleaned
}

// CleanupExpired cleans rooms past their timeout and returns how many were removed
func (o *Orchestrator) CleanupExpired(ctx context.Context) int {
	expired := o.rooms.Expired(o.now())
	for _, name := range expired {
		if err := o.safeCleanup(ctx, name); err != nil {
			slog.Warn("error cleaning up expired room", "room", name, "error", err)
		}
	}
	return len(expired)
}

func (o *Orchestrator) safeCleanup(ctx context.Context, room string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during cleanup of %s: %v", room, r)
		}
	}()
	return o.CleanupRoom(ctx, room)
}

// History returns archived summaries for a user, newest first
func (o *Orchestrator) History(ctx context.Context, userID string, limit int) ([]*models.SessionSummary, error) {
	if o.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return o.archive.ListSummaries(ctx, userID, limit)
}
