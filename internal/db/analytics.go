package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/metrics"
)

//go:embed queries/track-milestone.sql
var trackMilestoneQuery string

// TrackMilestone records the first time a user reaches a milestone. Later
// occurrences are ignored.
func (repo Repository) TrackMilestone(ctx context.Context, userID string, event domain.MilestoneEvent, metadata domain.Record) error {
	if !repo.features.Analytics {
		return nil
	}
	_, err := repo.Exec(ctx, trackMilestoneQuery, pgx.NamedArgs{
		"user_id":    userID,
		"event_name": string(event),
		"metadata":   metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to track %s: %w", event, err)
	}
	return nil
}

func (repo Repository) trackMilestoneQuietly(ctx context.Context, userID string, event domain.MilestoneEvent, metadata domain.Record) {
	err := repo.TrackMilestone(ctx, userID, event, metadata)
	if err != nil {
		repo.log.WithError(err).WithField("event", event).Warn("failed to track milestone")
		metrics.RecordSideEffectFailure("analytics")
	}
}
