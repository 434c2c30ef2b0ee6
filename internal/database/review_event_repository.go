package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingua/pkg/models"
)

// EventRepository reads the review log written alongside review states
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new repository instance
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListSince returns the user's events at or after since, oldest first
func (r *EventRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.ReviewEvent, error) {
	query := `
		SELECT id, user_id, item_id, kind, outcome, occurred_at
		FROM review_events
		WHERE user_id = ? AND occurred_at >= ?
		ORDER BY occurred_at, id
	`
	events := []models.ReviewEvent{}
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list review events: %w", err)
	}
	for i := range events {
		events[i].OccurredAt = events[i].OccurredAt.UTC()
	}
	return events, nil
}
