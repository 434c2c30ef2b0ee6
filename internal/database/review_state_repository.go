package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingua/internal/spaced_repetition"
	"github.com/example/lingua/pkg/models"
)

const stateColumns = "user_id, item_id, mastery_level, first_learned_at, last_reviewed_at, next_review_at"

// ReviewStateRepository handles database operations for review states.
// Writes that depend on the current level are single conditional statements,
// so concurrent reviews of the same item never apply against a stale level.
type ReviewStateRepository struct {
	db     *sqlx.DB
	ladder *spaced_repetition.Ladder
}

// NewReviewStateRepository creates a new repository instance
func NewReviewStateRepository(db *sqlx.DB, ladder *spaced_repetition.Ladder) *ReviewStateRepository {
	return &ReviewStateRepository{db: db, ladder: ladder}
}

// Get returns the state for a user and item, or nil if the item was never reviewed
func (r *ReviewStateRepository) Get(ctx context.Context, userID, itemID int64) (*models.ReviewState, error) {
	var state models.ReviewState
	err := r.db.GetContext(ctx, &state, r.db.Rebind(
		"SELECT "+stateColumns+" FROM review_states WHERE user_id = ? AND item_id = ?"),
		userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review state: %w", err)
	}
	normalizeState(&state)
	return &state, nil
}

// Upsert writes precomputed fields. An existing first_learned_at is preserved.
func (r *ReviewStateRepository) Upsert(ctx context.Context, state models.ReviewState) error {
	query := `
		INSERT INTO review_states (` + stateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			mastery_level = excluded.mastery_level,
			first_learned_at = COALESCE(review_states.first_learned_at, excluded.first_learned_at),
			last_reviewed_at = excluded.last_reviewed_at,
			next_review_at = excluded.next_review_at
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		state.UserID,
		state.ItemID,
		r.ladder.ClampLevel(state.MasteryLevel),
		utcPtr(state.FirstLearnedAt),
		utcPtr(state.LastReviewedAt),
		utcPtr(state.NextReviewAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert review state: %w", err)
	}
	return nil
}

// BatchUpdate moves every item in upIDs one level up and every item in downIDs
// one level down, all in one transaction. Items without a state are seeded at
// the lowest level first. Ids that match no item are ignored.
func (r *ReviewStateRepository) BatchUpdate(ctx context.Context, userID int64, upIDs, downIDs []int64, now time.Time) (BatchResult, error) {
	now = now.UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var result BatchResult
	batches := []struct {
		direction models.Direction
		ids       []int64
		moved     *int64
	}{
		{models.DirectionUp, upIDs, &result.Up},
		{models.DirectionDown, downIDs, &result.Down},
	}
	for _, batch := range batches {
		if len(batch.ids) == 0 {
			continue
		}
		moved, err := r.applyDirection(ctx, tx, userID, batch.ids, batch.direction, now)
		if err != nil {
			return BatchResult{}, err
		}
		*batch.moved = moved
	}

	if err := tx.Commit(); err != nil {
		return BatchResult{}, fmt.Errorf("failed to commit review batch: %w", err)
	}
	return result, nil
}

func (r *ReviewStateRepository) applyDirection(ctx context.Context, tx *sqlx.Tx, userID int64, ids []int64, direction models.Direction, now time.Time) (int64, error) {
	driver := r.db.DriverName()

	seed := fmt.Sprintf(`
		INSERT INTO review_states (user_id, item_id, mastery_level, first_learned_at)
		SELECT %s, id, %d, %s FROM items WHERE id IN (?)
		ON CONFLICT (user_id, item_id) DO NOTHING
	`, intParam(driver), r.ladder.MinLevel, timeParam(driver))
	if _, err := execIn(ctx, tx, seed, userID, now, ids); err != nil {
		return 0, fmt.Errorf("failed to seed review states: %w", err)
	}

	level := levelExpr(r.ladder, direction.Step())
	nextReview, nextArgs := nextReviewExpr(driver, r.ladder, level, now)
	update := `
		UPDATE review_states SET
			mastery_level = ` + level + `,
			first_learned_at = COALESCE(first_learned_at, ?),
			last_reviewed_at = ?,
			next_review_at = ` + nextReview + `
		WHERE user_id = ? AND item_id IN (?)
	`
	args := []interface{}{now, now}
	args = append(args, nextArgs...)
	args = append(args, userID, ids)
	res, err := execIn(ctx, tx, update, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to move review states %s: %w", direction, err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := r.logEvents(ctx, tx, userID, ids, direction, now); err != nil {
		return 0, err
	}
	return moved, nil
}

func (r *ReviewStateRepository) logEvents(ctx context.Context, tx *sqlx.Tx, userID int64, ids []int64, direction models.Direction, now time.Time) error {
	driver := r.db.DriverName()
	query := fmt.Sprintf(`
		INSERT INTO review_events (user_id, item_id, kind, outcome, occurred_at)
		SELECT %s, id, kind, %s, %s FROM items WHERE id IN (?)
	`, intParam(driver), textParam(driver), timeParam(driver))
	if _, err := execIn(ctx, tx, query, userID, string(direction), now, ids); err != nil {
		return fmt.Errorf("failed to log review events: %w", err)
	}
	return nil
}

// ForceSet pins an item to level regardless of its current level and schedules
// it interval from now. Returns nil if the item does not exist.
func (r *ReviewStateRepository) ForceSet(ctx context.Context, userID, itemID int64, level int, interval time.Duration, now time.Time) (*models.ReviewState, error) {
	driver := r.db.DriverName()
	state := r.ladder.ForceSet(models.ReviewState{UserID: userID, ItemID: itemID}, level, interval, now)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
		INSERT INTO review_states (`+stateColumns+`)
		SELECT %[1]s, id, %[1]s, %[2]s, %[2]s, %[2]s FROM items WHERE id = ?
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			mastery_level = excluded.mastery_level,
			first_learned_at = COALESCE(review_states.first_learned_at, excluded.first_learned_at),
			last_reviewed_at = excluded.last_reviewed_at,
			next_review_at = excluded.next_review_at
	`, intParam(driver), timeParam(driver))
	res, err := tx.ExecContext(ctx, tx.Rebind(query),
		userID,
		state.MasteryLevel,
		*state.FirstLearnedAt,
		*state.LastReviewedAt,
		*state.NextReviewAt,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to force review state: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	if err := r.logEvents(ctx, tx, userID, []int64{itemID}, models.DirectionUp, *state.LastReviewedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit forced review state: %w", err)
	}

	return r.Get(ctx, userID, itemID)
}

// QueryDue returns the user's states scheduled at or before now, most overdue first
func (r *ReviewStateRepository) QueryDue(ctx context.Context, userID int64, now time.Time) ([]models.ReviewState, error) {
	return r.selectStates(ctx, `
		SELECT `+stateColumns+` FROM review_states
		WHERE user_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?
		ORDER BY next_review_at, item_id
	`, userID, now.UTC())
}

// CountDue returns the number of the user's states due at now
func (r *ReviewStateRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		SELECT COUNT(*) FROM review_states
		WHERE user_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?
	`), userID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to count due review states: %w", err)
	}
	return count, nil
}

// QueryAll returns every state of the user
func (r *ReviewStateRepository) QueryAll(ctx context.Context, userID int64) ([]models.ReviewState, error) {
	return r.selectStates(ctx, `
		SELECT `+stateColumns+` FROM review_states
		WHERE user_id = ?
		ORDER BY item_id
	`, userID)
}

// QueryByIDs returns the user's states for the given items, ordered by item id.
// Items without a state are left out.
func (r *ReviewStateRepository) QueryByIDs(ctx context.Context, userID int64, itemIDs []int64) ([]models.ReviewState, error) {
	if len(itemIDs) == 0 {
		return []models.ReviewState{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT `+stateColumns+` FROM review_states
		WHERE user_id = ? AND item_id IN (?)
		ORDER BY item_id
	`, userID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand query: %w", err)
	}
	return r.selectStates(ctx, query, args...)
}

// QueryScheduledBetween returns the user's states with next_review_at in [from, to)
func (r *ReviewStateRepository) QueryScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.ReviewState, error) {
	return r.selectStates(ctx, `
		SELECT `+stateColumns+` FROM review_states
		WHERE user_id = ? AND next_review_at >= ? AND next_review_at < ?
		ORDER BY next_review_at, item_id
	`, userID, from.UTC(), to.UTC())
}

// Reset deletes the user's states, limited to one kind of item when kind is set
func (r *ReviewStateRepository) Reset(ctx context.Context, userID int64, kind models.ItemKind) (int64, error) {
	query := "DELETE FROM review_states WHERE user_id = ?"
	args := []interface{}{userID}
	if kind != "" {
		query += " AND item_id IN (SELECT id FROM items WHERE kind = ?)"
		args = append(args, string(kind))
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reset review states: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

func (r *ReviewStateRepository) selectStates(ctx context.Context, query string, args ...interface{}) ([]models.ReviewState, error) {
	states := []models.ReviewState{}
	if err := r.db.SelectContext(ctx, &states, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to select review states: %w", err)
	}
	for i := range states {
		normalizeState(&states[i])
	}
	return states, nil
}

func execIn(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (sql.Result, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand query: %w", err)
	}
	return tx.ExecContext(ctx, tx.Rebind(query), args...)
}
