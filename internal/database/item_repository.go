package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingua/pkg/models"
)

const itemColumns = "id, kind, text, translation, structure, topic, verb_group, tense, person, created_at"

// ItemRepository handles database operations for learnable items
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new repository instance
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new item and fills in its ID
func (r *ItemRepository) Create(ctx context.Context, item *models.LearnableItem) error {
	if !item.Kind.Valid() {
		return models.ErrInvalidKind
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO items (kind, text, translation, structure, topic, verb_group, tense, person, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		string(item.Kind),
		item.Text,
		item.Translation,
		item.Structure,
		item.Topic,
		item.VerbGroup,
		item.Tense,
		item.Person,
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Upsert creates the item or updates the existing one with the same kind and
// text. It reports whether a new row was created.
func (r *ItemRepository) Upsert(ctx context.Context, item *models.LearnableItem) (bool, error) {
	existing, err := r.GetByKindAndText(ctx, item.Kind, item.Text)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, r.Create(ctx, item)
	}

	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE items SET
			translation = ?,
			structure = ?,
			topic = ?,
			verb_group = ?,
			tense = ?,
			person = ?
		WHERE id = ?
	`),
		item.Translation,
		item.Structure,
		item.Topic,
		item.VerbGroup,
		item.Tense,
		item.Person,
		item.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update item: %w", err)
	}
	return false, nil
}

// GetByID returns an item by ID, or nil if it does not exist
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.LearnableItem, error) {
	return r.getOne(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
}

// GetByKindAndText returns the item with the given kind and text, or nil
func (r *ItemRepository) GetByKindAndText(ctx context.Context, kind models.ItemKind, text string) (*models.LearnableItem, error) {
	return r.getOne(ctx, "SELECT "+itemColumns+" FROM items WHERE kind = ? AND text = ?", string(kind), text)
}

func (r *ItemRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.LearnableItem, error) {
	var item models.LearnableItem
	err := r.db.GetContext(ctx, &item, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// List returns all items, optionally restricted to one kind
func (r *ItemRepository) List(ctx context.Context, kind models.ItemKind) ([]models.LearnableItem, error) {
	query := "SELECT " + itemColumns + " FROM items"
	var args []interface{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY id"

	items := []models.LearnableItem{}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListNew returns the items available for learning: those the user has no state for
func (r *ItemRepository) ListNew(ctx context.Context, userID int64, kind models.ItemKind) ([]models.LearnableItem, error) {
	query := `
		SELECT i.id, i.kind, i.text, i.translation, i.structure, i.topic, i.verb_group, i.tense, i.person, i.created_at
		FROM items i
		LEFT JOIN review_states rs ON rs.item_id = i.id AND rs.user_id = ?
		WHERE rs.item_id IS NULL`
	args := []interface{}{userID}
	if kind != "" {
		query += " AND i.kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY i.id"

	items := []models.LearnableItem{}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list new items: %w", err)
	}
	return items, nil
}

type itemStateRow struct {
	models.LearnableItem
	StateLevel     sql.NullInt64 `db:"state_level"`
	FirstLearnedAt *time.Time    `db:"state_first_learned_at"`
	LastReviewedAt *time.Time    `db:"state_last_reviewed_at"`
	NextReviewAt   *time.Time    `db:"state_next_review_at"`
}

// ListWithState joins every item with the user's state for it
func (r *ItemRepository) ListWithState(ctx context.Context, userID int64, kind models.ItemKind) ([]models.ItemWithState, error) {
	query := `
		SELECT i.id, i.kind, i.text, i.translation, i.structure, i.topic, i.verb_group, i.tense, i.person, i.created_at,
			rs.mastery_level AS state_level,
			rs.first_learned_at AS state_first_learned_at,
			rs.last_reviewed_at AS state_last_reviewed_at,
			rs.next_review_at AS state_next_review_at
		FROM items i
		LEFT JOIN review_states rs ON rs.item_id = i.id AND rs.user_id = ?`
	args := []interface{}{userID}
	if kind != "" {
		query += " WHERE i.kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY i.id"

	var rows []itemStateRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list items with state: %w", err)
	}

	joined := make([]models.ItemWithState, 0, len(rows))
	for _, row := range rows {
		entry := models.ItemWithState{Item: row.LearnableItem}
		if row.StateLevel.Valid {
			state := &models.ReviewState{
				UserID:         userID,
				ItemID:         row.ID,
				MasteryLevel:   int(row.StateLevel.Int64),
				FirstLearnedAt: row.FirstLearnedAt,
				LastReviewedAt: row.LastReviewedAt,
				NextReviewAt:   row.NextReviewAt,
			}
			normalizeState(state)
			entry.State = state
		}
		joined = append(joined, entry)
	}
	return joined, nil
}
