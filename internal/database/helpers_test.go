package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingua/internal/config"
	"github.com/example/lingua/internal/spaced_repetition"
	"github.com/example/lingua/pkg/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func createItem(t *testing.T, db *sqlx.DB, kind models.ItemKind, text string) models.LearnableItem {
	t.Helper()
	item := models.LearnableItem{Kind: kind, Text: text, Translation: text + " (tr)"}
	require.NoError(t, NewItemRepository(db).Create(context.Background(), &item))
	return item
}

func seedState(t *testing.T, db *sqlx.DB, userID, itemID int64, level int, next time.Time) {
	t.Helper()
	repo := NewReviewStateRepository(db, spaced_repetition.NewLadder())
	first := next.Add(-24 * time.Hour)
	require.NoError(t, repo.Upsert(context.Background(), models.ReviewState{
		UserID:         userID,
		ItemID:         itemID,
		MasteryLevel:   level,
		FirstLearnedAt: &first,
		LastReviewedAt: &first,
		NextReviewAt:   &next,
	}))
}

func assertTimeEqual(t *testing.T, want time.Time, got *time.Time, msgAndArgs ...interface{}) {
	t.Helper()
	if assert.NotNil(t, got, msgAndArgs...) {
		assert.True(t, want.Equal(*got), "want %s, got %s", want, *got)
	}
}
