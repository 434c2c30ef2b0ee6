package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingua/internal/config"
	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/internal/review"
	"github.com/example/lingua/internal/spaced_repetition"
	"github.com/example/lingua/pkg/models"
)

func TestRoutes_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(ctx, db))

	items := database.NewItemRepository(db)
	for _, it := range []models.LearnableItem{
		{Kind: models.KindVocab, Text: "hola", Translation: "hello"},
		{Kind: models.KindGrammar, Text: "ser", Translation: "to be"},
	} {
		item := it
		require.NoError(t, items.Create(ctx, &item))
	}

	ladder := spaced_repetition.NewLadder()
	svc := review.NewService(
		database.NewReviewStateRepository(db, ladder),
		items,
		database.NewEventRepository(db),
		ladder,
		config.SRSConfig{UnlockThreshold: 5, ForceSetLevel: 1, ForceSetInterval: 0, ForecastDays: 7, ActivityDays: 7},
		discardLogger(),
	)
	s := newTestServer(t, svc)

	rec := do(t, s, http.MethodPost, "/api/reviews", "1", `{"upIds":[1],"downIds":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// zero force-set interval makes the item due immediately
	rec = do(t, s, http.MethodPost, "/api/items/2/learned", "1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/summary", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary review.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, review.Summary{Total: 2, Learned: 2, Due: 1, Unlocked: 0, Streak: 1}, summary)

	rec = do(t, s, http.MethodGet, "/api/reviews/due", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var due []models.ReviewState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	require.Len(t, due, 1)
	assert.Equal(t, int64(2), due[0].ItemID)

	rec = do(t, s, http.MethodGet, "/api/items/new", "2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fresh []models.LearnableItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
	assert.Len(t, fresh, 2, "progress is per user")

	rec = do(t, s, http.MethodPost, "/api/items/99/learned", "1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/progress", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":2}`, rec.Body.String())
}
