package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingua/pkg/models"
)

func TestItemRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(newTestDB(t))

	item := models.LearnableItem{Kind: models.KindVocab, Text: "hola", Translation: "hello", Topic: "greetings"}
	require.NoError(t, repo.Create(ctx, &item))
	assert.NotZero(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Translation)
	assert.Equal(t, "greetings", got.Topic)

	missing, err := repo.GetByID(ctx, item.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestItemRepository_Create_RejectsInvalidKind(t *testing.T) {
	repo := NewItemRepository(newTestDB(t))

	err := repo.Create(context.Background(), &models.LearnableItem{Kind: "phrase", Text: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidKind)
}

func TestItemRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(newTestDB(t))

	item := models.LearnableItem{Kind: models.KindGrammar, Text: "pretérito perfecto", Structure: "haber + participio"}
	created, err := repo.Upsert(ctx, &item)
	require.NoError(t, err)
	assert.True(t, created)

	update := models.LearnableItem{Kind: models.KindGrammar, Text: "pretérito perfecto", Structure: "he/has/ha + participio", Tense: "perfect"}
	created, err = repo.Upsert(ctx, &update)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, item.ID, update.ID)

	got, err := repo.GetByKindAndText(ctx, models.KindGrammar, "pretérito perfecto")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "he/has/ha + participio", got.Structure)
	assert.Equal(t, "perfect", got.Tense)

	// same text under another kind is a separate item
	other := models.LearnableItem{Kind: models.KindVocab, Text: "pretérito perfecto"}
	created, err = repo.Upsert(ctx, &other)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, item.ID, other.ID)
}

func TestItemRepository_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewItemRepository(db)
	createItem(t, db, models.KindVocab, "uno")
	createItem(t, db, models.KindGrammar, "gustar")
	createItem(t, db, models.KindVocab, "dos")

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	vocab, err := repo.List(ctx, models.KindVocab)
	require.NoError(t, err)
	require.Len(t, vocab, 2)
	assert.Equal(t, "uno", vocab[0].Text)
	assert.Equal(t, "dos", vocab[1].Text)
}

func TestItemRepository_ListNew(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewItemRepository(db)
	learned := createItem(t, db, models.KindVocab, "tres")
	fresh := createItem(t, db, models.KindVocab, "cuatro")
	grammar := createItem(t, db, models.KindGrammar, "por vs para")
	seedState(t, db, 1, learned.ID, 2, testNow)

	got, err := repo.ListNew(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, fresh.ID, got[0].ID)
	assert.Equal(t, grammar.ID, got[1].ID)

	got, err = repo.ListNew(ctx, 1, models.KindGrammar)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, grammar.ID, got[0].ID)

	// another user has learned nothing yet
	got, err = repo.ListNew(ctx, 2, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestItemRepository_ListWithState(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewItemRepository(db)
	learned := createItem(t, db, models.KindVocab, "cinco")
	createItem(t, db, models.KindVocab, "seis")
	next := testNow.Add(48 * time.Hour)
	seedState(t, db, 1, learned.ID, 6, next)

	got, err := repo.ListWithState(ctx, 1, models.KindVocab)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].State)
	assert.Equal(t, learned.ID, got[0].Item.ID)
	assert.Equal(t, int64(1), got[0].State.UserID)
	assert.Equal(t, 6, got[0].State.MasteryLevel)
	assertTimeEqual(t, next, got[0].State.NextReviewAt)

	assert.Equal(t, "seis", got[1].Item.Text)
	assert.Nil(t, got[1].State)
}

func TestItemRepository_ListError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewItemRepository(sqlx.NewDb(mockDB, DriverSQLite))

	mock.ExpectQuery("FROM items").WillReturnError(fmt.Errorf("no such table: items"))
	_, err = repo.List(context.Background(), models.KindVocab)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list items")
	assert.NoError(t, mock.ExpectationsWereMet())
}
