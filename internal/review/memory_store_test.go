package review

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/internal/spaced_repetition"
	"github.com/example/lingua/pkg/models"
)

// memoryStore is an in-memory StateStore, ItemStore and EventStore driven by
// the ladder's own transitions.
type memoryStore struct {
	ladder *spaced_repetition.Ladder
	items  map[int64]models.LearnableItem
	states map[int64]map[int64]models.ReviewState
	events []models.ReviewEvent
	err    error
	calls  int
}

func newMemoryStore(ladder *spaced_repetition.Ladder) *memoryStore {
	return &memoryStore{
		ladder: ladder,
		items:  map[int64]models.LearnableItem{},
		states: map[int64]map[int64]models.ReviewState{},
	}
}

func (m *memoryStore) addItem(id int64, kind models.ItemKind, text string) {
	m.items[id] = models.LearnableItem{ID: id, Kind: kind, Text: text}
}

func (m *memoryStore) put(state models.ReviewState) {
	if m.states[state.UserID] == nil {
		m.states[state.UserID] = map[int64]models.ReviewState{}
	}
	m.states[state.UserID][state.ItemID] = state
}

func (m *memoryStore) userStates(userID int64) []models.ReviewState {
	out := []models.ReviewState{}
	for _, st := range m.states[userID] {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

func (m *memoryStore) BatchUpdate(_ context.Context, userID int64, upIDs, downIDs []int64, now time.Time) (database.BatchResult, error) {
	m.calls++
	if m.err != nil {
		return database.BatchResult{}, m.err
	}
	var result database.BatchResult
	apply := func(ids []int64, direction models.Direction) int64 {
		var moved int64
		for _, id := range ids {
			item, ok := m.items[id]
			if !ok {
				continue
			}
			current, ok := m.states[userID][id]
			if !ok {
				current = models.ReviewState{UserID: userID, ItemID: id}
			}
			m.put(m.ladder.ApplyOutcome(current, direction, now))
			m.events = append(m.events, models.ReviewEvent{UserID: userID, ItemID: id, Kind: item.Kind, Outcome: direction, OccurredAt: now})
			moved++
		}
		return moved
	}
	result.Up = apply(upIDs, models.DirectionUp)
	result.Down = apply(downIDs, models.DirectionDown)
	return result, nil
}

func (m *memoryStore) ForceSet(_ context.Context, userID, itemID int64, level int, interval time.Duration, now time.Time) (*models.ReviewState, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, nil
	}
	current, ok := m.states[userID][itemID]
	if !ok {
		current = models.ReviewState{UserID: userID, ItemID: itemID}
	}
	next := m.ladder.ForceSet(current, level, interval, now)
	m.put(next)
	m.events = append(m.events, models.ReviewEvent{UserID: userID, ItemID: itemID, Kind: item.Kind, Outcome: models.DirectionUp, OccurredAt: now})
	return &next, nil
}

func (m *memoryStore) QueryDue(_ context.Context, userID int64, now time.Time) ([]models.ReviewState, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return spaced_repetition.DueStates(m.userStates(userID), now), nil
}

func (m *memoryStore) QueryByIDs(_ context.Context, userID int64, itemIDs []int64) ([]models.ReviewState, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return lo.Filter(m.userStates(userID), func(st models.ReviewState, _ int) bool {
		return lo.Contains(itemIDs, st.ItemID)
	}), nil
}

func (m *memoryStore) QueryScheduledBetween(_ context.Context, userID int64, from, to time.Time) ([]models.ReviewState, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.ReviewState{}
	for _, st := range m.userStates(userID) {
		if st.NextReviewAt != nil && !st.NextReviewAt.Before(from) && st.NextReviewAt.Before(to) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *memoryStore) Reset(_ context.Context, userID int64, kind models.ItemKind) (int64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	var deleted int64
	for id := range m.states[userID] {
		if kind == "" || m.items[id].Kind == kind {
			delete(m.states[userID], id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memoryStore) sortedItems(kind models.ItemKind) []models.LearnableItem {
	out := []models.LearnableItem{}
	for _, item := range m.items {
		if kind == "" || item.Kind == kind {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryStore) ListNew(_ context.Context, userID int64, kind models.ItemKind) ([]models.LearnableItem, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.LearnableItem{}
	for _, item := range m.sortedItems(kind) {
		if _, ok := m.states[userID][item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryStore) ListWithState(_ context.Context, userID int64, kind models.ItemKind) ([]models.ItemWithState, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.ItemWithState{}
	for _, item := range m.sortedItems(kind) {
		entry := models.ItemWithState{Item: item}
		if st, ok := m.states[userID][item.ID]; ok {
			entry.State = &st
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *memoryStore) ListSince(_ context.Context, userID int64, since time.Time) ([]models.ReviewEvent, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.ReviewEvent{}
	for _, ev := range m.events {
		if ev.UserID == userID && !ev.OccurredAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}
