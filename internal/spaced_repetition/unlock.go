package spaced_repetition

import "github.com/example/lingua/pkg/models"

// DefaultUnlockThreshold is the mastery level that opens conjugation drills
const DefaultUnlockThreshold = 5

// IsUnlocked reports whether state has reached threshold. A nil state counts as level 0.
func IsUnlocked(state *models.ReviewState, threshold int) bool {
	level := 0
	if state != nil {
		level = state.MasteryLevel
	}
	return level >= threshold
}

// UnlockedItems filters joined items down to the unlocked ones, keeping order
func UnlockedItems(items []models.ItemWithState, threshold int) []models.LearnableItem {
	unlocked := make([]models.LearnableItem, 0)
	for _, it := range items {
		if IsUnlocked(it.State, threshold) {
			unlocked = append(unlocked, it.Item)
		}
	}
	return unlocked
}
