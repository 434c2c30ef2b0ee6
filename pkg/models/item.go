package models

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidKind is returned when an item kind is neither vocab nor grammar
var ErrInvalidKind = errors.New("invalid item kind")

// ItemKind categorizes learnable content
type ItemKind string

const (
	KindVocab   ItemKind = "vocab"
	KindGrammar ItemKind = "grammar"
)

// Valid reports whether k is a known kind
func (k ItemKind) Valid() bool {
	return k == KindVocab || k == KindGrammar
}

// ParseItemKind parses a kind name. The empty string is accepted and means "any kind".
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" || k.Valid() {
		return k, nil
	}
	return "", ErrInvalidKind
}

// LearnableItem is a vocabulary word or grammar point. Items are created at import
// time and are read-only afterwards.
type LearnableItem struct {
	ID          int64     `json:"id" db:"id"`
	Kind        ItemKind  `json:"kind" db:"kind"`
	Text        string    `json:"text" db:"text"`
	Translation string    `json:"translation" db:"translation"`
	Structure   string    `json:"structure,omitempty" db:"structure"`
	Topic       string    `json:"topic,omitempty" db:"topic"`
	VerbGroup   string    `json:"verb_group,omitempty" db:"verb_group"` // drill metadata
	Tense       string    `json:"tense,omitempty" db:"tense"`
	Person      string    `json:"person,omitempty" db:"person"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
