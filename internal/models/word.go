package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Definition is a single dictionary definition with an optional usage example.
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// MeaningGroup groups definitions under one part of speech.
type MeaningGroup struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// MeaningGroups is stored as a JSON column.
type MeaningGroups []MeaningGroup

// Value implements driver.Valuer for JSON column storage.
func (m MeaningGroups) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meanings: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON column storage.
func (m *MeaningGroups) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported meanings column type %T", src)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("failed to unmarshal meanings: %w", err)
	}
	return nil
}

// Word is a vocabulary entry owned by exactly one user.
//
// PRecall is the cached model-estimated probability of recall in [0,1].
// A nil value means the word has never been predicted and callers should
// use the fallback heuristic instead.
type Word struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	Term           string        `json:"term"`
	Phonetic       string        `json:"phonetic,omitempty"`
	Audio          string        `json:"audio,omitempty"`
	ShortMeaning   string        `json:"shortMeaning,omitempty"`
	Meanings       MeaningGroups `json:"meanings"`
	Memorized      bool          `json:"memorized"`
	Note           string        `json:"note,omitempty"`
	PRecall        *float64      `json:"p_recall,omitempty"`
	SeenCount      int           `json:"seenCount"`
	IncorrectCount int           `json:"incorrectCount"`
	LastResult     string        `json:"lastResult,omitempty"`
	LastSeenAt     *time.Time    `json:"lastSeenAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// CreateWordRequest is the payload for adding a new word.
type CreateWordRequest struct {
	Term         string        `json:"term"`
	Phonetic     string        `json:"phonetic"`
	Audio        string        `json:"audio"`
	ShortMeaning string        `json:"shortMeaning"`
	Meanings     MeaningGroups `json:"meanings"`
	Note         string        `json:"note"`
}

// UpdateWordRequest is the payload for editing a word. Nil fields are left
// unchanged.
type UpdateWordRequest struct {
	Term         *string        `json:"term,omitempty"`
	Phonetic     *string        `json:"phonetic,omitempty"`
	Audio        *string        `json:"audio,omitempty"`
	ShortMeaning *string        `json:"shortMeaning,omitempty"`
	Meanings     *MeaningGroups `json:"meanings,omitempty"`
	Note         *string        `json:"note,omitempty"`
	Memorized    *bool          `json:"memorized,omitempty"`
}
