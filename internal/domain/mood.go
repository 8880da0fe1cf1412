// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidMood indicates a mood option without an emoji or a description.
var ErrInvalidMood = errors.New("mood requires an emoji and a description")

// MoodOption is the mood value a user selects.
type MoodOption struct {
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// Normalize returns the option with surrounding whitespace removed.
func (m MoodOption) Normalize() MoodOption {
	return MoodOption{
		Emoji:       strings.TrimSpace(m.Emoji),
		Description: strings.TrimSpace(m.Description),
	}
}

// Validate reports ErrInvalidMood when either field is blank.
func (m MoodOption) Validate() error {
	n := m.Normalize()
	if n.Emoji == "" || n.Description == "" {
		return ErrInvalidMood
	}
	return nil
}

// MoodEntry pairs a selected mood with its creation time in milliseconds
// since the Unix epoch. The timestamp identifies the entry for deletion.
type MoodEntry struct {
	Mood      MoodOption `json:"mood"`
	Timestamp int64      `json:"timestamp"`
}

// AppData is the document persisted under the storage key.
type AppData struct {
	Moods []MoodEntry `json:"moods"`
}

// KeyValueStore is the port for the persistence boundary. Values are opaque
// strings addressed by key.
type KeyValueStore interface {
	// GetItem returns the value stored under key. found is false when the key
	// has never been written or was removed.
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
