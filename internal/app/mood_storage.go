package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"moods/internal/domain"
	"moods/internal/metrics"
)

// DefaultStorageKey is the key the mood document is stored under.
const DefaultStorageKey = "my-app-data"

// MoodStorage reads and writes the mood document through a key-value store.
// Load and Save never return storage errors: failures are logged, counted
// and treated as "no data".
type MoodStorage struct {
	kv      domain.KeyValueStore
	key     string
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewMoodStorage creates a MoodStorage for key. An empty key selects
// DefaultStorageKey.
func NewMoodStorage(kv domain.KeyValueStore, key string, log zerolog.Logger, m *metrics.Metrics) *MoodStorage {
	if key == "" {
		key = DefaultStorageKey
	}
	return &MoodStorage{
		kv:      kv,
		key:     key,
		log:     log.With().Str("component", "storage").Str("key", key).Logger(),
		metrics: m,
	}
}

// Key returns the storage key in use.
func (s *MoodStorage) Key() string {
	return s.key
}

// Load returns the stored document, or nil when nothing usable is stored.
func (s *MoodStorage) Load(ctx context.Context) *domain.AppData {
	raw, found, err := s.kv.GetItem(ctx, s.key)
	if err != nil {
		s.metrics.StorageError("read")
		s.log.Warn().Err(err).Msg("read failed, treating as empty")
		return nil
	}
	if !found || raw == "" {
		return nil
	}

	var data domain.AppData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.metrics.StorageError("decode")
		s.log.Warn().Err(err).Msg("stored value is not valid JSON, treating as empty")
		return nil
	}
	if data.Moods == nil {
		data.Moods = []domain.MoodEntry{}
	}
	return &data
}

// Save writes data under the storage key.
func (s *MoodStorage) Save(ctx context.Context, data domain.AppData) {
	if data.Moods == nil {
		data.Moods = []domain.MoodEntry{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		s.metrics.StorageError("encode")
		s.log.Warn().Err(err).Msg("encode failed")
		return
	}
	if err := s.kv.SetItem(ctx, s.key, string(b)); err != nil {
		s.metrics.StorageError("write")
		s.log.Warn().Err(err).Msg("write failed")
		return
	}
	s.log.Debug().Int("entries", len(data.Moods)).Msg("saved")
}

// Clear removes the stored document. Unlike Load and Save it returns the
// failure to the caller.
func (s *MoodStorage) Clear(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, s.key); err != nil {
		s.metrics.StorageError("remove")
		return fmt.Errorf("clear %s: %w", s.key, err)
	}
	s.log.Info().Msg("stored moods cleared")
	return nil
}
