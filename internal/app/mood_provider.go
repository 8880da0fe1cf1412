// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"moods/internal/domain"
	"moods/internal/metrics"
)

var (
	// ErrDeleteDisabled is returned by DeleteMood when the provider was
	// configured without delete support.
	ErrDeleteDisabled = errors.New("deleting moods is disabled")
	// ErrProviderClosed is returned by mutations after Close.
	ErrProviderClosed = errors.New("mood provider is closed")
	// ErrNotStarted is returned by mutations issued before Start.
	ErrNotStarted = errors.New("mood provider is not started")
)

// InsertOrder decides where new entries go in the list.
type InsertOrder string

const (
	// InsertPrepend keeps the newest entry first.
	InsertPrepend InsertOrder = "prepend"
	// InsertAppend keeps the newest entry last.
	InsertAppend InsertOrder = "append"
)

// ParseInsertOrder validates s. The empty string means InsertPrepend.
func ParseInsertOrder(s string) (InsertOrder, error) {
	switch InsertOrder(s) {
	case "", InsertPrepend:
		return InsertPrepend, nil
	case InsertAppend:
		return InsertAppend, nil
	}
	return "", fmt.Errorf("insert order must be %q or %q, got %q", InsertPrepend, InsertAppend, s)
}

// ProviderOptions configures a MoodProvider.
type ProviderOptions struct {
	Order          InsertOrder
	DeletesEnabled bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// MoodProvider holds the ordered mood list in memory and mirrors every change
// to storage in the background.
type MoodProvider struct {
	storage *MoodStorage
	saver   *saver
	log     zerolog.Logger
	metrics *metrics.Metrics
	order   InsertOrder
	deletes bool
	now     func() time.Time

	mu     sync.RWMutex
	moods  []domain.MoodEntry
	closed bool

	startOnce sync.Once
	started   atomic.Bool
	ready     chan struct{}
}

// NewMoodProvider creates a provider backed by storage. Call Start to load
// the stored list and begin saving; mutations before Start fail with
// ErrNotStarted.
func NewMoodProvider(storage *MoodStorage, opts ProviderOptions, log zerolog.Logger, m *metrics.Metrics) *MoodProvider {
	if opts.Order == "" {
		opts.Order = InsertPrepend
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MoodProvider{
		storage: storage,
		saver:   newSaver(storage),
		log:     log.With().Str("component", "provider").Logger(),
		metrics: m,
		order:   opts.Order,
		deletes: opts.DeletesEnabled,
		now:     opts.Now,
		moods:   []domain.MoodEntry{},
		ready:   make(chan struct{}),
	}
}

// Start loads the stored list in the background. It returns immediately;
// Ready is closed once the load has finished. Only the first call has effect.
func (p *MoodProvider) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.started.Store(true)
		go p.saver.run()
		go p.load(ctx)
	})
}

// Ready is closed when the initial load has completed, whatever its outcome.
func (p *MoodProvider) Ready() <-chan struct{} {
	return p.ready
}

// DeletesEnabled reports whether DeleteMood is supported.
func (p *MoodProvider) DeletesEnabled() bool {
	return p.deletes
}

func (p *MoodProvider) load(ctx context.Context) {
	defer close(p.ready)

	data := p.storage.Load(ctx)
	if data == nil {
		p.log.Info().Msg("no stored moods")
		return
	}

	p.mu.Lock()
	p.moods = append([]domain.MoodEntry{}, data.Moods...)
	n := len(p.moods)
	p.mu.Unlock()

	p.metrics.SetEntries(n)
	p.log.Info().Int("entries", n).Msg("moods loaded")
}

// List returns a copy of the current list in display order.
func (p *MoodProvider) List() []domain.MoodEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]domain.MoodEntry{}, p.moods...)
}

// SelectMood records mood at the current time and schedules a save. The
// timestamp is moved forward by whole milliseconds while it collides with an
// existing entry.
func (p *MoodProvider) SelectMood(ctx context.Context, mood domain.MoodOption) (domain.MoodEntry, error) {
	if err := mood.Validate(); err != nil {
		return domain.MoodEntry{}, err
	}
	if err := p.waitReady(ctx); err != nil {
		return domain.MoodEntry{}, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.MoodEntry{}, ErrProviderClosed
	}

	ts := domain.TimestampMillis(p.now())
	for p.hasTimestamp(ts) {
		ts++
	}
	entry := domain.MoodEntry{Mood: mood.Normalize(), Timestamp: ts}

	next := make([]domain.MoodEntry, 0, len(p.moods)+1)
	if p.order == InsertAppend {
		next = append(append(next, p.moods...), entry)
	} else {
		next = append(append(next, entry), p.moods...)
	}
	p.moods = next
	p.saver.schedule(domain.AppData{Moods: append([]domain.MoodEntry{}, next...)})
	n := len(next)
	p.mu.Unlock()

	p.metrics.MoodSelected()
	p.metrics.SetEntries(n)
	p.log.Debug().Int64("timestamp", ts).Str("mood", entry.Mood.Description).Msg("mood selected")
	return entry, nil
}

// DeleteMood removes every entry with the given timestamp and schedules a
// save. It returns how many entries were removed.
func (p *MoodProvider) DeleteMood(ctx context.Context, timestamp int64) (int, error) {
	if !p.deletes {
		return 0, ErrDeleteDisabled
	}
	if err := p.waitReady(ctx); err != nil {
		return 0, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, ErrProviderClosed
	}

	next := make([]domain.MoodEntry, 0, len(p.moods))
	for _, e := range p.moods {
		if e.Timestamp != timestamp {
			next = append(next, e)
		}
	}
	removed := len(p.moods) - len(next)
	p.moods = next
	p.saver.schedule(domain.AppData{Moods: append([]domain.MoodEntry{}, next...)})
	n := len(next)
	p.mu.Unlock()

	p.metrics.MoodsDeleted(removed)
	p.metrics.SetEntries(n)
	p.log.Debug().Int64("timestamp", timestamp).Int("removed", removed).Msg("mood deleted")
	return removed, nil
}

// Flush waits until every save scheduled so far has been attempted.
func (p *MoodProvider) Flush(ctx context.Context) error {
	return p.saver.flush(ctx)
}

// Close rejects further mutations, writes any pending snapshot and stops the
// background saver.
func (p *MoodProvider) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	// A provider that was never started has nothing to write; releasing
	// ready keeps waiters from blocking.
	p.startOnce.Do(func() { close(p.ready) })
	if !p.started.Load() {
		return nil
	}
	return p.saver.stop(ctx)
}

func (p *MoodProvider) waitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	default:
	}
	if !p.started.Load() {
		return ErrNotStarted
	}
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// hasTimestamp must be called with p.mu held.
func (p *MoodProvider) hasTimestamp(ts int64) bool {
	for _, e := range p.moods {
		if e.Timestamp == ts {
			return true
		}
	}
	return false
}
