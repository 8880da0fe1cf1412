package app

import (
	"context"
	"sync"
	"time"

	"moods/internal/domain"
)

const saveTimeout = 10 * time.Second

// saver writes mood snapshots from a single goroutine. Scheduling never
// blocks; snapshots queued while a write is in flight collapse into the most
// recent one, so writes reach storage in scheduling order.
type saver struct {
	storage *MoodStorage

	mu        sync.Mutex
	pending   *domain.AppData
	scheduled uint64
	done      uint64
	progress  chan struct{}

	wake    chan struct{}
	quit    chan struct{}
	stopped chan struct{}
}

func newSaver(storage *MoodStorage) *saver {
	return &saver{
		storage:  storage,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (s *saver) schedule(data domain.AppData) {
	s.mu.Lock()
	s.pending = &data
	s.scheduled++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *saver) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.quit:
			s.drain()
			return
		}
	}
}

func (s *saver) drain() {
	for {
		s.mu.Lock()
		data, gen := s.pending, s.scheduled
		s.pending = nil
		s.mu.Unlock()
		if data == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		s.storage.Save(ctx, *data)
		cancel()

		s.mu.Lock()
		s.done = gen
		close(s.progress)
		s.progress = make(chan struct{})
		s.mu.Unlock()
	}
}

// flush waits until every snapshot scheduled before the call has been written.
func (s *saver) flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.scheduled
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if s.done >= target {
			s.mu.Unlock()
			return nil
		}
		ch := s.progress
		s.mu.Unlock()

		select {
		case <-ch:
		case <-s.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *saver) stop(ctx context.Context) error {
	close(s.quit)
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
