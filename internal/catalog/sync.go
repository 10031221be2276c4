package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sync maintains a continuously updated, ordered view of published records
// for every subscriber: live records by publication time descending, then
// the fixed seed set. Each delivered snapshot is a fresh value; consumers
// never see it mutated in place.
type Sync struct {
	store      Store
	logger     zerolog.Logger
	retryDelay time.Duration

	mu      sync.Mutex
	subs    map[int]func([]VideoRecord)
	nextID  int
	last    []VideoRecord
	started bool
}

type Subscription struct {
	sync *Sync
	id   int
}

// Unsubscribe releases the subscription. No callbacks fire afterwards.
func (s *Subscription) Unsubscribe() {
	s.sync.mu.Lock()
	delete(s.sync.subs, s.id)
	s.sync.mu.Unlock()
}

func NewSync(store Store, logger zerolog.Logger) *Sync {
	return &Sync{
		store:      store,
		logger:     logger,
		retryDelay: 2 * time.Second,
		subs:       make(map[int]func([]VideoRecord)),
		last:       Seeds(),
	}
}

// Start loads the initial snapshot and begins following store changes
// until ctx is cancelled. A failed refresh keeps the last good snapshot
// and retries; subscribers are never left hanging on an error.
func (s *Sync) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.refresh(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.store.Changes():
				s.refresh(ctx)
			}
		}
	}()
}

func (s *Sync) refresh(ctx context.Context) {
	records, err := s.store.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Msg("catalog refresh failed, keeping last snapshot")
		time.AfterFunc(s.retryDelay, func() {
			if ctx.Err() == nil {
				s.refresh(ctx)
			}
		})
		return
	}

	snapshot := compose(records)

	s.mu.Lock()
	s.last = snapshot
	fns := make([]func([]VideoRecord), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(cloneRecords(snapshot))
	}
}

// Subscribe registers an observer, invoking it once immediately with the
// current snapshot and again on every subsequent change.
func (s *Sync) Subscribe(fn func([]VideoRecord)) *Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	snapshot := cloneRecords(s.last)
	s.mu.Unlock()

	fn(snapshot)

	return &Subscription{sync: s, id: id}
}

// Snapshot returns a copy of the current ordered view.
func (s *Sync) Snapshot() []VideoRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.last)
}

// RecordView fires a best-effort view increment for a non-seed record.
// Failures are swallowed; views may undercount but never crash a viewer.
func (s *Sync) RecordView(id string) {
	if id == "" {
		return
	}
	for _, seed := range Seeds() {
		if seed.ID == id {
			return
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.IncrementView(ctx, id); err != nil {
			s.logger.Debug().Err(err).Str("id", id).Msg("view increment dropped")
		}
	}()
}

// compose appends the seed set after the live records. Seeds keep their
// fixed position regardless of real publication timestamps.
func compose(live []VideoRecord) []VideoRecord {
	out := make([]VideoRecord, 0, len(live)+3)
	out = append(out, live...)
	out = append(out, Seeds()...)
	return out
}

func cloneRecords(records []VideoRecord) []VideoRecord {
	out := make([]VideoRecord, len(records))
	copy(out, records)
	return out
}
