package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/santoshbirajdar/streamsanto/internal/blob"
)

// Sweeper reconciles the blob store with the catalog. A publish that fails
// after a successful transfer leaves a stored asset with no record; the
// sweeper deletes such orphans once they outlive a grace period, so a
// transfer whose publish is still in progress is never collected.
type Sweeper struct {
	store  Store
	blobs  blob.Store
	prefix string
	grace  time.Duration
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sweeping bool
}

func NewSweeper(store Store, blobs blob.Store, prefix string, grace time.Duration, logger zerolog.Logger) *Sweeper {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Sweeper{
		store:  store,
		blobs:  blobs,
		prefix: prefix,
		grace:  grace,
		logger: logger,
		now:    time.Now,
	}
}

// Run sweeps on the given interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("orphan sweep failed")
			}
		}
	}
}

// Sweep runs one reconciliation pass. Concurrent calls coalesce: a pass
// already in flight makes this a no-op.
func (s *Sweeper) Sweep(ctx context.Context) error {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		return nil
	}
	s.sweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	records, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	urls := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.VideoURL != "" {
			urls = append(urls, rec.VideoURL)
		}
	}

	objects, err := s.blobs.List(ctx, s.prefix)
	if err != nil {
		return err
	}

	cutoff := s.now().Add(-s.grace)
	var removed int
	for _, obj := range objects {
		if isReferenced(urls, obj.Key) || obj.Created.After(cutoff) {
			continue
		}

		if err := s.blobs.Delete(ctx, obj.Key); err != nil {
			s.logger.Warn().Err(err).Str("key", obj.Key).Msg("failed to delete orphan")
			continue
		}
		removed++
		s.logger.Info().Str("key", obj.Key).Msg("deleted orphaned object")
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("orphan sweep complete")
	}
	return nil
}

// isReferenced matches on the trailing object key, not the full URL: record
// URLs embed whatever public base was configured at publish time, so a
// base_url change must never turn live videos into orphans.
func isReferenced(urls []string, key string) bool {
	suffix := "/" + key
	for _, u := range urls {
		if strings.HasSuffix(u, suffix) {
			return true
		}
	}
	return false
}
