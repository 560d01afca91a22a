// Package memory provides a process-local guard.Guard.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goburrow/cache"
	"github.com/google/uuid"

	"github.com/kinecosystem/agora-activator/guard"
	"github.com/kinecosystem/agora-activator/metrics"
)

const maxEntries = 100000

type memoryGuard struct {
	mu    sync.Mutex
	holds cache.Cache
}

// New returns a Guard whose holds expire after ttl. Cache activity is
// reported through metricsClient, which may be nil.
func New(ttl time.Duration, metricsClient metrics.Client) guard.Guard {
	opts := []cache.Option{
		cache.WithMaximumSize(maxEntries),
		cache.WithExpireAfterWrite(ttl),
	}
	if metricsClient != nil {
		opts = append(opts, cache.WithStatsCounter(metrics.NewCacheStatsCounter(metricsClient, "guard", metrics.WithTypeTag("memory"))))
	}

	return &memoryGuard{
		holds: cache.New(opts...),
	}
}

// Acquire implements guard.Guard.Acquire.
func (g *memoryGuard) Acquire(_ context.Context, key string) (guard.ReleaseFunc, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.holds.GetIfPresent(key); held {
		return nil, guard.ErrHeld
	}

	token := uuid.New().String()
	g.holds.Put(key, token)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()

			// The hold may have expired and been taken by someone else.
			if current, ok := g.holds.GetIfPresent(key); ok && current == token {
				g.holds.Invalidate(key)
			}
		})
	}, nil
}
