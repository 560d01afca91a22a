package metrics

import (
	"time"

	"github.com/goburrow/cache"
)

type cacheStatsCounter struct {
	client Client
	tags   []string
}

// NewCacheStatsCounter returns a goburrow cache.StatsCounter that submits
// cache activity through client. Metric names are prefixed with prefix.
func NewCacheStatsCounter(client Client, prefix string, tagOptions ...TagOption) cache.StatsCounter {
	return &cacheStatsCounter{
		client: client,
		tags:   append(GetTags(tagOptions...), "cache:"+prefix),
	}
}

func (s *cacheStatsCounter) RecordHits(count uint64) {
	_ = s.client.Count("cache_hits", int64(count), s.tags)
}

func (s *cacheStatsCounter) RecordMisses(count uint64) {
	_ = s.client.Count("cache_misses", int64(count), s.tags)
}

func (s *cacheStatsCounter) RecordLoadSuccess(loadTime time.Duration) {
	_ = s.client.Timing("cache_load", loadTime, s.tags)
}

func (s *cacheStatsCounter) RecordLoadError(loadTime time.Duration) {
	_ = s.client.Timing("cache_load_error", loadTime, s.tags)
}

func (s *cacheStatsCounter) RecordEviction() {
	_ = s.client.Count("cache_evictions", 1, s.tags)
}

// Snapshot is a no-op; values live in the metrics backend.
func (s *cacheStatsCounter) Snapshot(_ *cache.Stats) {}
