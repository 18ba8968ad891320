package cache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/storage/redis"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/internal/pkg/config"
	"github.com/aquaroute/aquaroute-api/internal/pkg/metrics"
)

// Key format for cached report lists
const ReportListKeyFormat = "reports:list:" // Format: reports:list:<time_filter>

// NewRedisStorage connects to the cache server. It panics when Redis is
// unreachable, like the storage driver itself.
func NewRedisStorage(cfg config.CacheConfig) *redis.Storage {
	return redis.New(redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		Database: cfg.Database,
		Reset:    false,
	})
}

// ListCache caches report list results per time filter. Cached entries are
// filtered again on read, so a stale entry can never bring back an expired
// report.
type ListCache struct {
	store   fiber.Storage
	ttl     time.Duration
	metrics *metrics.Metrics

	// gen is bumped by Invalidate; a list read under an older generation
	// is never written back.
	mu  sync.Mutex
	gen uint64
}

func NewListCache(store fiber.Storage, ttl time.Duration, m *metrics.Metrics) *ListCache {
	return &ListCache{store: store, ttl: ttl, metrics: m}
}

func key(filter models.TimeFilter) string {
	return ReportListKeyFormat + string(filter)
}

// Get returns the cached list for filter as visible at now.
func (c *ListCache) Get(filter models.TimeFilter, now time.Time) ([]models.Report, bool) {
	raw, err := c.store.Get(key(filter))
	if err != nil {
		log.Warnf("[Cache] Get %s failed: %v", key(filter), err)
		c.metrics.ListCache.WithLabelValues(metrics.CacheError).Inc()
		return nil, false
	}
	if len(raw) == 0 {
		c.metrics.ListCache.WithLabelValues(metrics.CacheMiss).Inc()
		return nil, false
	}

	var cached []models.Report
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Warnf("[Cache] Dropping undecodable entry %s: %v", key(filter), err)
		_ = c.store.Delete(key(filter))
		c.metrics.ListCache.WithLabelValues(metrics.CacheError).Inc()
		return nil, false
	}

	window := filter.Window()
	visible := make([]models.Report, 0, len(cached))
	for i := range cached {
		if cached[i].VisibleIn(now, window) {
			visible = append(visible, cached[i])
		}
	}
	c.metrics.ListCache.WithLabelValues(metrics.CacheHit).Inc()
	return visible, true
}

// Generation returns the current invalidation generation. Callers take it
// before reading the store and hand it to Set.
func (c *ListCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Set caches reports for filter unless an invalidation happened after gen
// was taken.
func (c *ListCache) Set(filter models.TimeFilter, reports []models.Report, gen uint64) {
	raw, err := json.Marshal(reports)
	if err != nil {
		log.Warnf("[Cache] Encode %s failed: %v", key(filter), err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		log.Debugf("[Cache] Skipping stale %s (generation %d, now %d)", key(filter), gen, c.gen)
		return
	}
	if err := c.store.Set(key(filter), raw, c.ttl); err != nil {
		log.Warnf("[Cache] Set %s failed: %v", key(filter), err)
	}
}

// Invalidate drops every cached list.
func (c *ListCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, f := range models.TimeFilters {
		if err := c.store.Delete(key(f)); err != nil {
			log.Warnf("[Cache] Delete %s failed: %v", key(f), err)
		}
	}
}
