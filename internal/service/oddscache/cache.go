package oddscache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"DraftPulse/internal/domain/models"
	drepo "DraftPulse/internal/domain/repository"
	applogger "DraftPulse/pkg/logger"
)

const (
	// DefaultQuota is the provider's daily request budget assumed until the
	// first response headers arrive.
	DefaultQuota = 500

	DefaultDuration = 5 * time.Minute
	DefaultFile     = "odds_cache.json"
)

// Cache holds raw per-source payloads with a TTL plus the provider quota
// mirror, snapshotted to disk so a restart does not reset rate tracking.
// The in-memory state stays authoritative: disk writes are best-effort.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	duration  time.Duration
	file      string
	lastCall  time.Time // zero = no call recorded yet
	remaining int
	used      int

	now     func() time.Time
	log     *applogger.Logger
	metrics drepo.Metrics
}

type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// snapshot is the durable document. Unknown fields added later are ignored on
// load, keeping old files forward-readable.
type snapshot struct {
	Cache             map[string]entry `json:"cache"`
	LastAPICall       *int64           `json:"last_api_call"`
	RemainingRequests int              `json:"remaining_requests"`
	UsedRequests      int              `json:"used_requests"`
	LastUpdated       int64            `json:"last_updated"`
}

type Option func(*Cache)

// WithDuration sets the freshness TTL.
func WithDuration(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithFile sets the snapshot path.
func WithFile(path string) Option {
	return func(c *Cache) {
		if path != "" {
			c.file = path
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithMetrics injects a metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Cache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New creates a cache and loads its snapshot if one exists. A missing or
// corrupt snapshot starts the cache empty, never fails construction.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[string]entry),
		duration:  DefaultDuration,
		file:      DefaultFile,
		remaining: DefaultQuota,
		now:       time.Now,
		metrics:   drepo.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.load()
	return c
}

// Get returns the payload for key if present and fresh.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && c.age(e) < c.duration {
		c.metrics.RecordCacheHit()
		return e.Data, true
	}
	c.metrics.RecordCacheMiss()
	return nil, false
}

// GetStale returns the payload for key regardless of freshness. Used only as
// a degraded fallback after a fetch failure.
func (c *Cache) GetStale(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.Data, true
	}
	return nil, false
}

// Put overwrites the entry for key and snapshots to disk.
func (c *Cache) Put(key string, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{Data: payload, Timestamp: c.now().Unix()}
	c.metrics.RecordCacheSize(len(c.entries))
	c.save()
}

// UpdateQuota records provider-reported limits and marks the call time.
func (c *Cache) UpdateQuota(remaining, used int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remaining = remaining
	c.used = used
	c.lastCall = c.now()
	c.save()
}

// AllowedNow reports whether a new external request is permitted: either no
// call has been made yet, or the minimum spacing has elapsed and quota remains.
func (c *Cache) AllowedNow(minInterval time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastCall.IsZero() {
		return true
	}
	if c.now().Sub(c.lastCall) < minInterval {
		return false
	}
	return c.remaining > 0
}

// EvictExpired removes entries whose age reached the TTL and returns the
// count removed. Disk is touched only when something was evicted.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []string
	for key, e := range c.entries {
		if c.age(e) >= c.duration {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		delete(c.entries, key)
	}

	c.metrics.RecordCacheEntriesCleared(len(expired))
	c.metrics.RecordCacheSize(len(c.entries))
	if len(expired) > 0 {
		c.save()
	}
	return len(expired)
}

// Reset clears all entries and quota state and removes the snapshot file.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
	c.lastCall = time.Time{}
	c.remaining = DefaultQuota
	c.used = 0
	c.metrics.RecordCacheSize(0)

	if err := os.Remove(c.file); err != nil && !os.IsNotExist(err) {
		c.warn("remove cache file", err)
	}
}

// Stats returns the introspection snapshot served by the API.
func (c *Cache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	stats := models.CacheStats{
		CachedKeys:        keys,
		RemainingRequests: c.remaining,
		UsedRequests:      c.used,
		CacheFile:         c.file,
	}
	if !c.lastCall.IsZero() {
		t := c.lastCall
		stats.LastAPICall = &t
	}
	return stats
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) age(e entry) time.Duration {
	return c.now().Sub(time.Unix(e.Timestamp, 0))
}

// load restores state from disk, best-effort. Callers hold no lock yet (only
// called from New before the cache escapes).
func (c *Cache) load() {
	b, err := os.ReadFile(c.file)
	if err != nil {
		if !os.IsNotExist(err) {
			c.warn("load cache snapshot", err)
		}
		return
	}

	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		c.warn("parse cache snapshot", err)
		return
	}

	if s.Cache != nil {
		c.entries = s.Cache
	}
	if s.LastAPICall != nil {
		c.lastCall = time.Unix(*s.LastAPICall, 0)
	}
	if s.RemainingRequests != 0 || s.UsedRequests != 0 {
		c.remaining = s.RemainingRequests
		c.used = s.UsedRequests
	}
	if c.log != nil {
		c.log.Info("cache snapshot loaded",
			applogger.String("file", c.file),
			applogger.Int("entries", len(c.entries)),
		)
	}
}

// save writes the full snapshot atomically (temp then rename) so a reader
// never observes a torn file. Caller must hold c.mu.
func (c *Cache) save() {
	s := snapshot{
		Cache:             c.entries,
		RemainingRequests: c.remaining,
		UsedRequests:      c.used,
		LastUpdated:       c.now().Unix(),
	}
	if !c.lastCall.IsZero() {
		ts := c.lastCall.Unix()
		s.LastAPICall = &ts
	}

	b, err := json.Marshal(s)
	if err != nil {
		c.warn("marshal cache snapshot", err)
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.file), filepath.Base(c.file)+".tmp-*")
	if err != nil {
		c.warn("create cache temp file", err)
		return
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		c.warn("write cache snapshot", err)
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		c.warn("close cache temp file", err)
		return
	}
	if err := os.Rename(tmp.Name(), c.file); err != nil {
		_ = os.Remove(tmp.Name())
		c.warn("rename cache snapshot", err)
	}
}

func (c *Cache) warn(msg string, err error) {
	if c.log != nil {
		c.log.Warn(msg, applogger.Error(fmt.Errorf("%s: %w", c.file, err)))
	}
}
