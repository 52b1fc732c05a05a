package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nileshgupta/stocklens/internal/model"
)

// DefaultTTL is the freshness window applied when none is configured.
const DefaultTTL = 30 * time.Minute

// StatusCache is the thread-safe holder of the last market-status answer.
type StatusCache struct {
	mu sync.RWMutex

	ttl    time.Duration
	logger *slog.Logger

	// Clock, swappable in tests.
	now func() time.Time

	entry   model.MarketStatus
	savedAt time.Time
}

// New creates a status cache with the given freshness window.
// Non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, logger *slog.Logger) *StatusCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusCache{
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the cached status if it is still within the freshness
// window. A stale, absent, or unusable entry reports a miss.
func (c *StatusCache) Get() (model.MarketStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.savedAt.IsZero() {
		return model.MarketStatus{}, false
	}
	if c.now().Sub(c.savedAt) >= c.ttl {
		return model.MarketStatus{}, false
	}
	if !c.entry.Status.Valid() {
		// A stored value that no longer decodes to a known state is
		// treated as a miss, never surfaced.
		c.logger.Warn("discarding unusable cached status", "status", string(c.entry.Status))
		return model.MarketStatus{}, false
	}

	return c.entry, true
}

// Put stores a freshly computed status and restarts the window.
func (c *StatusCache) Put(s model.MarketStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = s
	c.savedAt = c.now()
}

// Age returns the time since the last write. ok is false when nothing
// has been stored yet.
func (c *StatusCache) Age() (age time.Duration, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.savedAt.IsZero() {
		return 0, false
	}
	return c.now().Sub(c.savedAt), true
}

// TTL returns the configured freshness window.
func (c *StatusCache) TTL() time.Duration {
	return c.ttl
}
