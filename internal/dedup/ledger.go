// Package dedup suppresses webhook redeliveries. Overseerr retries a webhook
// when the receiver is slow, so the same pending request can arrive twice.
package dedup

import (
	"fmt"
	"sync"
	"time"
)

const (
	DefaultTTL      = 10 * time.Minute
	DefaultMaxItems = 10000
)

// Config holds ledger configuration.
type Config struct {
	TTL      time.Duration
	MaxItems int
}

// Ledger records recently claimed keys until their TTL passes.
type Ledger struct {
	mu       sync.Mutex
	items    map[string]time.Time
	ttl      time.Duration
	maxItems int
	now      func() time.Time
}

// New creates a ledger. Zero values fall back to the defaults.
func New(cfg Config) *Ledger {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	return &Ledger{
		items:    make(map[string]time.Time),
		ttl:      cfg.TTL,
		maxItems: cfg.MaxItems,
		now:      time.Now,
	}
}

// Key builds the ledger key for one delivery.
func Key(notificationType string, requestID int) string {
	return fmt.Sprintf("%s:%d", notificationType, requestID)
}

// Claim marks key as in flight. It returns false if key was claimed within
// the TTL, in which case the caller must treat the delivery as a duplicate.
func (l *Ledger) Claim(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.items[key]; ok && now.Before(expiresAt) {
		return false
	}

	if len(l.items) >= l.maxItems {
		l.pruneLocked(now)
		if len(l.items) >= l.maxItems {
			l.evictOldest()
		}
	}

	l.items[key] = now.Add(l.ttl)
	return true
}

// Release forgets key so a retry is processed again. Used when processing
// failed before any change was made upstream.
func (l *Ledger) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, key)
}

// Seen reports whether key is currently claimed.
func (l *Ledger) Seen(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	expiresAt, ok := l.items[key]
	return ok && l.now().Before(expiresAt)
}

// Prune drops expired keys and returns how many were removed.
func (l *Ledger) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pruneLocked(l.now())
}

// Len returns the number of tracked keys, expired or not.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// TTL returns how long a claim lasts.
func (l *Ledger) TTL() time.Duration {
	return l.ttl
}

func (l *Ledger) pruneLocked(now time.Time) int {
	removed := 0
	for key, expiresAt := range l.items {
		if !now.Before(expiresAt) {
			delete(l.items, key)
			removed++
		}
	}
	return removed
}

func (l *Ledger) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, expiresAt := range l.items {
		if oldestKey == "" || expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = expiresAt
		}
	}

	if oldestKey != "" {
		delete(l.items, oldestKey)
	}
}
