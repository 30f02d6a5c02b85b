package otp

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var ErrQuotaExceeded = errors.New("daily otp quota exceeded")

type QuotaScope string

const (
	ScopeEmail  QuotaScope = "email"
	ScopeDevice QuotaScope = "device"
)

// QuotaTracker bounds how many OTPs an email or device may request per UTC
// calendar day. State is volatile and process-local; a multi-instance
// deployment needs an external counter store behind the same
// reserve/commit/release shape.
type QuotaTracker struct {
	mu         sync.Mutex
	dailyLimit int
	entries    map[string]*quotaEntry
}

type quotaEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func NewQuotaTracker(dailyLimit int) *QuotaTracker {
	return &QuotaTracker{
		dailyLimit: dailyLimit,
		entries:    make(map[string]*quotaEntry),
	}
}

// Reserve increments the counter for (scope, key, today) and returns a
// Reservation the caller must either Commit or Release. The check and
// increment are atomic under the entry's lock.
func (t *QuotaTracker) Reserve(scope QuotaScope, key string, now time.Time) (*Reservation, error) {
	entry := t.entry(scope, key, now)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.count >= t.dailyLimit {
		return nil, ErrQuotaExceeded
	}

	entry.count++
	return &Reservation{entry: entry}, nil
}

func (t *QuotaTracker) entry(scope QuotaScope, key string, now time.Time) *quotaEntry {
	cacheKey := fmt.Sprintf("otp-quota:%s:%s:%s", scope, key, now.UTC().Format("20060102"))

	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictExpiredLocked(now)

	if e, ok := t.entries[cacheKey]; ok {
		return e
	}

	e := &quotaEntry{resetAt: nextUTCMidnight(now)}
	t.entries[cacheKey] = e
	return e
}

func (t *QuotaTracker) evictExpiredLocked(now time.Time) {
	for key, e := range t.entries {
		if !now.Before(e.resetAt) {
			delete(t.entries, key)
		}
	}
}

func nextUTCMidnight(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// Reservation is a provisional quota increment. Release undoes the increment
// unless Commit was called first; both are idempotent and safe to defer.
type Reservation struct {
	mu        sync.Mutex
	entry     *quotaEntry
	committed bool
	released  bool
}

func (r *Reservation) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = true
}

func (r *Reservation) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.committed || r.released {
		return
	}
	r.released = true

	r.entry.mu.Lock()
	defer r.entry.mu.Unlock()
	if r.entry.count > 0 {
		r.entry.count--
	}
}

// DeviceSignature derives a non-reversible rate-limit key from the request
// origin and client agent. Raw values never become cache keys. When both are
// absent there is no device scope to track.
func DeviceSignature(requestIP, userAgent string) (string, bool) {
	ip := strings.TrimSpace(requestIP)
	agent := strings.TrimSpace(userAgent)
	if ip == "" && agent == "" {
		return "", false
	}

	if ip == "" {
		ip = "unknown-ip"
	}
	if agent == "" {
		agent = "unknown-agent"
	}

	sum := sha256.Sum256([]byte(ip + "|" + agent))
	return hex.EncodeToString(sum[:]), true
}
