// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package contact

import (
	"sync"
	"time"
)

// Default limits for the contact form.
const (
	DefaultRateLimit  = 5
	DefaultRateWindow = time.Minute
)

type window struct {
	expiresAt time.Time
	hits      int
}

// Limiter is an in-memory fixed-window rate limiter keyed by client.
type Limiter struct {
	entries map[string]*window
	now     func() time.Time
	limit   int
	window  time.Duration
	mu      sync.Mutex
}

// NewLimiter allows limit hits per key in each window. Non-positive values
// fall back to the defaults.
func NewLimiter(limit int, w time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if w <= 0 {
		w = DefaultRateWindow
	}
	return &Limiter{
		entries: make(map[string]*window),
		now:     time.Now,
		limit:   limit,
		window:  w,
	}
}

// SetClock replaces the time source. Intended for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || e.expiresAt.Before(now) {
		l.entries[key] = &window{hits: 1, expiresAt: now.Add(l.window)}
		l.prune(now)
		return true
	}

	if e.hits >= l.limit {
		return false
	}
	e.hits++
	return true
}

// prune drops expired windows so the map does not grow without bound.
func (l *Limiter) prune(now time.Time) {
	for k, e := range l.entries {
		if e.expiresAt.Before(now) {
			delete(l.entries, k)
		}
	}
}
