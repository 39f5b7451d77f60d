// Package session enforces the per-session question quota.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultLimit  = 20
	DefaultWindow = time.Hour
)

var ErrInvalidID = errors.New("session id is required")

// Counter is the persisted per-session state. It resets once Started is
// older than the guard window.
type Counter struct {
	Count   int       `json:"count"`
	Started time.Time `json:"started"`
}

func (c Counter) expired(now time.Time, window time.Duration) bool {
	return c.Started.IsZero() || !now.Before(c.Started.Add(window))
}

// Store persists counters. Increment must be atomic per id.
type Store interface {
	Get(ctx context.Context, id string) (Counter, bool, error)
	Increment(ctx context.Context, id string, now time.Time, window time.Duration) (Counter, error)
}

type Status struct {
	ID        string
	Used      int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (s Status) Allowed() bool {
	return s.Remaining > 0
}

// RetryAfter is the time left until the window resets, never negative.
func (s Status) RetryAfter(now time.Time) time.Duration {
	if d := s.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

type Guard struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewGuard(store Store, limit int, window time.Duration) *Guard {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{store: store, limit: limit, window: window, now: time.Now}
}

func (g *Guard) Limit() int { return g.limit }

func (g *Guard) Window() time.Duration { return g.window }

// Check reports the quota without consuming it.
func (g *Guard) Check(ctx context.Context, id string) (Status, error) {
	if id == "" {
		return Status{}, ErrInvalidID
	}
	now := g.now()
	c, ok, err := g.store.Get(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	if !ok || c.expired(now, g.window) {
		c = Counter{Started: now}
	}
	return g.status(id, c), nil
}

// Record consumes one question from the quota.
func (g *Guard) Record(ctx context.Context, id string) (Status, error) {
	if id == "" {
		return Status{}, ErrInvalidID
	}
	c, err := g.store.Increment(ctx, id, g.now(), g.window)
	if err != nil {
		return Status{}, fmt.Errorf("failed to record session %s: %w", id, err)
	}
	return g.status(id, c), nil
}

func (g *Guard) status(id string, c Counter) Status {
	remaining := g.limit - c.Count
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		ID:        id,
		Used:      c.Count,
		Limit:     g.limit,
		Remaining: remaining,
		ResetAt:   c.Started.Add(g.window),
	}
}
