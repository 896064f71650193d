// Package loginguard counts failed logins per username and client address
// and locks further attempts once a limit is reached within a window.
package loginguard

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Guard tracks failed login attempts
type Guard interface {
	// Allowed reports whether key may attempt another login
	Allowed(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt and returns the failures counted in the current window
	Fail(ctx context.Context, key string) (int64, error)
	// Reset forgets the failures of key after a successful login
	Reset(ctx context.Context, key string) error
}

// Key builds the counter key of a login attempt
func Key(username, clientIP string) string {
	return "login:fail:" + strings.ToLower(strings.TrimSpace(username)) + ":" + clientIP
}

type memoryEntry struct {
	count   int64
	expires time.Time
}

// MemoryGuard keeps counters in process. It is used when Redis is not configured.
type MemoryGuard struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	maxAttempts int64
	window      time.Duration
	now         func() time.Time
}

// NewMemoryGuard creates an in-process guard
func NewMemoryGuard(maxAttempts int, window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		entries:     make(map[string]memoryEntry),
		maxAttempts: int64(maxAttempts),
		window:      window,
		now:         time.Now,
	}
}

func (g *MemoryGuard) current(key string) memoryEntry {
	e, ok := g.entries[key]
	if ok && !g.now().Before(e.expires) {
		delete(g.entries, key)
		return memoryEntry{}
	}
	return e
}

// Allowed implements Guard
func (g *MemoryGuard) Allowed(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current(key).count < g.maxAttempts, nil
}

// Fail implements Guard
func (g *MemoryGuard) Fail(_ context.Context, key string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e := g.current(key)
	if e.count == 0 {
		e.expires = g.now().Add(g.window)
	}
	e.count++
	g.entries[key] = e
	return e.count, nil
}

// Reset implements Guard
func (g *MemoryGuard) Reset(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}
