// Package eventbus implements admission control for re-entrant events:
// webhook deliveries, schedule fires, and pipeline advancement signals.
// It deduplicates by event id and applies a per-event-type cooldown
// window so a burst of identical triggers produces one action.
//
// This is the one piece of mutable shared state in the surrounding
// system; a single mutex guards both the id cache and the cooldown
// clocks.
package eventbus

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hiveworks/hive/internal/clock"
)

// defaultCooldown applies to event types without an explicit window.
const defaultCooldown = 30 * time.Second

// seenCapacity bounds the recently seen event id cache.
const seenCapacity = 4096

// Bus decides whether an event should trigger its action.
type Bus struct {
	clk clock.Clock

	mu        sync.Mutex
	seen      *lru.Cache[string, time.Time]
	lastFired map[string]time.Time
	cooldowns map[string]time.Duration
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock overrides the clock used for cooldown windows.
func WithClock(clk clock.Clock) Option {
	return func(b *Bus) { b.clk = clk }
}

// WithCooldown sets the cooldown window for one event type.
func WithCooldown(eventType string, window time.Duration) Option {
	return func(b *Bus) { b.cooldowns[eventType] = window }
}

// New creates an event bus.
func New(opts ...Option) *Bus {
	seen, err := lru.New[string, time.Time](seenCapacity)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}

	b := &Bus{
		clk:       clock.System{},
		seen:      seen,
		lastFired: make(map[string]time.Time),
		cooldowns: make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ShouldTrigger reports whether the event should fire. An event id seen
// before is refused; an event type still inside its cooldown window is
// refused. Callers that act on a true result must follow up with
// RecordTrigger.
func (b *Bus) ShouldTrigger(eventType, eventID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if eventID != "" {
		if _, dup := b.seen.Get(eventID); dup {
			return false
		}
	}

	last, fired := b.lastFired[eventType]
	if !fired {
		return true
	}
	return b.clk.Now().Sub(last) >= b.cooldown(eventType)
}

// RecordTrigger marks the event as fired, starting the type's cooldown
// window and remembering the id for dedup.
func (b *Bus) RecordTrigger(eventType, eventID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clk.Now()
	if eventID != "" {
		b.seen.Add(eventID, now)
	}
	b.lastFired[eventType] = now
}

func (b *Bus) cooldown(eventType string) time.Duration {
	if window, ok := b.cooldowns[eventType]; ok {
		return window
	}
	return defaultCooldown
}
