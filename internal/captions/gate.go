package captions

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Gate bounds the number of simultaneous upstream fetches. After a slot is
// granted it imposes a short randomized settle delay so queued callers do
// not hit the upstream in lock-step once capacity frees up.
type Gate struct {
	slots        chan struct{}
	settleMin    time.Duration
	settleSpread time.Duration
}

// NewGate creates a gate admitting at most capacity concurrent holders.
// Capacity below 1 is clamped to 1 (fully serialized upstream access).
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{
		slots:        make(chan struct{}, capacity),
		settleMin:    300 * time.Millisecond,
		settleSpread: 400 * time.Millisecond,
	}
}

// Acquire blocks until a slot is free or ctx is done. The returned slot must
// be released exactly once; Release is safe to call more than once.
func (g *Gate) Acquire(ctx context.Context) (*Slot, error) {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	slot := &Slot{gate: g}

	settle := g.settleMin
	if g.settleSpread > 0 {
		settle += time.Duration(rand.Int63n(int64(g.settleSpread))) //nolint:gosec // non-cryptographic use
	}
	if settle > 0 {
		timer := time.NewTimer(settle)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			slot.Release()
			return nil, ctx.Err()
		}
	}
	return slot, nil
}

// Slot is an admission token. Release returns it to the gate.
type Slot struct {
	gate *Gate
	once sync.Once
}

// Release frees the slot. Idempotent.
func (s *Slot) Release() {
	s.once.Do(func() {
		<-s.gate.slots
	})
}
