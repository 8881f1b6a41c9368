package crawl

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// RandomDelay pauses for a duration drawn uniformly from [min, max] before
// each detail fetch, to avoid overloading the source.
type RandomDelay struct {
	min time.Duration
	max time.Duration
}

// NewRandomDelay builds the production delay policy. A max below min is
// clamped to min.
func NewRandomDelay(min, max time.Duration) *RandomDelay {
	if max < min {
		max = min
	}
	return &RandomDelay{min: min, max: max}
}

// Wait blocks for the drawn delay or until ctx is canceled.
func (d *RandomDelay) Wait(ctx context.Context) {
	delay := d.min
	if span := d.max - d.min; span > 0 {
		delay += randomJitter(span)
	}
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

// NoDelay skips the politeness pause entirely. Tests use it so runs finish
// without real wall-clock delay.
type NoDelay struct{}

// Wait returns immediately.
func (NoDelay) Wait(context.Context) {}
