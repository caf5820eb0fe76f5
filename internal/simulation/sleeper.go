package simulation

import (
	"context"
	"math/rand/v2"
	"time"
)

// Sleeper pauses a worker between iterations so interleavings become visible.
type Sleeper interface {
	Sleep(ctx context.Context, limit time.Duration)
}

// RandomSleeper sleeps for a uniformly random duration in [0, limit).
type RandomSleeper struct{}

func (RandomSleeper) Sleep(ctx context.Context, limit time.Duration) {
	if limit <= 0 {
		return
	}

	timer := time.NewTimer(rand.N(limit))
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type NoSleep struct{}

func (NoSleep) Sleep(context.Context, time.Duration) {}
