package chat

import (
	"context"
	"time"
)

// SleepPauser is the production Pauser: a context-aware sleep.
type SleepPauser struct{}

func (SleepPauser) Pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// NopPauser skips all delays. Used in tests.
type NopPauser struct{}

func (NopPauser) Pause(ctx context.Context, d time.Duration) {}
