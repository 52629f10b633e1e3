package credits

import (
	"context"
	"time"
)

// DelayPolicy paces sequential bulk requests. The ledger API has no
// batch endpoint, so bulk operations are repeated single calls; the
// policy is injectable so pacing can later be swapped for real batching
// without touching call sites.
type DelayPolicy interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits a constant interval between calls.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoDelay skips pacing entirely; used in tests.
type NoDelay struct{}

func (NoDelay) Wait(context.Context) error { return nil }
