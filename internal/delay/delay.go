// Package delay stands in for network round trips the demo does not make.
package delay

import (
	"context"
	"time"
)

// Wait blocks for d or until ctx is done, whichever comes first. A
// non-positive d only reports ctx.Err().
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
