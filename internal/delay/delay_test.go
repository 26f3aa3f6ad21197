package delay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWait(t *testing.T) {
	t.Run("zero returns immediately", func(t *testing.T) {
		assert.NoError(t, Wait(context.Background(), 0))
	})

	t.Run("elapses", func(t *testing.T) {
		start := time.Now()
		assert.NoError(t, Wait(context.Background(), 20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("cancelled context wins", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
		assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
	})
}
