package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/humbleautos/internal/store"
)

// Needs a live server: REDIS_ADDR=localhost:6379 go test ./...
func TestStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	s, err := New(addr, "humbleautos-test/"+uuid.NewString()+"/")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, store.UserKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, store.UserKey, []byte(`{"id":"u1"}`)))
	got, err := s.Get(ctx, store.UserKey)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u1"}`, string(got))

	require.NoError(t, s.Delete(ctx, store.UserKey))
	_, err = s.Get(ctx, store.UserKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
