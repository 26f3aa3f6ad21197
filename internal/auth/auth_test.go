package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alextreichler/humbleautos/internal/models"
	"github.com/alextreichler/humbleautos/internal/store"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func testAccounts(t *testing.T) []Account {
	t.Helper()
	admin, err := NewAccount(models.User{
		ID: "u1", Email: "admin@humbleautos.com", Username: "admin", IsAdmin: true,
	}, "admin123", bcrypt.MinCost)
	require.NoError(t, err)
	regular, err := NewAccount(models.User{
		ID: "u2", Email: "user@example.com", Username: "regularUser",
	}, "user123", bcrypt.MinCost)
	require.NoError(t, err)
	return []Account{admin, regular}
}

func newTestStore(t *testing.T, kv store.KV) *Store {
	t.Helper()
	return New(context.Background(), kv, testAccounts(t), Options{
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return fixedNow },
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists session", func(t *testing.T) {
		kv := store.NewMemory()
		s := newTestStore(t, kv)
		assert.False(t, s.IsAuthenticated())

		u, err := s.Login(ctx, "admin@humbleautos.com", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.True(t, s.IsAdmin())

		raw, err := kv.Get(ctx, store.UserKey)
		require.NoError(t, err)
		var stored models.User
		require.NoError(t, json.Unmarshal(raw, &stored))
		assert.Equal(t, u, stored)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := newTestStore(t, store.NewMemory())
		_, err := s.Login(ctx, "admin@humbleautos.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("unknown email", func(t *testing.T) {
		s := newTestStore(t, store.NewMemory())
		_, err := s.Login(ctx, "ghost@example.com", "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("credential without user record", func(t *testing.T) {
		s := newTestStore(t, store.NewMemory())
		hash, err := bcrypt.GenerateFromPassword([]byte("orphan1"), bcrypt.MinCost)
		require.NoError(t, err)
		s.credentials["orphan@example.com"] = hash

		_, err = s.Login(ctx, "orphan@example.com", "orphan1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("repeated login converges", func(t *testing.T) {
		s := newTestStore(t, store.NewMemory())
		first, err := s.Login(ctx, "user@example.com", "user123")
		require.NoError(t, err)
		second, err := s.Login(ctx, "user@example.com", "user123")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Len(t, s.Users(), 2)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates non-admin session", func(t *testing.T) {
		kv := store.NewMemory()
		s := newTestStore(t, kv)

		u, err := s.Register(ctx, RegisterInput{
			Username: "alice", Email: "alice@x.com", Password: "pw123456", ConfirmPassword: "pw123456",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.False(t, u.IsAdmin)
		assert.Equal(t, fixedNow, u.CreatedAt)

		current, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, u, current)
		assert.Len(t, s.Users(), 3)

		// the new credentials work after logging out
		require.NoError(t, s.Logout(ctx))
		_, err = s.Login(ctx, "alice@x.com", "pw123456")
		assert.NoError(t, err)
	})

	t.Run("email in use", func(t *testing.T) {
		s := newTestStore(t, store.NewMemory())
		_, err := s.Register(ctx, RegisterInput{
			Username: "imposter", Email: "admin@humbleautos.com", Password: "secret1", ConfirmPassword: "secret1",
		})
		assert.ErrorIs(t, err, ErrEmailInUse)
		assert.Len(t, s.Users(), 2)
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("retry does not append twice", func(t *testing.T) {
		s := newTestStore(t, store.NewMemory())
		in := RegisterInput{Username: "bob", Email: "bob@x.com", Password: "secret1", ConfirmPassword: "secret1"}
		_, err := s.Register(ctx, in)
		require.NoError(t, err)
		_, err = s.Register(ctx, in)
		assert.ErrorIs(t, err, ErrEmailInUse)
		assert.Len(t, s.Users(), 3)
	})

	t.Run("field validation", func(t *testing.T) {
		s := newTestStore(t, store.NewMemory())
		_, err := s.Register(ctx, RegisterInput{
			Username: "al", Email: "not-an-email", Password: "123", ConfirmPassword: "321",
		})
		require.ErrorIs(t, err, models.ErrValidationFailed)

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "username")
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "password")
		assert.Contains(t, verr.Fields, "confirmPassword")
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := newTestStore(t, kv)

	_, err := s.Login(ctx, "user@example.com", "user123")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())

	_, err = kv.Get(ctx, store.UserKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// logging out twice is harmless
	assert.NoError(t, s.Logout(ctx))
}

func TestRestoreSession(t *testing.T) {
	ctx := context.Background()

	t.Run("valid stored user", func(t *testing.T) {
		kv := store.NewMemory()
		first := newTestStore(t, kv)
		_, err := first.Login(ctx, "user@example.com", "user123")
		require.NoError(t, err)

		second := newTestStore(t, kv)
		u, ok := second.Current()
		require.True(t, ok)
		assert.Equal(t, "u2", u.ID)
	})

	for name, payload := range map[string]string{
		"not json":      "{oops",
		"wrong shape":   `{"hello":"world"}`,
		"missing email": `{"id":"u9"}`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := store.NewMemory()
			require.NoError(t, kv.Set(ctx, store.UserKey, []byte(payload)))

			s := newTestStore(t, kv)
			assert.False(t, s.IsAuthenticated())
			_, err := kv.Get(ctx, store.UserKey)
			assert.ErrorIs(t, err, store.ErrNotFound, "bad payload is discarded")
		})
	}
}

func TestLatencyHonorsContext(t *testing.T) {
	s := New(context.Background(), store.NewMemory(), testAccounts(t), Options{
		Latency:    time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Login(ctx, "admin@humbleautos.com", "admin123")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.IsAuthenticated())
}
