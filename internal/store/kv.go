package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// KV is the durable client storage used for sessions and favorites.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// UserKey holds the serialized session user.
const UserKey = "user"

// FavoritesKey is where the favorite vehicle ids of userID are kept.
func FavoritesKey(userID string) string {
	return "favorites_" + userID
}

// ClientPrefix scopes all keys of one client (one browser) in a shared backend.
func ClientPrefix(clientID string) string {
	return "client/" + clientID + "/"
}

type namespaced struct {
	kv     KV
	prefix string
}

// Namespace returns a KV that transparently prefixes every key.
func Namespace(kv KV, prefix string) KV {
	if prefix == "" {
		return kv
	}
	if ns, ok := kv.(*namespaced); ok {
		return &namespaced{kv: ns.kv, prefix: ns.prefix + prefix}
	}
	return &namespaced{kv: kv, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.kv.Delete(ctx, n.prefix+key)
}
