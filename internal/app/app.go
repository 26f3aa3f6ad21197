// Package app wires the stores together: it opens durable storage, prepares
// the seed and keeps one identity and catalog store pair per client.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alextreichler/humbleautos/internal/auth"
	"github.com/alextreichler/humbleautos/internal/catalog"
	"github.com/alextreichler/humbleautos/internal/config"
	"github.com/alextreichler/humbleautos/internal/models"
	"github.com/alextreichler/humbleautos/internal/seed"
	"github.com/alextreichler/humbleautos/internal/store"
	"github.com/alextreichler/humbleautos/internal/store/boltstore"
	"github.com/alextreichler/humbleautos/internal/store/redisstore"
)

const redisPrefix = "humbleautos:"

// Storage is a store.KV that holds a resource.
type Storage interface {
	store.KV
	io.Closer
}

// OpenStorage opens the backend named by cfg.StorageDriver.
func OpenStorage(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverSQLite:
		db, err := store.NewStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case config.DriverBolt:
		db, err := boltstore.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		return db, nil
	case config.DriverRedis:
		rs, err := redisstore.New(cfg.RedisAddr, redisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Seed is the starting state of every client.
type Seed struct {
	Accounts []auth.Account
	Vehicles []models.Vehicle
}

// LoadSeed reads the demo accounts, hashing plain passwords with cost, and the
// vehicle catalog from seedFile or the built-in one when seedFile is empty.
func LoadSeed(seedFile string, cost int) (*Seed, error) {
	demo, err := seed.Accounts()
	if err != nil {
		return nil, err
	}
	accounts := make([]auth.Account, 0, len(demo))
	for _, a := range demo {
		if a.PasswordHash != "" {
			accounts = append(accounts, auth.Account{User: a.User, PasswordHash: []byte(a.PasswordHash)})
			continue
		}
		acc, err := auth.NewAccount(a.User, a.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.User.Email, err)
		}
		accounts = append(accounts, acc)
	}

	var vehicles []models.Vehicle
	if seedFile != "" {
		vehicles, err = seed.LoadVehicles(seedFile)
	} else {
		vehicles, err = seed.Vehicles()
	}
	if err != nil {
		return nil, err
	}
	return &Seed{Accounts: accounts, Vehicles: vehicles}, nil
}

// Client is the state one browser (or one CLI user) sees.
type Client struct {
	ID      string
	Auth    *auth.Store
	Catalog *catalog.Store

	lastSeen time.Time
}

type Options struct {
	Latency    time.Duration
	BcryptCost int
	Now        func() time.Time
}

// Registry hands out clients by id, building each from the seed on first use.
// Durable storage is shared and namespaced per client.
type Registry struct {
	kv   store.KV
	seed *Seed
	opts Options

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(kv store.KV, s *Seed, opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		kv:      kv,
		seed:    s,
		opts:    opts,
		clients: make(map[string]*Client),
	}
}

// Client returns the client for id, creating it when needed.
func (r *Registry) Client(ctx context.Context, id string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Now()
	if c, ok := r.clients[id]; ok {
		c.lastSeen = now
		return c
	}
	c := NewClient(ctx, id, store.Namespace(r.kv, store.ClientPrefix(id)), r.seed, r.opts)
	c.lastSeen = now
	r.clients[id] = c
	return c
}

// NewClient builds a client directly on kv.
func NewClient(ctx context.Context, id string, kv store.KV, s *Seed, opts Options) *Client {
	identity := auth.New(ctx, kv, s.Accounts, auth.Options{
		Latency:    opts.Latency,
		BcryptCost: opts.BcryptCost,
		Now:        opts.Now,
	})
	return &Client{
		ID:   id,
		Auth: identity,
		Catalog: catalog.New(kv, identity, s.Vehicles, catalog.Options{
			Latency: opts.Latency,
			Now:     opts.Now,
		}),
	}
}

// Sweep drops clients idle for longer than maxIdle and returns how many went.
// Their durable storage is kept, so a returning client gets its session and
// favorites back on a fresh copy of the catalog.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Now()
	removed := 0
	for id, c := range r.clients {
		if now.Sub(c.lastSeen) > maxIdle {
			delete(r.clients, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
