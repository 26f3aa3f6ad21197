// Package catalog owns the vehicle collection of one client and every view
// derived from it: the filtered listing, the featured shelf and the signed-in
// user's favorites.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/alextreichler/humbleautos/internal/models"
	"github.com/alextreichler/humbleautos/internal/store"
)

var (
	ErrNotAuthenticated = errors.New("you must be logged in")
	ErrNotAuthorized    = errors.New("admin access only")
	ErrNotFound         = errors.New("vehicle not found")
	ErrTextTooShort     = errors.New("comment must be at least 3 characters")
	ErrTextTooLong      = errors.New("comment cannot exceed 500 characters")
)

// Session reports who is signed in. *auth.Store satisfies it.
type Session interface {
	Current() (models.User, bool)
}

type Options struct {
	// Latency is waited out before a mutation is applied.
	Latency time.Duration
	Now     func() time.Time
}

type Store struct {
	kv      store.KV
	session Session
	opts    Options

	mu       sync.RWMutex
	vehicles []*models.Vehicle
	filter   models.FilterOptions
	filtered []*models.Vehicle
	featured []*models.Vehicle

	// favorites of favOwner; reloaded whenever the session user changes
	favOwner string
	favIDs   []string
}

// New seeds the store with a private copy of vehicles.
func New(kv store.KV, session Session, vehicles []models.Vehicle, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		kv:       kv,
		session:  session,
		opts:     opts,
		vehicles: make([]*models.Vehicle, 0, len(vehicles)),
	}
	for _, v := range vehicles {
		c := v.Clone()
		s.vehicles = append(s.vehicles, &c)
	}
	s.refreshLocked()
	return s
}

// List returns the full collection in insertion order.
func (s *Store) List() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.vehicles)
}

func (s *Store) Get(id string) (models.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v := s.findLocked(id); v != nil {
		return v.Clone(), true
	}
	return models.Vehicle{}, false
}

// Filter makes opts the current filter and returns the new filtered view.
// Empty options reset the view to the whole collection.
func (s *Store) Filter(opts models.FilterOptions) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = cloneFilter(opts)
	s.refreshLocked()
	return snapshot(s.filtered)
}

// Search replaces only the search term of the current filter.
func (s *Store) Search(query string) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Search = query
	s.refreshLocked()
	return snapshot(s.filtered)
}

func (s *Store) CurrentFilter() models.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFilter(s.filter)
}

func (s *Store) Filtered() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.filtered)
}

func (s *Store) Featured() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.featured)
}

// Favorites returns the signed-in user's favorite vehicles, or nothing when
// signed out.
func (s *Store) Favorites(ctx context.Context) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncFavoritesLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, 0, len(s.favIDs))
	for _, id := range s.favIDs {
		if v := s.findLocked(id); v != nil {
			out = append(out, v.Clone())
		}
	}
	return out, nil
}

// IsFavorite reports whether the signed-in user has favorited id.
func (s *Store) IsFavorite(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncFavoritesLocked(ctx); err != nil {
		return false, err
	}
	return slices.Contains(s.favIDs, id), nil
}

// syncFavoritesLocked loads the favorites of whoever is signed in now and
// drops them when nobody is.
func (s *Store) syncFavoritesLocked(ctx context.Context) error {
	user, ok := s.session.Current()
	if !ok {
		s.favOwner, s.favIDs = "", nil
		return nil
	}
	if user.ID == s.favOwner {
		return nil
	}

	data, err := s.kv.Get(ctx, store.FavoritesKey(user.ID))
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.favOwner, s.favIDs = user.ID, nil
		return nil
	case err != nil:
		return fmt.Errorf("load favorites: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	s.favOwner, s.favIDs = user.ID, ids
	return nil
}

func (s *Store) saveFavoritesLocked(ctx context.Context) error {
	ids := s.favIDs
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, store.FavoritesKey(s.favOwner), data); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

// refreshLocked recomputes the filtered and featured views.
func (s *Store) refreshLocked() {
	s.filtered = s.filtered[:0]
	s.featured = s.featured[:0]
	for _, v := range s.vehicles {
		if s.filter.Matches(v) {
			s.filtered = append(s.filtered, v)
		}
		if v.IsFeatured {
			s.featured = append(s.featured, v)
		}
	}
}

func (s *Store) findLocked(id string) *models.Vehicle {
	for _, v := range s.vehicles {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func snapshot(vs []*models.Vehicle) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Clone())
	}
	return out
}

func cloneFilter(f models.FilterOptions) models.FilterOptions {
	c := f
	if f.MinPrice != nil {
		n := *f.MinPrice
		c.MinPrice = &n
	}
	if f.MaxPrice != nil {
		n := *f.MaxPrice
		c.MaxPrice = &n
	}
	if f.MinYear != nil {
		n := *f.MinYear
		c.MinYear = &n
	}
	if f.MaxYear != nil {
		n := *f.MaxYear
		c.MaxYear = &n
	}
	return c
}
