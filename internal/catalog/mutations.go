package catalog

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/alextreichler/humbleautos/internal/delay"
	"github.com/alextreichler/humbleautos/internal/models"
)

const (
	minCommentLength = 3
	maxCommentLength = 500
)

// PlaceholderImages are attached to every vehicle created through AddVehicle.
var PlaceholderImages = []string{
	"https://images.pexels.com/photos/3802510/pexels-photo-3802510.jpeg",
	"https://images.pexels.com/photos/3802511/pexels-photo-3802511.jpeg",
	"https://images.pexels.com/photos/3802512/pexels-photo-3802512.jpeg",
}

// AddComment appends a comment by the signed-in user to a vehicle.
func (s *Store) AddComment(ctx context.Context, vehicleID, text string) (models.Comment, error) {
	user, ok := s.session.Current()
	if !ok {
		return models.Comment{}, ErrNotAuthenticated
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(text)); {
	case n < minCommentLength:
		return models.Comment{}, ErrTextTooShort
	case n > maxCommentLength:
		return models.Comment{}, ErrTextTooLong
	}
	if err := delay.Wait(ctx, s.opts.Latency); err != nil {
		return models.Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.findLocked(vehicleID)
	if v == nil {
		return models.Comment{}, ErrNotFound
	}
	c := models.Comment{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Content:   text,
		CreatedAt: s.opts.Now().UTC(),
	}
	v.Comments = append(v.Comments, c)
	s.refreshLocked()
	return c, nil
}

// ToggleLike bumps the like counter. It never decrements.
func (s *Store) ToggleLike(ctx context.Context, vehicleID string) (models.Vehicle, error) {
	if _, ok := s.session.Current(); !ok {
		return models.Vehicle{}, ErrNotAuthenticated
	}
	if err := delay.Wait(ctx, s.opts.Latency); err != nil {
		return models.Vehicle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.findLocked(vehicleID)
	if v == nil {
		return models.Vehicle{}, ErrNotFound
	}
	v.Likes++
	return v.Clone(), nil
}

// ToggleFavorite adds or removes a vehicle from the signed-in user's
// favorites and persists the list. It reports whether the vehicle is a
// favorite afterwards.
func (s *Store) ToggleFavorite(ctx context.Context, vehicleID string) (bool, error) {
	if _, ok := s.session.Current(); !ok {
		return false, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncFavoritesLocked(ctx); err != nil {
		return false, err
	}
	prev := s.favIDs
	var now bool
	if i := slices.Index(s.favIDs, vehicleID); i >= 0 {
		s.favIDs = slices.Delete(slices.Clone(s.favIDs), i, i+1)
	} else {
		if s.findLocked(vehicleID) == nil {
			return false, ErrNotFound
		}
		s.favIDs = append(slices.Clone(s.favIDs), vehicleID)
		now = true
	}
	if err := s.saveFavoritesLocked(ctx); err != nil {
		s.favIDs = prev
		return false, err
	}
	return now, nil
}

// AddVehicle creates a listing. Only admins may call it.
func (s *Store) AddVehicle(ctx context.Context, in models.VehicleInput) (models.Vehicle, error) {
	if !s.isAdmin() {
		return models.Vehicle{}, ErrNotAuthorized
	}
	v := models.Vehicle{
		Name:           strings.TrimSpace(in.Name),
		Make:           strings.TrimSpace(in.Make),
		Model:          strings.TrimSpace(in.Model),
		Year:           in.Year,
		Price:          in.Price,
		Category:       in.Category,
		Rating:         in.Rating,
		Images:         slices.Clone(PlaceholderImages),
		Description:    strings.TrimSpace(in.Description),
		Features:       cleanFeatures(in.Features),
		Specifications: in.Specifications,
		Comments:       []models.Comment{},
		IsFeatured:     in.IsFeatured,
	}
	if err := validateVehicle(&v); err != nil {
		return models.Vehicle{}, err
	}
	if err := delay.Wait(ctx, s.opts.Latency); err != nil {
		return models.Vehicle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now().UTC()
	v.ID = uuid.NewString()
	v.CreatedAt, v.UpdatedAt = now, now
	stored := v.Clone()
	s.vehicles = append(s.vehicles, &stored)
	s.refreshLocked()
	return v, nil
}

// UpdateVehicle merges patch into the vehicle and validates the fields it
// sets.
func (s *Store) UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) (models.Vehicle, error) {
	if !s.isAdmin() {
		return models.Vehicle{}, ErrNotAuthorized
	}
	if err := delay.Wait(ctx, s.opts.Latency); err != nil {
		return models.Vehicle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.findLocked(id)
	if v == nil {
		return models.Vehicle{}, ErrNotFound
	}
	merged := v.Clone()
	patch.Apply(&merged)
	if patch.Features != nil {
		merged.Features = cleanFeatures(merged.Features)
	}
	if err := validatePatch(&merged, patch); err != nil {
		return models.Vehicle{}, err
	}
	merged.ID = v.ID
	merged.UpdatedAt = s.opts.Now().UTC()
	*v = merged
	s.refreshLocked()
	return v.Clone(), nil
}

// DeleteVehicle removes a listing from every view. Deleting an unknown id
// does nothing.
func (s *Store) DeleteVehicle(ctx context.Context, id string) error {
	if !s.isAdmin() {
		return ErrNotAuthorized
	}
	if err := delay.Wait(ctx, s.opts.Latency); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.vehicles = slices.DeleteFunc(s.vehicles, func(v *models.Vehicle) bool { return v.ID == id })
	// the stored list catches up on the next ToggleFavorite
	s.favIDs = slices.DeleteFunc(slices.Clone(s.favIDs), func(fav string) bool { return fav == id })
	s.refreshLocked()
	return nil
}

func (s *Store) isAdmin() bool {
	u, ok := s.session.Current()
	return ok && u.IsAdmin
}

func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
