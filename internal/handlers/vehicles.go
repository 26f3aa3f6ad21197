package handlers

import (
	"net/http"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/catalog"
	"github.com/alextreichler/humbleautos/internal/models"
)

type listResponse struct {
	Vehicles []models.Vehicle    `json:"vehicles"`
	Filter   models.FilterOptions `json:"filter"`
	Total    int                  `json:"total"`
}

type vehicleResponse struct {
	Vehicle    models.Vehicle `json:"vehicle"`
	IsFavorite bool           `json:"isFavorite"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListVehicles applies the filter in the query string and returns the
// filtered view. No parameters means the whole collection.
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request, c *app.Client) {
	filtered := c.Catalog.Filter(models.ParseFilterQuery(r.URL.Query()))
	writeJSON(w, http.StatusOK, listResponse{
		Vehicles: filtered,
		Filter:   c.Catalog.CurrentFilter(),
		Total:    len(c.Catalog.List()),
	})
}

func (h *Handler) FeaturedVehicles(w http.ResponseWriter, r *http.Request, c *app.Client) {
	writeJSON(w, http.StatusOK, map[string][]models.Vehicle{"vehicles": c.Catalog.Featured()})
}

func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request, c *app.Client) {
	v, ok := c.Catalog.Get(r.PathValue("id"))
	if !ok {
		writeError(w, r, catalog.ErrNotFound)
		return
	}
	fav, err := c.Catalog.IsFavorite(r.Context(), v.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponse{Vehicle: v, IsFavorite: fav})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request, c *app.Client) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := c.Catalog.AddComment(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request, c *app.Client) {
	v, err := c.Catalog.ToggleLike(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes": v.Likes})
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request, c *app.Client) {
	fav, err := c.Catalog.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": fav})
}

func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request, c *app.Client) {
	if !c.Auth.IsAuthenticated() {
		writeError(w, r, catalog.ErrNotAuthenticated)
		return
	}
	favs, err := c.Catalog.Favorites(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Vehicle{"vehicles": favs})
}

// FilterPresets returns the category, price and year choices for the
// listing filters.
func (h *Handler) FilterPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Filters)
}
