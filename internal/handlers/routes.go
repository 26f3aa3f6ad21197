package handlers

import "net/http"

// Routes registers the API on a new mux. Login and registration go through
// limiter.
func (h *Handler) Routes(limiter *RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()

	// Catalog
	mux.HandleFunc("GET /api/vehicles", h.withClient(h.ListVehicles))
	mux.HandleFunc("GET /api/vehicles/featured", h.withClient(h.FeaturedVehicles))
	mux.HandleFunc("GET /api/vehicles/{id}", h.withClient(h.GetVehicle))
	mux.HandleFunc("POST /api/vehicles/{id}/comments", h.withClient(h.AddComment))
	mux.HandleFunc("POST /api/vehicles/{id}/like", h.withClient(h.ToggleLike))
	mux.HandleFunc("POST /api/vehicles/{id}/favorite", h.withClient(h.ToggleFavorite))
	mux.HandleFunc("GET /api/favorites", h.withClient(h.Favorites))
	mux.HandleFunc("GET /api/filters", h.FilterPresets)

	// Session
	mux.HandleFunc("POST /api/login", limiter.Middleware(h.withClient(h.Login)))
	mux.HandleFunc("POST /api/register", limiter.Middleware(h.withClient(h.Register)))
	mux.HandleFunc("POST /api/logout", h.withClient(h.Logout))
	mux.HandleFunc("GET /api/me", h.withClient(h.Me))
	mux.HandleFunc("GET /api/csrf", h.CSRFToken)

	// Admin
	mux.HandleFunc("GET /api/admin/stats", h.AdminMiddleware(h.Dashboard))
	mux.HandleFunc("POST /api/admin/vehicles", h.AdminMiddleware(h.CreateVehicle))
	mux.HandleFunc("PATCH /api/admin/vehicles/{id}", h.AdminMiddleware(h.UpdateVehicle))
	mux.HandleFunc("DELETE /api/admin/vehicles/{id}", h.AdminMiddleware(h.DeleteVehicle))

	return mux
}
