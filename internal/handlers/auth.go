package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/auth"
	"github.com/alextreichler/humbleautos/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, c *app.Client) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := c.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Info("Login failed", "client", c.ID, "email", req.Email, "error", err)
		writeError(w, r, err)
		return
	}
	slog.Info("User logged in", "client", c.ID, "user", user.ID)
	writeJSON(w, http.StatusOK, meResponse{Authenticated: true, User: &user})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, c *app.Client) {
	var req auth.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := c.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("User registered", "client", c.ID, "user", user.ID)
	writeJSON(w, http.StatusCreated, meResponse{Authenticated: true, User: &user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, c *app.Client) {
	if err := c.Auth.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request, c *app.Client) {
	user, ok := c.Auth.Current()
	if !ok {
		writeJSON(w, http.StatusOK, meResponse{})
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Authenticated: true, User: &user})
}

// CSRFToken hands the token to script clients, which echo it back in the
// X-CSRF-Token header.
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	w.Header().Set("X-CSRF-Token", token)
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}
