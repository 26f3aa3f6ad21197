// Package handlers serves the showroom over a JSON API. Every browser is one
// client, identified by a cookie session, with its own identity and catalog
// stores.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/auth"
	"github.com/alextreichler/humbleautos/internal/catalog"
	"github.com/alextreichler/humbleautos/internal/models"
	"github.com/alextreichler/humbleautos/internal/seed"
)

const (
	sessionName    = "humbleautos-session"
	clientIDKey    = "client_id"
	maxRequestBody = 1 << 20
)

type Handler struct {
	Registry     *app.Registry
	SessionStore sessions.Store
	Filters      seed.FilterPresets
}

type clientHandlerFunc func(w http.ResponseWriter, r *http.Request, c *app.Client)

// withClient resolves the caller's client from the session cookie, issuing a
// new client id on first contact.
func (h *Handler) withClient(next clientHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.SessionStore.Get(r, sessionName)
		if err != nil {
			// a cookie signed with an old key; start over
			slog.Debug("Discarding unreadable session", "error", err)
		}
		id, _ := session.Values[clientIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			session.Values[clientIDKey] = id
			if err := session.Save(r, w); err != nil {
				slog.Error("Failed to save session", "error", err)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
				return
			}
		}
		next(w, r, h.Registry.Client(r.Context(), id))
	}
}

// AdminMiddleware lets only signed-in admins through.
func (h *Handler) AdminMiddleware(next clientHandlerFunc) http.HandlerFunc {
	return h.withClient(func(w http.ResponseWriter, r *http.Request, c *app.Client) {
		if !c.Auth.IsAuthenticated() {
			writeError(w, r, catalog.ErrNotAuthenticated)
			return
		}
		if !c.Auth.IsAdmin() {
			writeError(w, r, catalog.ErrNotAuthorized)
			return
		}
		next(w, r, c)
	})
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps store errors onto status codes. Anything unexpected is
// logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Please correct the highlighted fields", Fields: verr.Fields})
	case errors.Is(err, catalog.ErrTextTooShort), errors.Is(err, catalog.ErrTextTooLong):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotAuthorized):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailInUse):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("Request abandoned", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Request timed out"})
	case errors.Is(err, auth.ErrUserNotFound):
		slog.Error("Credential table out of sync with user table", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
	default:
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return false
	}
	return true
}
