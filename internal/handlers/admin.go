package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/catalog"
	"github.com/alextreichler/humbleautos/internal/models"
)

type dashboardResponse struct {
	Stats catalog.DashboardStats `json:"stats"`
	Users []models.User          `json:"users"`
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, c *app.Client) {
	writeJSON(w, http.StatusOK, dashboardResponse{
		Stats: c.Catalog.Stats(),
		Users: c.Auth.Users(),
	})
}

func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request, c *app.Client) {
	var in models.VehicleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	v, err := c.Catalog.AddVehicle(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Vehicle created", "client", c.ID, "vehicle", v.ID)
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request, c *app.Client) {
	var patch models.VehiclePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	v, err := c.Catalog.UpdateVehicle(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Vehicle updated", "client", c.ID, "vehicle", v.ID)
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request, c *app.Client) {
	id := r.PathValue("id")
	if err := c.Catalog.DeleteVehicle(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Vehicle deleted", "client", c.ID, "vehicle", id)
	w.WriteHeader(http.StatusNoContent)
}
