package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/repository"
)

// SettingsHandler exposes the single-row site settings: a public read of
// the maintenance flag and an admin-only write.
type SettingsHandler struct {
	Settings *repository.SettingsRepo
}

func NewSettingsHandler(settings *repository.SettingsRepo) *SettingsHandler {
	return &SettingsHandler{Settings: settings}
}

// Status handles GET /api/settings/status. The row may not exist on a
// fresh database; that reads as maintenance off rather than an error.
func (h *SettingsHandler) Status(c echo.Context) error {
	s, err := h.Settings.Get(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"maintenance_mode": false, "updated_at": nil})
		}
		c.Logger().Errorf("fetch site settings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch site settings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"maintenance_mode": s.MaintenanceMode,
		"updated_at":       s.UpdatedAt,
	})
}

// UpdateStatus handles PUT /api/settings/status (admin only). The flag
// must be an explicit JSON boolean.
func (h *SettingsHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		MaintenanceMode *bool `json:"maintenance_mode"`
	}
	if err := c.Bind(&req); err != nil || req.MaintenanceMode == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid maintenance_mode value. Must be true or false."})
	}
	s, err := h.Settings.SetMaintenanceMode(c.Request().Context(), *req.MaintenanceMode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Site settings not found. Initialization might be needed."})
		}
		c.Logger().Errorf("update maintenance mode: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update maintenance mode"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Maintenance mode updated successfully.",
		"maintenance_mode": s.MaintenanceMode,
		"updated_at":       s.UpdatedAt,
	})
}
