package model

import "time"

// SiteSettings mirrors the single-row `site_settings` table (id = 1).
type SiteSettings struct {
	ID              uint64     // site_settings.id
	MaintenanceMode bool       // site_settings.maintenance_mode
	UpdatedAt       *time.Time // site_settings.updated_at (nullable)
}
