package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/maxwang36/merisols-backend/internal/model"
)

// settingsRowID is the id of the single site_settings row.
const settingsRowID = 1

// SettingsRepo manages the single-row `site_settings` table.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// Get returns the current site settings. A missing row means the table
// was never initialized; callers fall back to defaults.
func (r *SettingsRepo) Get(ctx context.Context) (model.SiteSettings, error) {
	var s model.SiteSettings
	var updated sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, maintenance_mode, updated_at FROM site_settings WHERE id=? LIMIT 1",
		settingsRowID).Scan(&s.ID, &s.MaintenanceMode, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SiteSettings{}, ErrNotFound
	}
	if err != nil {
		return model.SiteSettings{}, err
	}
	if updated.Valid {
		t := updated.Time
		s.UpdatedAt = &t
	}
	return s, nil
}

// SetMaintenanceMode flips the maintenance flag and returns the updated
// settings row.
func (r *SettingsRepo) SetMaintenanceMode(ctx context.Context, on bool) (model.SiteSettings, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE site_settings SET maintenance_mode=?, updated_at=NOW() WHERE id=?",
		on, settingsRowID)
	if err != nil {
		return model.SiteSettings{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// A no-op write still matches the row unless it never existed.
		if _, getErr := r.Get(ctx); getErr != nil {
			return model.SiteSettings{}, getErr
		}
	}
	return r.Get(ctx)
}
