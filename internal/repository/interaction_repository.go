package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/maxwang36/merisols-backend/internal/model"
)

// InteractionRepo manages the append-only `interaction` table.
type InteractionRepo struct{ DB *sql.DB }

func NewInteractionRepo(db *sql.DB) *InteractionRepo { return &InteractionRepo{DB: db} }

// ViewIdentity is the dedup key for a recorded view: a resolved user id
// or, for guests, an anonymous device id. Exactly one must be set.
type ViewIdentity struct {
	UserID   string
	DeviceID string
}

// HasRecentView reports whether a view for the same article/identity
// pair was recorded inside the trailing window ending at now. This is
// the check half of the documented best-effort check-then-insert dedup;
// concurrent identical requests can both pass it.
func (r *InteractionRepo) HasRecentView(ctx context.Context, articleID uint64, id ViewIdentity, window time.Duration) (bool, error) {
	since := time.Now().UTC().Add(-window)
	var (
		query = "SELECT COUNT(*) FROM interaction WHERE article_id=? AND interaction_type=? AND interaction_date>=?"
		args  = []any{articleID, model.InteractionTypeView, since}
	)
	if id.UserID != "" {
		query += " AND user_id=?"
		args = append(args, id.UserID)
	} else {
		query += " AND device_id=?"
		args = append(args, id.DeviceID)
	}
	var n int64
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertView appends a view interaction for the article and identity.
func (r *InteractionRepo) InsertView(ctx context.Context, articleID uint64, id ViewIdentity) error {
	var userID, deviceID sql.NullString
	if id.UserID != "" {
		userID = sql.NullString{String: id.UserID, Valid: true}
	}
	if id.DeviceID != "" {
		deviceID = sql.NullString{String: id.DeviceID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO interaction (article_id, user_id, device_id, interaction_type, interaction_date) VALUES (?,?,?,?,?)",
		articleID, userID, deviceID, model.InteractionTypeView, time.Now().UTC())
	return err
}

// CountViews returns the total recorded views for an article.
func (r *InteractionRepo) CountViews(ctx context.Context, articleID uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM interaction WHERE article_id=? AND interaction_type=?",
		articleID, model.InteractionTypeView).Scan(&n)
	return n, err
}

// DeleteByArticle removes every interaction referencing an article.
// Part of the cascading article delete.
func (r *InteractionRepo) DeleteByArticle(ctx context.Context, articleID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM interaction WHERE article_id=?", articleID)
	return err
}
