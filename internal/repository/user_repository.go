package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/maxwang36/merisols-backend/internal/model"
)

const userColumns = "user_id,auth_id,display_name,email,password_hash,role,ban_status,ban_end_date,created_at,updated_at"

// UserRepo manages persistence for the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var banEnd sql.NullTime
	err := row.Scan(&u.ID, &u.AuthID, &u.DisplayName, &u.Email, &u.PasswordHash,
		&u.Role, &u.BanStatus, &banEnd, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if banEnd.Valid {
		t := banEnd.Time
		u.BanEndDate = &t
	}
	return u, nil
}

// GetByID fetches a user by its opaque user_id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id=? LIMIT 1", id))
}

// GetByAuthID fetches the profile provisioned for an identity-provider
// subject. ErrNotFound means the credential is valid but no profile row
// exists for it.
func (r *UserRepo) GetByAuthID(ctx context.Context, authID string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE auth_id=? LIMIT 1", authID))
}

// Create inserts a new profile row. Emails are stored lowercased.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (user_id, auth_id, display_name, email, password_hash, role, ban_status) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.AuthID, u.DisplayName, email, u.PasswordHash, u.Role, model.BanStatusActive)
	if err != nil {
		// MySQL 1062 = duplicate key (email or auth_id unique index).
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes the profile row for an identity-provider subject. Used
// only by the administrative account-removal path, never by moderation.
func (r *UserRepo) Delete(ctx context.Context, authID string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE auth_id=?", authID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserListFilter narrows the moderator/admin user listing. Zero values
// leave the corresponding predicate out of the query.
type UserListFilter struct {
	Role      model.Role
	BanStatus model.BanStatus
}

// List returns users newest-first, optionally filtered by role and ban
// status. The query is assembled with squirrel so optional predicates do
// not turn into string concatenation.
func (r *UserRepo) List(ctx context.Context, f UserListFilter) ([]model.User, error) {
	b := sq.Select("user_id", "auth_id", "display_name", "email", "password_hash",
		"role", "ban_status", "ban_end_date", "created_at", "updated_at").
		From("users").
		OrderBy("created_at DESC")
	if f.Role != "" {
		b = b.Where(sq.Eq{"role": f.Role})
	}
	if f.BanStatus != "" {
		b = b.Where(sq.Eq{"ban_status": f.BanStatus})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var banEnd sql.NullTime
		if err := rows.Scan(&u.ID, &u.AuthID, &u.DisplayName, &u.Email, &u.PasswordHash,
			&u.Role, &u.BanStatus, &banEnd, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if banEnd.Valid {
			t := banEnd.Time
			u.BanEndDate = &t
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserWithFlagStats augments a user row with how much of their content
// is currently sitting in the moderation queues.
type UserWithFlagStats struct {
	User            model.User
	FlaggedComments int64
}

// ListWithFlagStats returns users newest-first together with their
// flagged-comment counts, for the moderator's user policy view.
func (r *UserRepo) ListWithFlagStats(ctx context.Context) ([]UserWithFlagStats, error) {
	query, args, err := sq.Select(
		"u.user_id", "u.auth_id", "u.display_name", "u.email", "u.role",
		"u.ban_status", "u.ban_end_date", "u.created_at", "u.updated_at",
		"COUNT(fc.comment_id) AS flagged_comments").
		From("users u").
		LeftJoin("comment fc ON fc.user_id = u.user_id AND fc.flagged = 1").
		GroupBy("u.user_id").
		OrderBy("u.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserWithFlagStats
	for rows.Next() {
		var s UserWithFlagStats
		var banEnd sql.NullTime
		if err := rows.Scan(&s.User.ID, &s.User.AuthID, &s.User.DisplayName, &s.User.Email,
			&s.User.Role, &s.User.BanStatus, &banEnd, &s.User.CreatedAt, &s.User.UpdatedAt,
			&s.FlaggedComments); err != nil {
			return nil, err
		}
		if banEnd.Valid {
			t := banEnd.Time
			s.User.BanEndDate = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetBanStatus performs the conditional single-row update that guards
// every ban-state transition: the row only changes when its recorded
// ban_status still equals `from`. It returns false when no row matched,
// which callers interpret as a missing user or a stale precondition.
func (r *UserRepo) SetBanStatus(ctx context.Context, id string, from, to model.BanStatus, until *time.Time) (bool, error) {
	var end sql.NullTime
	if until != nil {
		end = sql.NullTime{Time: *until, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET ban_status=?, ban_end_date=?, updated_at=NOW() WHERE user_id=? AND ban_status=?",
		to, end, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
