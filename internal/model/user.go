package model

import "time"

// Role enumerates the account roles stored in users.role. Handlers and
// middleware compare against these constants instead of raw strings so a
// typo cannot silently open or close an endpoint.
type Role string

const (
	RoleUser       Role = "user"
	RoleJournalist Role = "journalist"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleJournalist, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// BanStatus enumerates the moderation states stored in users.ban_status.
type BanStatus string

const (
	BanStatusActive     BanStatus = "active"
	BanStatusSoftBanned BanStatus = "soft_banned"
	BanStatusHardBanned BanStatus = "hard_banned"
)

// User mirrors the `users` table. The user_id primary key is an opaque
// UUID; auth_id is the identity provider's subject for the account.
// BanEndDate is advisory only: nothing in this service lifts a ban when
// the date passes.
type User struct {
	ID           string     // users.user_id
	AuthID       string     // users.auth_id
	DisplayName  string     // users.display_name
	Email        string     // users.email
	PasswordHash string     // users.password_hash (set for admin-provisioned accounts)
	Role         Role       // users.role
	BanStatus    BanStatus  // users.ban_status
	BanEndDate   *time.Time // users.ban_end_date (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
