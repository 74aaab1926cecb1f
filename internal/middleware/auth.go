package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

// Context keys under which the resolved identity is stored for the
// lifetime of one request. Nothing here is persisted.
const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextBanStatus = "ban_status"
)

// ProfileStore resolves a stored profile from the identity provider's
// subject id. Implemented by repository.UserRepo.
type ProfileStore interface {
	GetByAuthID(ctx context.Context, authID string) (model.User, error)
}

// Identity returns middleware that verifies a Bearer access token and
// resolves the caller's stored profile. The token is checked against the
// provider secret (HS256); its subject is the provider's id for the
// account, which is then looked up in the users table. A valid token
// without a provisioned profile is a 403, matching the capability model:
// the credential is real but grants nothing here.
func Identity(secret string, users ProfileStore) echo.MiddlewareFunc {
	return identity(secret, users, true)
}

// OptionalIdentity behaves like Identity but lets unauthenticated
// requests through unresolved. A token that is present but invalid is
// still rejected; silently downgrading a bad credential to guest would
// mask client bugs.
func OptionalIdentity(secret string, users ProfileStore) echo.MiddlewareFunc {
	return identity(secret, users, false)
}

func identity(secret string, users ProfileStore, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				if !required {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: No token provided"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Invalid token"})
			}
			sub, err := tok.Claims.GetSubject()
			if err != nil || sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByAuthID(ctx, sub)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden: User profile not found"})
				}
				c.Logger().Errorf("identity: profile lookup failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not verify user profile"})
			}

			c.Set(ContextUserID, u.ID)
			c.Set(ContextRole, u.Role)
			c.Set(ContextBanStatus, u.BanStatus)
			return next(c)
		}
	}
}

// RequireRole returns middleware that enforces that the resolved profile
// holds one of the given roles. It assumes Identity ran earlier in the
// chain; a missing role is treated the same as a wrong one.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(model.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden: insufficient role"})
			}
			return next(c)
		}
	}
}

// CurrentUserID returns the resolved user id for the request, or ""
// when the caller is unauthenticated.
func CurrentUserID(c echo.Context) string {
	if s, ok := c.Get(ContextUserID).(string); ok {
		return s
	}
	return ""
}

// CurrentBanStatus returns the resolved ban status, defaulting to
// active for unauthenticated callers.
func CurrentBanStatus(c echo.Context) model.BanStatus {
	if s, ok := c.Get(ContextBanStatus).(model.BanStatus); ok {
		return s
	}
	return model.BanStatusActive
}
