package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/repository"
	"github.com/maxwang36/merisols-backend/internal/utils"
)

// AdminHandler provisions and removes accounts. Credentials live in the
// users table; the auth_id issued here is the subject the identity
// layer later matches bearer tokens against.
type AdminHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
}

func NewAdminHandler(users *repository.UserRepo, bcryptCost int) *AdminHandler {
	return &AdminHandler{Users: users, BcryptCost: bcryptCost}
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type userResp struct {
	UserID      string     `json:"user_id"`
	AuthID      string     `json:"auth_id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
	BanStatus   string     `json:"ban_status"`
	BanEndDate  *time.Time `json:"ban_end_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

func userToResp(u model.User) userResp {
	return userResp{
		UserID:      u.ID,
		AuthID:      u.AuthID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
		BanStatus:   string(u.BanStatus),
		BanEndDate:  u.BanEndDate,
		CreatedAt:   u.CreatedAt,
	}
}

// CreateUser handles POST /api/admin/create-user. Role defaults to
// "user" when omitted.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request body"})
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing fields"})
	}
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid role"})
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		c.Logger().Errorf("hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to create user"})
	}

	u := model.User{
		ID:           uuid.NewString(),
		AuthID:       uuid.NewString(),
		DisplayName:  req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		BanStatus:    model.BanStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Users.Create(c.Request().Context(), u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "A user with this email already exists"})
		}
		c.Logger().Errorf("create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "User table insert failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": userToResp(u)})
}

// DeleteUser handles DELETE /api/admin/delete-user/:auth_id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	authID := c.Param("auth_id")
	if authID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing auth_id"})
	}
	if err := h.Users.Delete(c.Request().Context(), authID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "User not found"})
		}
		c.Logger().Errorf("delete user %s: %v", authID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to delete user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "User deleted successfully"})
}

// ListUsers handles GET /api/users. Optional role and ban_status query
// parameters narrow the listing.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	filter := repository.UserListFilter{
		Role:      model.Role(c.QueryParam("role")),
		BanStatus: model.BanStatus(c.QueryParam("ban_status")),
	}
	users, err := h.Users.List(c.Request().Context(), filter)
	if err != nil {
		c.Logger().Errorf("list users: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to list users"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, userToResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(out), "users": out})
}
