package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/middleware"
	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/moderation"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

// ModeratorHandler bundles the moderation queues and the ban-state
// actions. Every route in this group runs behind Identity +
// RequireRole(moderator).
type ModeratorHandler struct {
	Engine   *moderation.Engine
	Users    *repository.UserRepo
	Articles *repository.ArticleRepo
	Comments *repository.CommentRepo
}

func NewModeratorHandler(engine *moderation.Engine, users *repository.UserRepo, articles *repository.ArticleRepo, comments *repository.CommentRepo) *ModeratorHandler {
	return &ModeratorHandler{Engine: engine, Users: users, Articles: articles, Comments: comments}
}

// ----- content queues -----

// FlaggedComments handles GET /api/moderator/comments/flagged.
func (h *ModeratorHandler) FlaggedComments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Comments.ListFlagged(ctx)
	if err != nil {
		c.Logger().Errorf("list flagged comments: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch flagged comments"})
	}
	return c.JSON(http.StatusOK, commentsToResp(rows))
}

// UnflagComment handles PUT /api/moderator/comments/:comment_id/unflag.
func (h *ModeratorHandler) UnflagComment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Comment ID is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Engine.UnflagComment(ctx, id); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Comment unflagged successfully"})
	case errors.Is(err, moderation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
	default:
		c.Logger().Errorf("unflag comment %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to unflag comment"})
	}
}

// DeleteComment handles DELETE /api/moderator/comments/:comment_id.
func (h *ModeratorHandler) DeleteComment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Comment ID is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Engine.DeleteComment(ctx, id); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
	case errors.Is(err, moderation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
	default:
		c.Logger().Errorf("delete comment %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete comment"})
	}
}

type reportedArticleResp struct {
	ID              uint64    `json:"article_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	PublicationDate time.Time `json:"publication_date"`
	Status          string    `json:"status"`
	Flagged         bool      `json:"flagged"`
	Category        string    `json:"category"`
	PublisherID     string    `json:"published_by"`
	PublisherName   string    `json:"publisher_name"`
}

// ReportedArticles handles GET /api/moderator/articles/reported: the
// queue of flagged, published articles awaiting review.
func (h *ModeratorHandler) ReportedArticles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Articles.ListReported(ctx)
	if err != nil {
		c.Logger().Errorf("list reported articles: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch reported articles"})
	}
	out := make([]reportedArticleResp, 0, len(rows))
	for _, ra := range rows {
		out = append(out, reportedArticleResp{
			ID:              ra.Article.ID,
			Title:           ra.Article.Title,
			Content:         ra.Article.Content,
			PublicationDate: ra.Article.PublicationDate,
			Status:          string(ra.Article.Status),
			Flagged:         ra.Article.Flagged,
			Category:        ra.CategoryName,
			PublisherID:     ra.PublisherID,
			PublisherName:   ra.PublisherName,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// UnflagArticle handles PUT /api/moderator/articles/:article_id/unflag.
func (h *ModeratorHandler) UnflagArticle(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("article_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Article ID is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Engine.UnflagArticle(ctx, id); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Article unflagged successfully"})
	case errors.Is(err, moderation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Article not found"})
	default:
		c.Logger().Errorf("unflag article %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to unflag article"})
	}
}

// DeleteArticle handles DELETE /api/moderator/articles/:article_id —
// the cascading takedown of an article and everything referencing it.
func (h *ModeratorHandler) DeleteArticle(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("article_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Article ID is required"})
	}
	// The cascade keeps going after the request's own deadline would
	// have fired; a half-deleted article is worse than a slow response.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch err := h.Engine.DeleteArticle(ctx, id, middleware.CurrentUserID(c)); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Article and associated data deleted successfully"})
	case errors.Is(err, moderation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Article not found"})
	default:
		c.Logger().Errorf("delete article %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete article"})
	}
}

// ----- user policy -----

type moderatorUserResp struct {
	ID              string     `json:"user_id"`
	DisplayName     string     `json:"display_name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	BanStatus       string     `json:"ban_status"`
	BanEndDate      *time.Time `json:"ban_end_date"`
	CreatedAt       time.Time  `json:"created_at"`
	FlaggedComments int64      `json:"flagged_comments"`
}

// ListUsers handles GET /api/moderator/users: all users newest-first
// with their flagged-content counts.
func (h *ModeratorHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Users.ListWithFlagStats(ctx)
	if err != nil {
		c.Logger().Errorf("list users: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch users"})
	}
	out := make([]moderatorUserResp, 0, len(rows))
	for _, s := range rows {
		out = append(out, moderatorUserResp{
			ID:              s.User.ID,
			DisplayName:     s.User.DisplayName,
			Email:           s.User.Email,
			Role:            string(s.User.Role),
			BanStatus:       string(s.User.BanStatus),
			BanEndDate:      s.User.BanEndDate,
			CreatedAt:       s.User.CreatedAt,
			FlaggedComments: s.FlaggedComments,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Ban handles PUT /api/moderator/users/:user_id/ban.
func (h *ModeratorHandler) Ban(c echo.Context) error {
	return h.banAction(c, h.Engine.Ban, "User banned successfully", "Cannot ban this user")
}

// SoftBan handles PUT /api/moderator/users/:user_id/soft-ban.
func (h *ModeratorHandler) SoftBan(c echo.Context) error {
	return h.banAction(c, h.Engine.SoftBan, "User soft-banned successfully", "Cannot soft-ban this user")
}

// Unban handles PUT /api/moderator/users/:user_id/unban.
func (h *ModeratorHandler) Unban(c echo.Context) error {
	return h.banAction(c, h.Engine.Unban, "User unbanned successfully", "Cannot unban this user")
}

// UnsoftBan handles PUT /api/moderator/users/:user_id/unsoft-ban.
func (h *ModeratorHandler) UnsoftBan(c echo.Context) error {
	return h.banAction(c, h.Engine.UnsoftBan, "User unsoft-banned successfully", "Cannot unsoft-ban this user")
}

func (h *ModeratorHandler) banAction(c echo.Context, fn func(context.Context, string) (model.User, error), okMsg, forbiddenMsg string) error {
	targetID := c.Param("user_id")
	if targetID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User ID is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := fn(ctx, targetID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{
			"message":      okMsg,
			"ban_status":   u.BanStatus,
			"ban_end_date": u.BanEndDate,
		})
	case errors.Is(err, moderation.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"message": forbiddenMsg})
	case errors.Is(err, moderation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found or not in the required ban state"})
	default:
		c.Logger().Errorf("ban action on user %s: %v", targetID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update user ban status"})
	}
}
