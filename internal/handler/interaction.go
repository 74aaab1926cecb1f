package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/middleware"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

// ViewDedupWindow is the trailing window inside which a second view of
// the same article by the same identity is dropped.
const ViewDedupWindow = 10 * time.Minute

// ViewStore is the slice of interaction persistence the view endpoints
// need. Implemented by repository.InteractionRepo.
type ViewStore interface {
	HasRecentView(ctx context.Context, articleID uint64, id repository.ViewIdentity, window time.Duration) (bool, error)
	InsertView(ctx context.Context, articleID uint64, id repository.ViewIdentity) error
	CountViews(ctx context.Context, articleID uint64) (int64, error)
}

// CommentCounter provides the comment total for the stats endpoint.
// Implemented by repository.CommentRepo.
type CommentCounter interface {
	CountByArticle(ctx context.Context, articleID uint64) (int64, error)
}

// InteractionHandler records deduplicated views and serves per-article
// counters.
type InteractionHandler struct {
	Views    ViewStore
	Comments CommentCounter
}

func NewInteractionHandler(views ViewStore, comments CommentCounter) *InteractionHandler {
	return &InteractionHandler{Views: views, Comments: comments}
}

type recordViewReq struct {
	ArticleID uint64 `json:"article_id"`
	DeviceID  string `json:"device_id"`
}

// RecordView handles POST /api/interactions/view. The identity is the
// resolved user when the request carries a token, otherwise the
// anonymous device id from the body; at least one is required. The
// check-then-insert dedup is best-effort: two identical concurrent
// requests can both land, and that is accepted rather than locked
// against.
func (h *InteractionHandler) RecordView(c echo.Context) error {
	var req recordViewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.ArticleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing article_id"})
	}
	identity := repository.ViewIdentity{UserID: middleware.CurrentUserID(c)}
	if identity.UserID == "" {
		identity.DeviceID = req.DeviceID
	}
	if identity.UserID == "" && identity.DeviceID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing user_id or device_id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seen, err := h.Views.HasRecentView(ctx, req.ArticleID, identity, ViewDedupWindow)
	if err != nil {
		c.Logger().Errorf("view dedup check: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to check for duplicate views"})
	}
	if seen {
		return c.JSON(http.StatusOK, echo.Map{"message": "View already recorded recently. Skipping."})
	}

	if err := h.Views.InsertView(ctx, req.ArticleID, identity); err != nil {
		c.Logger().Errorf("insert view: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to record view"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "View recorded successfully"})
}

// Stats handles GET /api/interactions/:article_id/stats.
func (h *InteractionHandler) Stats(c echo.Context) error {
	articleID, err := strconv.ParseUint(c.Param("article_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Article ID is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.Views.CountViews(ctx, articleID)
	if err != nil {
		c.Logger().Errorf("count views for article %d: %v", articleID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error getting stats"})
	}
	comments, err := h.Comments.CountByArticle(ctx, articleID)
	if err != nil {
		c.Logger().Errorf("count comments for article %d: %v", articleID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error getting stats"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_views":    views,
		"total_comments": comments,
	})
}
