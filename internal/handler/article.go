package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/middleware"
	"github.com/maxwang36/merisols-backend/internal/moderation"
)

// ArticleHandler exposes the public report action on articles.
type ArticleHandler struct {
	Engine *moderation.Engine
}

func NewArticleHandler(e *moderation.Engine) *ArticleHandler {
	return &ArticleHandler{Engine: e}
}

// Report handles PUT /api/articles/:article_id/report. The route runs
// behind OptionalIdentity so a missing token reaches the handler, but
// reporting itself requires a signed-in reader.
func (h *ArticleHandler) Report(c echo.Context) error {
	if middleware.CurrentUserID(c) == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: You must be logged in to report an article."})
	}
	id, err := strconv.ParseUint(c.Param("article_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Article ID is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Engine.ReportArticle(ctx, id); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Article reported successfully. A moderator will review it."})
	case errors.Is(err, moderation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Article not found."})
	case errors.Is(err, moderation.ErrNotPublished):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Article could not be reported (it might not be published)."})
	default:
		c.Logger().Errorf("report article %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to report article"})
	}
}
