package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SchedulePublisher is the slice of article persistence the sweep
// needs. Implemented by repository.ArticleRepo.
type SchedulePublisher interface {
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// ScheduleHandler exposes the publication sweep over HTTP. The same
// sweep also runs on an internal ticker; both triggers are safe to fire
// concurrently because the underlying UPDATE predicate only ever moves
// scheduled articles forward.
type ScheduleHandler struct {
	Articles SchedulePublisher
}

func NewScheduleHandler(articles SchedulePublisher) *ScheduleHandler {
	return &ScheduleHandler{Articles: articles}
}

// Run handles POST /api/schedule-run.
func (h *ScheduleHandler) Run(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	n, err := h.Articles.PublishDue(ctx, time.Now().UTC())
	if err != nil {
		c.Logger().Errorf("publication sweep: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to publish articles"})
	}
	if n == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "No articles ready to publish", "published": 0})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   fmt.Sprintf("Published %d article(s)", n),
		"published": n,
	})
}
