package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/inference"
)

// InferenceHandler fronts the hosted ML services: summaries and the
// text/image similarity check used during article review.
type InferenceHandler struct {
	AI *inference.Client
}

func NewInferenceHandler(ai *inference.Client) *InferenceHandler {
	return &InferenceHandler{AI: ai}
}

// Summarize handles POST /api/ai/summarize.
func (h *InferenceHandler) Summarize(c echo.Context) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No text provided"})
	}
	summary, err := h.AI.Summarize(c.Request().Context(), req.Text)
	if err != nil {
		c.Logger().Errorf("summarize: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong"})
	}
	return c.JSON(http.StatusOK, echo.Map{"summary": summary})
}

// ModerateArticle handles POST /api/moderation/moderate-article.
func (h *InferenceHandler) ModerateArticle(c echo.Context) error {
	var req struct {
		Text     string `json:"text"`
		ImageURL string `json:"imageUrl"`
	}
	if err := c.Bind(&req); err != nil || req.Text == "" || req.ImageURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing text or imageUrl"})
	}
	result, err := h.AI.ModerateArticle(c.Request().Context(), req.Text, req.ImageURL)
	if err != nil {
		c.Logger().Errorf("moderate article: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Moderation API failed"})
	}
	return c.JSON(http.StatusOK, result)
}
