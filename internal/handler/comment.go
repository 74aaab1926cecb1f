package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/middleware"
	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/moderation"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

// CommentHandler exposes public comment listing, creation and flagging.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Engine   *moderation.Engine
}

func NewCommentHandler(comments *repository.CommentRepo, engine *moderation.Engine) *CommentHandler {
	return &CommentHandler{Comments: comments, Engine: engine}
}

type createCommentReq struct {
	ArticleID uint64 `json:"article_id"`
	Content   string `json:"content"`
}

type commentResp struct {
	ID         uint64    `json:"comment_id"`
	ArticleID  uint64    `json:"article_id"`
	Text       string    `json:"comment_text"`
	Date       time.Time `json:"comment_date"`
	Flagged    bool      `json:"flagged"`
	AuthorID   string    `json:"user_id"`
	AuthorName string    `json:"display_name"`
}

// Create handles POST /api/comments. The route requires identity; a
// soft-banned or hard-banned author is rejected here, at creation time,
// which is the single enforcement point for the commenting restriction.
func (h *CommentHandler) Create(c echo.Context) error {
	var req createCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.ArticleID == 0 || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}
	if middleware.CurrentBanStatus(c) != model.BanStatusActive {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You are currently restricted from commenting."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Comments.Create(ctx, req.ArticleID, middleware.CurrentUserID(c), req.Content); err != nil {
		c.Logger().Errorf("create comment: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to post comment"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Comment posted successfully"})
}

// ListByArticle handles GET /api/comments/:article_id.
func (h *CommentHandler) ListByArticle(c echo.Context) error {
	articleID, err := strconv.ParseUint(c.Param("article_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Article ID is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Comments.ListByArticle(ctx, articleID)
	if err != nil {
		c.Logger().Errorf("list comments for article %d: %v", articleID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch comments"})
	}
	return c.JSON(http.StatusOK, commentsToResp(rows))
}

// Flag handles PUT /api/comments/:comment_id/flag. Any reader may flag
// a comment; no identity is required.
func (h *CommentHandler) Flag(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Comment ID is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Engine.FlagComment(ctx, id); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Comment flagged successfully"})
	case errors.Is(err, moderation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
	default:
		c.Logger().Errorf("flag comment %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to flag comment"})
	}
}

func commentsToResp(rows []repository.CommentWithAuthor) []commentResp {
	out := make([]commentResp, 0, len(rows))
	for _, cw := range rows {
		out = append(out, commentResp{
			ID:         cw.Comment.ID,
			ArticleID:  cw.Comment.ArticleID,
			Text:       cw.Comment.Text,
			Date:       cw.Comment.Date,
			Flagged:    cw.Comment.Flagged,
			AuthorID:   cw.Comment.UserID,
			AuthorName: cw.AuthorName,
		})
	}
	return out
}
