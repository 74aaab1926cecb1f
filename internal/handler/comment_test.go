package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwang36/merisols-backend/internal/middleware"
	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/moderation"
)

// stubCommentStore lets a test drive engine outcomes without a database.
type stubCommentStore struct {
	flagOK bool
}

func (s *stubCommentStore) Flag(ctx context.Context, id uint64) (bool, error)   { return s.flagOK, nil }
func (s *stubCommentStore) Unflag(ctx context.Context, id uint64) (bool, error) { return s.flagOK, nil }
func (s *stubCommentStore) Delete(ctx context.Context, id uint64) (bool, error) { return s.flagOK, nil }
func (s *stubCommentStore) DeleteByArticle(ctx context.Context, articleID uint64) error {
	return nil
}

func newCommentContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateCommentMissingFields(t *testing.T) {
	h := NewCommentHandler(nil, nil)
	c, rec := newCommentContext(t, `{"article_id": 3, "content": "   "}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCommentRestrictedAuthor(t *testing.T) {
	h := NewCommentHandler(nil, nil)
	for _, status := range []model.BanStatus{model.BanStatusSoftBanned, model.BanStatusHardBanned} {
		t.Run(string(status), func(t *testing.T) {
			c, rec := newCommentContext(t, `{"article_id": 3, "content": "nice read"}`)
			c.Set(middleware.ContextUserID, "u1")
			c.Set(middleware.ContextBanStatus, status)

			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), "restricted from commenting")
		})
	}
}

func TestFlagCommentNotFound(t *testing.T) {
	engine := moderation.NewEngine(nil, nil, &stubCommentStore{flagOK: false}, nil, nil)
	h := NewCommentHandler(nil, engine)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("comment_id")
	c.SetParamValues("99")

	require.NoError(t, h.Flag(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlagCommentSucceeds(t *testing.T) {
	engine := moderation.NewEngine(nil, nil, &stubCommentStore{flagOK: true}, nil, nil)
	h := NewCommentHandler(nil, engine)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("comment_id")
	c.SetParamValues("99")

	require.NoError(t, h.Flag(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
