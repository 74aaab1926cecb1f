package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSchedulePublisher struct{ mock.Mock }

func (m *mockSchedulePublisher) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func runScheduleRequest(t *testing.T, pub SchedulePublisher) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/schedule-run", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, NewScheduleHandler(pub).Run(e.NewContext(req, rec)))
	return rec
}

func TestScheduleRunNothingDue(t *testing.T) {
	pub := new(mockSchedulePublisher)
	pub.On("PublishDue", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(0), nil)

	rec := runScheduleRequest(t, pub)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No articles ready to publish")
}

func TestScheduleRunPublishes(t *testing.T) {
	pub := new(mockSchedulePublisher)
	pub.On("PublishDue", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	rec := runScheduleRequest(t, pub)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"published":3`)
}

func TestScheduleRunFailure(t *testing.T) {
	pub := new(mockSchedulePublisher)
	pub.On("PublishDue", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(0), errors.New("db down"))

	rec := runScheduleRequest(t, pub)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
