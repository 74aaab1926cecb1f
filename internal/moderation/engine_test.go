package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) SetBanStatus(ctx context.Context, id string, from, to model.BanStatus, until *time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, until)
	return args.Bool(0), args.Error(1)
}

type mockArticleStore struct{ mock.Mock }

func (m *mockArticleStore) Exists(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockArticleStore) Flag(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockArticleStore) Unflag(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockArticleStore) Delete(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockArticleStore) DeleteImages(ctx context.Context, articleID uint64) error {
	return m.Called(ctx, articleID).Error(0)
}

type mockCommentStore struct{ mock.Mock }

func (m *mockCommentStore) Flag(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommentStore) Unflag(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommentStore) Delete(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommentStore) DeleteByArticle(ctx context.Context, articleID uint64) error {
	return m.Called(ctx, articleID).Error(0)
}

type mockInteractionStore struct{ mock.Mock }

func (m *mockInteractionStore) DeleteByArticle(ctx context.Context, articleID uint64) error {
	return m.Called(ctx, articleID).Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) BanStatusChanged(u model.User, action BanAction, until *time.Time) {
	m.Called(u, action, until)
}

func (m *mockDispatcher) ArticleRemoved(articleID uint64, moderatorID string) {
	m.Called(articleID, moderatorID)
}

func newTestEngine() (*Engine, *mockUserStore, *mockArticleStore, *mockCommentStore, *mockInteractionStore, *mockDispatcher) {
	users := new(mockUserStore)
	articles := new(mockArticleStore)
	comments := new(mockCommentStore)
	interactions := new(mockInteractionStore)
	dispatch := new(mockDispatcher)
	return NewEngine(users, articles, comments, interactions, dispatch), users, articles, comments, interactions, dispatch
}

func activeUser(id string, role model.Role) model.User {
	return model.User{ID: id, Role: role, BanStatus: model.BanStatusActive, Email: id + "@example.com"}
}

func TestBanActiveUser(t *testing.T) {
	e, users, _, _, _, dispatch := newTestEngine()
	target := activeUser("u1", model.RoleUser)

	users.On("GetByID", mock.Anything, "u1").Return(target, nil)
	users.On("SetBanStatus", mock.Anything, "u1", model.BanStatusActive, model.BanStatusHardBanned, mock.AnythingOfType("*time.Time")).
		Return(true, nil)
	dispatch.On("BanStatusChanged", mock.AnythingOfType("model.User"), ActionBan, mock.AnythingOfType("*time.Time")).Return()

	got, err := e.Ban(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.BanStatusHardBanned, got.BanStatus)
	require.NotNil(t, got.BanEndDate)
	wantEnd := time.Now().UTC().Add(HardBanDuration)
	assert.WithinDuration(t, wantEnd, *got.BanEndDate, time.Minute)
	users.AssertExpectations(t)
	dispatch.AssertExpectations(t)
}

func TestBanAdminForbidden(t *testing.T) {
	e, users, _, _, _, dispatch := newTestEngine()
	users.On("GetByID", mock.Anything, "a1").Return(activeUser("a1", model.RoleAdmin), nil)

	_, err := e.Ban(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrForbidden)
	users.AssertNotCalled(t, "SetBanStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dispatch.AssertNotCalled(t, "BanStatusChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestSoftBanOnlyUserAndJournalist(t *testing.T) {
	for _, tc := range []struct {
		role    model.Role
		allowed bool
	}{
		{model.RoleUser, true},
		{model.RoleJournalist, true},
		{model.RoleModerator, false},
		{model.RoleAdmin, false},
	} {
		t.Run(string(tc.role), func(t *testing.T) {
			e, users, _, _, _, dispatch := newTestEngine()
			users.On("GetByID", mock.Anything, "t").Return(activeUser("t", tc.role), nil)
			if tc.allowed {
				users.On("SetBanStatus", mock.Anything, "t", model.BanStatusActive, model.BanStatusSoftBanned, mock.AnythingOfType("*time.Time")).
					Return(true, nil)
				dispatch.On("BanStatusChanged", mock.Anything, ActionSoftBan, mock.Anything).Return()
			}

			got, err := e.SoftBan(context.Background(), "t")
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, model.BanStatusSoftBanned, got.BanStatus)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
				users.AssertNotCalled(t, "SetBanStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBanAlreadyBannedReportsNotFound(t *testing.T) {
	e, users, _, _, _, dispatch := newTestEngine()
	banned := activeUser("u1", model.RoleUser)
	banned.BanStatus = model.BanStatusHardBanned

	users.On("GetByID", mock.Anything, "u1").Return(banned, nil)
	// The conditional write requires ban_status to still be active.
	users.On("SetBanStatus", mock.Anything, "u1", model.BanStatusActive, model.BanStatusHardBanned, mock.Anything).
		Return(false, nil)

	_, err := e.Ban(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	dispatch.AssertNotCalled(t, "BanStatusChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestBanMissingUser(t *testing.T) {
	e, users, _, _, _, _ := newTestEngine()
	users.On("GetByID", mock.Anything, "ghost").Return(model.User{}, repository.ErrNotFound)

	_, err := e.Ban(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnbanClearsEndDate(t *testing.T) {
	e, users, _, _, _, dispatch := newTestEngine()
	banned := activeUser("u1", model.RoleUser)
	banned.BanStatus = model.BanStatusHardBanned

	users.On("GetByID", mock.Anything, "u1").Return(banned, nil)
	users.On("SetBanStatus", mock.Anything, "u1", model.BanStatusHardBanned, model.BanStatusActive, (*time.Time)(nil)).
		Return(true, nil)
	dispatch.On("BanStatusChanged", mock.Anything, ActionUnban, (*time.Time)(nil)).Return()

	got, err := e.Unban(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.BanStatusActive, got.BanStatus)
	assert.Nil(t, got.BanEndDate)
	dispatch.AssertExpectations(t)
}

func TestUnsoftBanRequiresSoftBanned(t *testing.T) {
	e, users, _, _, _, _ := newTestEngine()
	users.On("GetByID", mock.Anything, "u1").Return(activeUser("u1", model.RoleUser), nil)
	users.On("SetBanStatus", mock.Anything, "u1", model.BanStatusSoftBanned, model.BanStatusActive, (*time.Time)(nil)).
		Return(false, nil)

	_, err := e.UnsoftBan(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportArticle(t *testing.T) {
	t.Run("published", func(t *testing.T) {
		e, _, articles, _, _, _ := newTestEngine()
		articles.On("Flag", mock.Anything, uint64(7)).Return(true, nil)
		assert.NoError(t, e.ReportArticle(context.Background(), 7))
	})

	t.Run("not published", func(t *testing.T) {
		e, _, articles, _, _, _ := newTestEngine()
		articles.On("Flag", mock.Anything, uint64(7)).Return(false, nil)
		articles.On("Exists", mock.Anything, uint64(7)).Return(true, nil)
		assert.ErrorIs(t, e.ReportArticle(context.Background(), 7), ErrNotPublished)
	})

	t.Run("missing", func(t *testing.T) {
		e, _, articles, _, _, _ := newTestEngine()
		articles.On("Flag", mock.Anything, uint64(7)).Return(false, nil)
		articles.On("Exists", mock.Anything, uint64(7)).Return(false, nil)
		assert.ErrorIs(t, e.ReportArticle(context.Background(), 7), ErrNotFound)
	})
}

func TestUnflagArticle(t *testing.T) {
	t.Run("existing row succeeds even when already unflagged", func(t *testing.T) {
		e, _, articles, _, _, _ := newTestEngine()
		articles.On("Unflag", mock.Anything, uint64(3)).Return(true, nil)
		assert.NoError(t, e.UnflagArticle(context.Background(), 3))
	})

	t.Run("missing row", func(t *testing.T) {
		e, _, articles, _, _, _ := newTestEngine()
		articles.On("Unflag", mock.Anything, uint64(3)).Return(false, nil)
		assert.ErrorIs(t, e.UnflagArticle(context.Background(), 3), ErrNotFound)
	})
}

func TestDeleteArticleCascade(t *testing.T) {
	e, _, articles, comments, interactions, dispatch := newTestEngine()
	articles.On("DeleteImages", mock.Anything, uint64(9)).Return(nil)
	comments.On("DeleteByArticle", mock.Anything, uint64(9)).Return(nil)
	interactions.On("DeleteByArticle", mock.Anything, uint64(9)).Return(nil)
	articles.On("Delete", mock.Anything, uint64(9)).Return(true, nil)
	dispatch.On("ArticleRemoved", uint64(9), "mod-1").Return()

	require.NoError(t, e.DeleteArticle(context.Background(), 9, "mod-1"))
	articles.AssertExpectations(t)
	comments.AssertExpectations(t)
	interactions.AssertExpectations(t)
	dispatch.AssertExpectations(t)
}

func TestDeleteArticleCascadeContinuesPastDependentFailure(t *testing.T) {
	e, _, articles, comments, interactions, dispatch := newTestEngine()
	articles.On("DeleteImages", mock.Anything, uint64(9)).Return(errors.New("images table busy"))
	comments.On("DeleteByArticle", mock.Anything, uint64(9)).Return(nil)
	interactions.On("DeleteByArticle", mock.Anything, uint64(9)).Return(nil)
	articles.On("Delete", mock.Anything, uint64(9)).Return(true, nil)
	dispatch.On("ArticleRemoved", uint64(9), "mod-1").Return()

	// A dependent-table failure must not abort the takedown.
	require.NoError(t, e.DeleteArticle(context.Background(), 9, "mod-1"))
	articles.AssertExpectations(t)
}

func TestDeleteArticleMissingParent(t *testing.T) {
	e, _, articles, comments, interactions, dispatch := newTestEngine()
	articles.On("DeleteImages", mock.Anything, uint64(9)).Return(nil)
	comments.On("DeleteByArticle", mock.Anything, uint64(9)).Return(nil)
	interactions.On("DeleteByArticle", mock.Anything, uint64(9)).Return(nil)
	articles.On("Delete", mock.Anything, uint64(9)).Return(false, nil)

	assert.ErrorIs(t, e.DeleteArticle(context.Background(), 9, "mod-1"), ErrNotFound)
	dispatch.AssertNotCalled(t, "ArticleRemoved", mock.Anything, mock.Anything)
}

func TestFlagCommentMissing(t *testing.T) {
	e, _, _, comments, _, _ := newTestEngine()
	comments.On("Flag", mock.Anything, uint64(5)).Return(false, nil)
	assert.ErrorIs(t, e.FlagComment(context.Background(), 5), ErrNotFound)
}

func TestNilDispatcherDropsNotifications(t *testing.T) {
	users := new(mockUserStore)
	e := NewEngine(users, nil, nil, nil, nil)
	users.On("GetByID", mock.Anything, "u1").Return(activeUser("u1", model.RoleUser), nil)
	users.On("SetBanStatus", mock.Anything, "u1", model.BanStatusActive, model.BanStatusHardBanned, mock.Anything).
		Return(true, nil)

	_, err := e.Ban(context.Background(), "u1")
	assert.NoError(t, err)
}
