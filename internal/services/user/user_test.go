package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UsersMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *UsersMock) UpdateUser(ctx context.Context, userUID, name, email string) (*models.User, error) {
	args := m.Called(ctx, userUID, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UsersMock) RemoveUser(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func caller() *models.User {
	return &models.User{UID: "uid-1", Name: "Alice", Email: "alice@example.com"}
}

func TestListUsers(t *testing.T) {
	repo := new(UsersMock)
	svc := NewUserService(repo, slog.New(discardHandler{}))

	repo.On("ListUsers", mock.Anything).Return([]*models.User{
		caller(),
		{UID: "uid-2", Name: "Bob", Email: "bob@example.com"},
	}, nil)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob@example.com", users[1].Email)
}

func TestUpdateUser(t *testing.T) {
	t.Run("merges missing fields from existing record", func(t *testing.T) {
		repo := new(UsersMock)
		svc := NewUserService(repo, slog.New(discardHandler{}))

		repo.On("GetUser", mock.Anything, "uid-1").Return(caller(), nil)
		repo.On("UpdateUser", mock.Anything, "uid-1", "Alice", "new@example.com").
			Return(&models.User{UID: "uid-1", Name: "Alice", Email: "new@example.com"}, nil)

		updated, err := svc.Update(context.Background(), caller(), "uid-1",
			models.DummyUpdateUser{Email: "  NEW@example.com "})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		repo.AssertExpectations(t)
	})

	t.Run("cannot update another account", func(t *testing.T) {
		repo := new(UsersMock)
		svc := NewUserService(repo, slog.New(discardHandler{}))

		_, err := svc.Update(context.Background(), caller(), "uid-2",
			models.DummyUpdateUser{Name: "Eve"})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		repo.AssertNotCalled(t, "UpdateUser")
	})
}

func TestRemoveUser(t *testing.T) {
	t.Run("removes own account", func(t *testing.T) {
		repo := new(UsersMock)
		svc := NewUserService(repo, slog.New(discardHandler{}))

		repo.On("RemoveUser", mock.Anything, "uid-1").Return(1, nil)
		require.NoError(t, svc.Remove(context.Background(), caller(), "uid-1"))
	})

	t.Run("cannot remove another account", func(t *testing.T) {
		repo := new(UsersMock)
		svc := NewUserService(repo, slog.New(discardHandler{}))

		err := svc.Remove(context.Background(), caller(), "uid-2")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		repo.AssertNotCalled(t, "RemoveUser")
	})

	t.Run("missing account", func(t *testing.T) {
		repo := new(UsersMock)
		svc := NewUserService(repo, slog.New(discardHandler{}))

		repo.On("RemoveUser", mock.Anything, "uid-1").Return(0, nil)
		err := svc.Remove(context.Background(), caller(), "uid-1")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
