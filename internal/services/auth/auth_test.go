package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Minute)
}

func TestAuthService_Register(t *testing.T) {
	users := &UsersMock{}
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "john@example.com" && u.Name == "John" && u.PasswordHash != "secret123"
	})).Return("uid-1", nil).Once()

	svc := NewAuthService(users, newMaker())
	user, token, err := svc.Register(context.Background(), models.DummyRegister{
		Name:     " John ",
		Email:    " John@Example.COM ",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)
	assert.Equal(t, "john@example.com", user.Email)
	assert.NotEmpty(t, token)
	users.AssertExpectations(t)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	users := &UsersMock{}
	users.On("RegisterUser", mock.Anything, mock.Anything).
		Return("", apperr.ErrDuplicate).Once()

	svc := NewAuthService(users, newMaker())
	_, _, err := svc.Register(context.Background(), models.DummyRegister{
		Name:     "John",
		Email:    "john@example.com",
		Password: "secret123",
	})

	require.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	stored := &models.User{UID: "uid-1", Name: "John", Email: "john@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		email    string
		password string
		mockUser *models.User
		mockErr  error
		wantErr  error
	}{
		{
			name:     "success",
			email:    "john@example.com",
			password: "secret123",
			mockUser: stored,
		},
		{
			name:     "wrong password",
			email:    "john@example.com",
			password: "wrong",
			mockUser: stored,
			wantErr:  apperr.ErrUnauthenticated,
		},
		{
			name:     "unknown email indistinguishable from wrong password",
			email:    "nobody@example.com",
			password: "secret123",
			mockErr:  apperr.ErrNotFound,
			wantErr:  apperr.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &UsersMock{}
			users.On("GetUserByEmail", mock.Anything, tt.email).
				Return(tt.mockUser, tt.mockErr).Once()

			svc := NewAuthService(users, newMaker())
			user, token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "uid-1", user.UID)
			assert.NotEmpty(t, token)
		})
	}
}

func TestAuthService_Resolve(t *testing.T) {
	maker := newMaker()
	token, err := maker.GenerateToken("uid-1", "john@example.com")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		users := &UsersMock{}
		users.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", Email: "john@example.com"}, nil).Once()

		svc := NewAuthService(users, maker)
		user, err := svc.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", user.UID)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(&UsersMock{}, maker)
		_, err := svc.Resolve(context.Background(), "not-a-token")
		require.ErrorIs(t, err, apperr.ErrInvalidToken)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		users := &UsersMock{}
		users.On("GetUser", mock.Anything, "uid-1").
			Return(nil, apperr.ErrNotFound).Once()

		svc := NewAuthService(users, maker)
		_, err := svc.Resolve(context.Background(), token)
		require.ErrorIs(t, err, apperr.ErrInvalidToken)
	})

	t.Run("storage fault is not an auth failure", func(t *testing.T) {
		users := &UsersMock{}
		users.On("GetUser", mock.Anything, "uid-1").
			Return(nil, errors.New("connection refused")).Once()

		svc := NewAuthService(users, maker)
		_, err := svc.Resolve(context.Background(), token)
		require.Error(t, err)
		assert.False(t, errors.Is(err, apperr.ErrInvalidToken))
	})
}
