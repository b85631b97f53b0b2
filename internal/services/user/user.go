// Package services содержит бизнес-логику для управления аккаунтами
// пользователей: чтение профиля, обновление собственных данных и удаление.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListUsers возвращает всех зарегистрированных пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// UpdateUser обновляет имя и email пользователя, возвращает свежую запись.
	UpdateUser(ctx context.Context, userUID, name, email string) (*models.User, error)
	// RemoveUser удаляет пользователя и возвращает количество удалённых записей.
	RemoveUser(ctx context.Context, userUID string) (int, error)
}

// UserService реализует бизнес-логику работы с аккаунтами.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Get возвращает профиль пользователя по UID.
// Хеш пароля никогда не попадает в ответ: поле скрыто на уровне модели.
func (s *UserService) Get(ctx context.Context, userUID string) (*models.User, error) {
	return s.repo.GetUser(ctx, userUID)
}

// List возвращает всех зарегистрированных пользователей.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// Update обновляет данные аккаунта. Менять можно только собственный аккаунт,
// непереданные поля сохраняют текущее значение.
func (s *UserService) Update(ctx context.Context, caller *models.User, userUID string,
	req models.DummyUpdateUser) (*models.User, error) {
	const op = "user.Update"

	if caller.UID != userUID {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	existing, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	name := existing.Name
	if req.Name != "" {
		name = req.Name
	}
	email := existing.Email
	if req.Email != "" {
		email = strings.ToLower(strings.TrimSpace(req.Email))
	}

	updated, err := s.repo.UpdateUser(ctx, userUID, name, email)
	if err != nil {
		return nil, err
	}
	s.log.Info("updated user", slog.String("uid", userUID))
	return updated, nil
}

// Remove удаляет аккаунт. Удалить можно только собственный аккаунт,
// подписки пользователя удаляются каскадно на уровне базы.
func (s *UserService) Remove(ctx context.Context, caller *models.User, userUID string) error {
	const op = "user.Remove"

	if caller.UID != userUID {
		return fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	count, err := s.repo.RemoveUser(ctx, userUID)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	s.log.Info("removed user", slog.String("uid", userUID))
	return nil
}
