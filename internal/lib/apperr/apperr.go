// Package apperr определяет типизированные ошибки доменного уровня.
// Сервисы возвращают их наверх, а транслятор в internal/http/response
// отображает каждую на HTTP-статус и текст ответа.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound — запрошенная запись отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrForbidden — вызывающий аутентифицирован, но не владеет записью.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated — отсутствуют или неверны учетные данные.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken — подпись или срок действия токена не прошли проверку,
	// либо subject токена больше не существует.
	ErrInvalidToken = errors.New("invalid token")
	// ErrDuplicate — нарушение уникального ограничения.
	ErrDuplicate = errors.New("duplicate field value")
)

// ValidationError перечисляет все нарушенные ограничения полей одной записи.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}

// Validation собирает ошибку валидации из списка нарушений.
func Validation(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Validationf добавляет одно нарушение с форматированием.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Violations: []string{fmt.Sprintf(format, args...)}}
}

// AsValidation возвращает *ValidationError, если err им является.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
