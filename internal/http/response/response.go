// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков, а также транслятор,
// отображающий типизированные доменные ошибки на HTTP-статусы.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Success — признак успеха запроса.
// Поле Data — данные ответа (опционально, при успехе).
// Поле Message — человекочитаемое сообщение (опционально).
// Поле Error — текст ошибки (опционально, при неуспехе).
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"invalid request body"`
}

// OK возвращает успешный Response с переданными данными.
func OK(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Message возвращает успешный Response с текстовым сообщением без данных.
func Message(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Success: false,
		Error:   msg,
	}
}

// ValidationError формирует Response на основе ошибок валидации запроса.
// Каждое нарушение превращается в человекочитаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is shorter than the minimum length", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is longer than the maximum length", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of the allowed values", err.Field()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than or equal to %s", err.Field(), err.Param()))
		case "datetime":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only date in format 2006-01-02", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Success: false,
		Error:   strings.Join(errsMsgs, ", "),
	}
}

// FromError отображает типизированную доменную ошибку на HTTP-статус и тело ответа.
// Неизвестные ошибки возвращаются как 500 с обезличенным текстом: подробности
// остаются в серверном логе.
//
// Нарушение владения намеренно отдается со статусом 401, а не 403:
// так ведет себя исходный API, и клиенты на это полагаются.
func FromError(err error) (int, Response) {
	if verr, ok := apperr.AsValidation(err); ok {
		return http.StatusBadRequest, Error(verr.Error())
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusUnauthorized, Error("you are not authorized to perform this action")
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, Error("unauthorized")
	case errors.Is(err, apperr.ErrInvalidToken):
		return http.StatusUnauthorized, Error("invalid or expired token")
	case errors.Is(err, apperr.ErrDuplicate):
		return http.StatusBadRequest, Error("duplicate field value entered")
	default:
		return http.StatusInternalServerError, Error("internal server error")
	}
}
