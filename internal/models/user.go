// Package models содержит доменную модель пользователя системы,
// а также структуры для приёма данных регистрации и входа.
package models

import "time"

// User представляет пользователя системы. Поле PasswordHash хранит
// bcrypt-хеш и никогда не сериализуется в ответах API.
type User struct {
	UID          string    `json:"uid"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DummyRegister — структура входных данных для регистрации пользователя.
type DummyRegister struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,min=5,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyLogin — структура входных данных для входа пользователя.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyUpdateUser — структура входных данных для обновления профиля.
// Пустые поля сохраняют прежние значения.
type DummyUpdateUser struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=50"`
	Email string `json:"email" validate:"omitempty,email,min=5,max=255"`
}
