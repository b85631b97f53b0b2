// Package models содержит доменные структуры подписки и пользователя,
// а также вспомогательные типы для приёма данных из JSON-запросов
// и сообщений очереди уведомлений.
package models

import "time"

// Допустимые значения перечислимых полей подписки.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyLKR = "LKR"

	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"

	CategoryBasic         = "basic"
	CategoryPremium       = "premium"
	CategoryEnterprise    = "enterprise"
	CategoryEntertainment = "entertainment"

	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusCanceled = "canceled"
	StatusExpired  = "expired"
)

// Subscription представляет собой основную модель подписки,
// используемую в бизнес-логике и хранилище. Даты сравниваются с точностью
// до дня, поле RenewalDate после сохранения всегда заполнено.
type Subscription struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Frequency     string    `json:"frequency"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"startDate"`
	RenewalDate   time.Time `json:"renewalDate"`
	UserUID       string    `json:"user"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DummySubscription используется для приёма данных из JSON-запроса на создание,
// прежде чем конвертировать их в Subscription.
// Даты приходят в виде строк формата 2006-01-02, чтобы их можно было
// валидировать и парсить вручную.
type DummySubscription struct {
	Name          string  `json:"name" validate:"required,min=2,max=100"`
	Price         float64 `json:"price" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"omitempty,oneof=USD EUR LKR"`
	Frequency     string  `json:"frequency" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	PaymentMethod string  `json:"paymentMethod" validate:"required"`
	Status        string  `json:"status" validate:"omitempty,oneof=active inactive canceled expired"`
	StartDate     string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	RenewalDate   string  `json:"renewalDate" validate:"omitempty,datetime=2006-01-02"`
}

// DummyUpdateSubscription используется для приёма данных из JSON-запроса
// на обновление. Все поля необязательны: незаполненные поля сохраняют
// прежние значения записи, после слияния запись валидируется заново.
type DummyUpdateSubscription struct {
	Name          string   `json:"name" validate:"omitempty,min=2,max=100"`
	Price         *float64 `json:"price"`
	Currency      string   `json:"currency" validate:"omitempty,oneof=USD EUR LKR"`
	Frequency     string   `json:"frequency"`
	Category      string   `json:"category"`
	PaymentMethod string   `json:"paymentMethod"`
	Status        string   `json:"status" validate:"omitempty,oneof=active inactive canceled expired"`
	StartDate     string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	RenewalDate   string   `json:"renewalDate" validate:"omitempty,datetime=2006-01-02"`
}

// ReminderInfo содержит денормализованные данные подписки вместе с именем
// и email владельца. Используется workflow напоминаний и очередью уведомлений.
type ReminderInfo struct {
	SubscriptionID   int       `json:"subscription_id"`
	SubscriptionName string    `json:"subscription_name"`
	Status           string    `json:"status"`
	RenewalDate      time.Time `json:"renewal_date"`
	UserName         string    `json:"user_name"`
	Email            string    `json:"email"`
	DaysBefore       int       `json:"days_before,omitempty"`
}

// CreatedInfo содержит данные для письма-подтверждения о новой подписке.
type CreatedInfo struct {
	Email            string    `json:"email"`
	UserName         string    `json:"user_name"`
	SubscriptionName string    `json:"subscription_name"`
	Price            float64   `json:"price"`
	Currency         string    `json:"currency"`
	Frequency        string    `json:"frequency"`
	Category         string    `json:"category"`
	RenewalDate      time.Time `json:"renewal_date"`
}
