package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его uid
func (f *TestDataFactory) CreateUser(t *testing.T, name, email, passwordHash string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3) RETURNING uid`,
		name, email, passwordHash).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateSubscription создает тестовую подписку и возвращает её id
func (f *TestDataFactory) CreateSubscription(t *testing.T, name string, price float64,
	frequency, category, status string, startDate, renewalDate time.Time, userUID string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions
		(name, price, currency, frequency, category, payment_method, status, start_date, renewal_date, user_uid)
		VALUES ($1, $2, 'USD', $3, $4, 'credit card', $5, $6, $7, $8) RETURNING id`,
		name, price, frequency, category, status, startDate, renewalDate, userUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifySubscriptionExists проверяет существование подписки в БД
func (v *TestVerification) VerifySubscriptionExists(t *testing.T, subscriptionID int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE id = $1", subscriptionID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// VerifySubscriptionDeleted проверяет удаление подписки из БД
func (v *TestVerification) VerifySubscriptionDeleted(t *testing.T, subscriptionID int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE id = $1", subscriptionID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

// VerifyRunStatus проверяет статус запуска workflow в журнале
func (v *TestVerification) VerifyRunStatus(t *testing.T, runID, expectedStatus string) {
	var status string
	err := v.storage.DB.QueryRow("SELECT status FROM reminder_runs WHERE id = $1", runID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}
