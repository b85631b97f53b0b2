package models

import "time"

// Статусы запуска workflow напоминаний.
const (
	RunStatusPending   = "pending"
	RunStatusSleeping  = "sleeping"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ReminderRun — один durable-запуск workflow напоминаний для подписки.
// Поле IdempotencyKey ("subscription-<id>") защищает от повторной постановки,
// WakeAt хранит момент следующего возобновления.
type ReminderRun struct {
	ID             string
	SubscriptionID int
	IdempotencyKey string
	Status         string
	WakeAt         time.Time
	Result         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
