package services

import (
	"context"
	"fmt"
	"log/slog"
)

// RunEnqueuer ставит запуск workflow в журнал.
type RunEnqueuer interface {
	EnqueueRun(ctx context.Context, subscriptionID int, idempotencyKey string) (bool, error)
}

// Trigger ставит durable-запуск напоминаний для подписки. Ключ
// идемпотентности выводится из ID подписки, так что подписка получает
// не более одного запуска за всю жизнь.
type Trigger struct {
	journal RunEnqueuer
	log     *slog.Logger
}

// NewTrigger создает триггер запусков workflow.
func NewTrigger(journal RunEnqueuer, log *slog.Logger) *Trigger {
	return &Trigger{journal: journal, log: log}
}

// Trigger ставит запуск для подписки. Повторный вызов с тем же ID
// подписки ничего не делает.
func (t *Trigger) Trigger(ctx context.Context, subscriptionID int) error {
	const op = "reminder.Trigger"

	enqueued, err := t.journal.EnqueueRun(ctx, subscriptionID,
		fmt.Sprintf("subscription-%d", subscriptionID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !enqueued {
		t.log.Info("reminder run already exists",
			slog.Int("subscription_id", subscriptionID))
		return nil
	}
	t.log.Info("enqueued reminder run", slog.Int("subscription_id", subscriptionID))
	return nil
}
