package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/renewal"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// reminderOffsets — за сколько дней до даты продления отправляются
// напоминания, в порядке прохождения контрольных точек.
var reminderOffsets = [4]int{7, 5, 2, 1}

// SubscriptionReader возвращает данные подписки для напоминания
// вместе с именем и адресом владельца.
type SubscriptionReader interface {
	ReadReminderInfo(ctx context.Context, id int) (*models.ReminderInfo, error)
}

// ReminderPublisher публикует напоминание в очередь уведомлений.
type ReminderPublisher interface {
	PublishReminder(info models.ReminderInfo) error
}

// Workflow описывает жизненный цикл напоминаний одной подписки:
// сон до каждой контрольной точки, перечитывание состояния при каждом
// пробуждении и однократная публикация напоминания на точку.
type Workflow struct {
	reader    SubscriptionReader
	publisher ReminderPublisher
	log       *slog.Logger
	now       func() time.Time
}

// NewWorkflow создает workflow напоминаний.
func NewWorkflow(reader SubscriptionReader, publisher ReminderPublisher, log *slog.Logger) *Workflow {
	return &Workflow{
		reader:    reader,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Run воспроизводит workflow для подписки с начала. Возвращает текстовый
// результат для журнала запуска. ErrSuspended означает, что запуск уснул,
// все остальные ошибки — сбой запуска.
//
// Состояние подписки перечитывается на каждом пробуждении: отменённая
// или удалённая за время сна подписка тихо завершает запуск без напоминаний.
func (w *Workflow) Run(ctx context.Context, eng Engine, subscriptionID int) (string, error) {
	info, err := w.reader.ReadReminderInfo(ctx, subscriptionID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		w.log.Error("subscription not found, stopping workflow",
			slog.Int("subscription_id", subscriptionID))
		return "subscription not found", nil
	case err != nil:
		return "", err
	}

	for _, daysBefore := range reminderOffsets {
		// состояние могло измениться за время сна
		if daysBefore != reminderOffsets[0] {
			info, err = w.reader.ReadReminderInfo(ctx, subscriptionID)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				return "subscription removed during workflow", nil
			case err != nil:
				return "", err
			}
		}
		if info.Status != models.StatusActive {
			w.log.Info("subscription is no longer active, stopping workflow",
				slog.Int("subscription_id", subscriptionID),
				slog.String("status", info.Status))
			return fmt.Sprintf("subscription status is %s", info.Status), nil
		}
		if !info.RenewalDate.After(w.now()) {
			w.log.Info("renewal date has passed, stopping workflow",
				slog.Int("subscription_id", subscriptionID))
			return "renewal date has passed", nil
		}

		// сравнение моментов, а не календарных дней: checkpoint — полночь
		// в зоне даты продления, часы исполнителя могут идти в любой зоне
		checkpoint := renewal.Day(info.RenewalDate).AddDate(0, 0, -daysBefore)
		woke, err := eng.SuspendUntil(ctx, fmt.Sprintf("sleep-%d-day", daysBefore), checkpoint)
		if err != nil {
			return "", err
		}
		if !woke {
			// точка уже прошла, запуск до неё не засыпал
			continue
		}

		stepID := fmt.Sprintf("reminder-%d-day", daysBefore)
		message := *info
		message.DaysBefore = daysBefore
		err = eng.RunOnce(ctx, stepID, func(context.Context) error {
			w.log.Info("publishing renewal reminder",
				slog.Int("subscription_id", subscriptionID),
				slog.Int("days_before", daysBefore))
			return w.publisher.PublishReminder(message)
		})
		if err != nil {
			return "", err
		}
	}
	return "all reminders sent", nil
}
