// Package services реализует durable workflow напоминаний о продлении
// подписки: журнал запусков в Postgres, движок с checkpoint-семантикой
// sleep-until и исполнитель, опрашивающий созревшие запуски.
package services

import (
	"context"
	"errors"
	"time"
)

// ErrSuspended сигнализирует, что запуск уснул до контрольной точки.
// Исполнитель раскручивает workflow по этой ошибке и не трогает запуск
// до наступления wake_at.
var ErrSuspended = errors.New("run suspended until checkpoint")

// Engine — интерфейс движка durable workflow. Каждый шаг выполняется
// не более одного раза за всю жизнь запуска, сон переживает рестарты процесса.
type Engine interface {
	// RunOnce выполняет шаг с данным идентификатором, если он ещё не
	// был выполнен в этом запуске. Повторное воспроизведение пропускает шаг.
	RunOnce(ctx context.Context, stepID string, fn func(ctx context.Context) error) error
	// SuspendUntil усыпляет запуск до указанного момента. Сон — такой же
	// шаг журнала, как и RunOnce: при первой встрече с будущим моментом
	// возвращает ErrSuspended, при воспроизведении после пробуждения —
	// (true, nil). Момент, который уже прошёл и до которого запуск не спал,
	// даёт (false, nil): контрольная точка упущена.
	SuspendUntil(ctx context.Context, stepID string, t time.Time) (bool, error)
}

// Journal определяет методы журнала запусков, нужные движку.
type Journal interface {
	SleepRun(ctx context.Context, runID string, wakeAt time.Time) error
	IsStepDone(ctx context.Context, runID, stepID string) (bool, error)
	MarkStepDone(ctx context.Context, runID, stepID string) error
}

// DurableEngine реализует Engine поверх журнала запусков в хранилище.
type DurableEngine struct {
	journal Journal
	runID   string
	now     func() time.Time
}

// NewDurableEngine создает движок для одного запуска workflow.
func NewDurableEngine(journal Journal, runID string) *DurableEngine {
	return &DurableEngine{journal: journal, runID: runID, now: time.Now}
}

// RunOnce выполняет шаг и фиксирует его в журнале. Между выполнением и
// фиксацией процесс может упасть, поэтому гарантия at-least-once:
// потребители сообщений обязаны переносить дубликаты.
func (e *DurableEngine) RunOnce(ctx context.Context, stepID string, fn func(ctx context.Context) error) error {
	done, err := e.journal.IsStepDone(ctx, e.runID, stepID)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return e.journal.MarkStepDone(ctx, e.runID, stepID)
}

// SuspendUntil фиксирует сон в журнале и возвращает ErrSuspended,
// раскручивая workflow. Завершённый сон при воспроизведении проходится
// насквозь с true; момент в прошлом, до которого запуск не засыпал,
// даёт false — точка упущена.
func (e *DurableEngine) SuspendUntil(ctx context.Context, stepID string, t time.Time) (bool, error) {
	done, err := e.journal.IsStepDone(ctx, e.runID, stepID)
	if err != nil {
		return false, err
	}
	if done {
		return true, nil
	}
	if !t.After(e.now()) {
		return false, nil
	}
	if err := e.journal.SleepRun(ctx, e.runID, t); err != nil {
		return false, err
	}
	if err := e.journal.MarkStepDone(ctx, e.runID, stepID); err != nil {
		return false, err
	}
	return false, ErrSuspended
}
