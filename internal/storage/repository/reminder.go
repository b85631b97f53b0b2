package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// EnqueueRun ставит новый запуск workflow напоминаний с ключом идемпотентности.
// Повторная постановка с тем же ключом молча игнорируется, возвращается false.
func (s *Storage) EnqueueRun(ctx context.Context, subscriptionID int, idempotencyKey string) (bool, error) {
	const op = "storage.EnqueueRun"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reminder_runs (subscription_id, idempotency_key, status, wake_at)
			  VALUES ($1, $2, $3, now())
			  ON CONFLICT (idempotency_key) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query, subscriptionID, idempotencyKey, models.RunStatusPending)
	if err != nil {
		return false, mapError(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// FindDueRuns возвращает запуски, которым пора возобновиться: статус
// pending или sleeping и wake_at не позже текущего момента.
func (s *Storage) FindDueRuns(ctx context.Context, now time.Time, limit int) ([]*models.ReminderRun, error) {
	const op = "storage.FindDueRuns"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscription_id, idempotency_key, status, wake_at,
			      COALESCE(result, ''), created_at, updated_at
			  FROM reminder_runs
			  WHERE status IN ($1, $2) AND wake_at <= $3
			  ORDER BY wake_at
			  LIMIT $4`
	rows, err := s.DB.QueryContext(ctx, query,
		models.RunStatusPending, models.RunStatusSleeping, now, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.ReminderRun
	for rows.Next() {
		var run models.ReminderRun
		if err := rows.Scan(&run.ID, &run.SubscriptionID, &run.IdempotencyKey,
			&run.Status, &run.WakeAt, &run.Result, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SleepRun переводит запуск в статус sleeping до указанного момента.
func (s *Storage) SleepRun(ctx context.Context, runID string, wakeAt time.Time) error {
	const op = "storage.SleepRun"
	query := `UPDATE reminder_runs
			  SET status = $1, wake_at = $2, updated_at = now()
			  WHERE id = $3`
	if _, err := s.DB.ExecContext(ctx, query, models.RunStatusSleeping, wakeAt, runID); err != nil {
		return mapError(op, err)
	}
	return nil
}

// CompleteRun завершает запуск с текстовым результатом.
func (s *Storage) CompleteRun(ctx context.Context, runID, result string) error {
	const op = "storage.CompleteRun"
	query := `UPDATE reminder_runs
			  SET status = $1, result = $2, updated_at = now()
			  WHERE id = $3`
	if _, err := s.DB.ExecContext(ctx, query, models.RunStatusCompleted, result, runID); err != nil {
		return mapError(op, err)
	}
	return nil
}

// FailRun помечает запуск неуспешным с причиной.
func (s *Storage) FailRun(ctx context.Context, runID, reason string) error {
	const op = "storage.FailRun"
	query := `UPDATE reminder_runs
			  SET status = $1, result = $2, updated_at = now()
			  WHERE id = $3`
	if _, err := s.DB.ExecContext(ctx, query, models.RunStatusFailed, reason, runID); err != nil {
		return mapError(op, err)
	}
	return nil
}

// IsStepDone проверяет, выполнялся ли уже шаг с данным идентификатором
// в рамках запуска.
func (s *Storage) IsStepDone(ctx context.Context, runID, stepID string) (bool, error) {
	const op = "storage.IsStepDone"
	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM reminder_steps WHERE run_id = $1 AND step_id = $2
			  )`
	if err := s.DB.QueryRowContext(ctx, query, runID, stepID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// MarkStepDone записывает выполнение шага в журнал запуска.
// Повторная запись того же шага молча игнорируется.
func (s *Storage) MarkStepDone(ctx context.Context, runID, stepID string) error {
	const op = "storage.MarkStepDone"
	query := `INSERT INTO reminder_steps (run_id, step_id)
			  VALUES ($1, $2)
			  ON CONFLICT (run_id, step_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, runID, stepID); err != nil {
		return mapError(op, err)
	}
	return nil
}
