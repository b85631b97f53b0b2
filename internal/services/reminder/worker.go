package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// RunJournal — полный интерфейс журнала запусков для исполнителя.
type RunJournal interface {
	Journal
	FindDueRuns(ctx context.Context, now time.Time, limit int) ([]*models.ReminderRun, error)
	CompleteRun(ctx context.Context, runID, result string) error
	FailRun(ctx context.Context, runID, reason string) error
}

// Worker периодически опрашивает журнал и воспроизводит созревшие запуски.
type Worker struct {
	journal      RunJournal
	workflow     *Workflow
	log          *slog.Logger
	pollInterval time.Duration
	claimLimit   int
}

// NewWorker создает исполнителя workflow напоминаний.
func NewWorker(journal RunJournal, workflow *Workflow, log *slog.Logger,
	pollInterval time.Duration, claimLimit int) *Worker {
	return &Worker{
		journal:      journal,
		workflow:     workflow,
		log:          log,
		pollInterval: pollInterval,
		claimLimit:   claimLimit,
	}
}

// Start запускает цикл опроса до отмены контекста.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("reminder worker started",
		slog.Duration("poll_interval", w.pollInterval))
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.processDueRuns(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("reminder worker stopped")
			return
		case <-ticker.C:
			w.processDueRuns(ctx)
		}
	}
}

// processDueRuns забирает пачку созревших запусков и воспроизводит каждый.
func (w *Worker) processDueRuns(ctx context.Context) {
	runs, err := w.journal.FindDueRuns(ctx, time.Now(), w.claimLimit)
	if err != nil {
		w.log.Error("failed to find due runs", sl.Err(err))
		return
	}
	for _, run := range runs {
		w.replay(ctx, run)
	}
}

// replay воспроизводит один запуск с начала. Сон оставляет запуск в
// журнале до следующего пробуждения, сбой помечает его неуспешным.
func (w *Worker) replay(ctx context.Context, run *models.ReminderRun) {
	eng := NewDurableEngine(w.journal, run.ID)
	result, err := w.workflow.Run(ctx, eng, run.SubscriptionID)
	switch {
	case errors.Is(err, ErrSuspended):
		w.log.Debug("run suspended",
			slog.String("run_id", run.ID),
			slog.Int("subscription_id", run.SubscriptionID))
	case err != nil:
		w.log.Error("run failed",
			slog.String("run_id", run.ID), sl.Err(err))
		if err := w.journal.FailRun(ctx, run.ID, err.Error()); err != nil {
			w.log.Error("failed to mark run as failed",
				slog.String("run_id", run.ID), sl.Err(err))
		}
	default:
		w.log.Info("run completed",
			slog.String("run_id", run.ID),
			slog.String("result", result))
		if err := w.journal.CompleteRun(ctx, run.ID, result); err != nil {
			w.log.Error("failed to mark run as completed",
				slog.String("run_id", run.ID), sl.Err(err))
		}
	}
}
