// Package reminderworker собирает процесс исполнителя workflow напоминаний:
// журнал запусков в Postgres, публикация напоминаний в RabbitMQ и цикл
// опроса созревших запусков.
package reminderworker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	reminderservice "github.com/magabrotheeeer/subscription-tracker/internal/services/reminder"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// App представляет процесс исполнителя напоминаний.
type App struct {
	worker *reminderservice.Worker
	conn   *amqp.Connection
	ch     *amqp.Channel
	db     *repository.Storage
	logger *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр процесса исполнителя.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnectionString, 5, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(db); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	notifier := rabbitmq.NewNotifier(ch)
	workflow := reminderservice.NewWorkflow(db, notifier, logger)
	worker := reminderservice.NewWorker(db, workflow, logger,
		cfg.Reminder.PollInterval, cfg.Reminder.ClaimLimit)

	return &App{
		worker: worker,
		conn:   conn,
		ch:     ch,
		db:     db,
		logger: logger,
	}, nil
}

// Run запускает цикл опроса до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.worker.Start(ctx)

	a.logger.Info("reminder worker shutting down gracefully")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	_ = a.db.DB.Close()
	return nil
}
