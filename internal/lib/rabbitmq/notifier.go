package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Notifier публикует доменные уведомления в exchange notifications.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создает Notifier поверх открытого канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// PublishReminder отправляет напоминание о продлении в очередь напоминаний.
func (n *Notifier) PublishReminder(info models.ReminderInfo) error {
	return PublishMessage(n.ch, ExchangeName, RoutingKeyReminder, info)
}

// PublishCreated отправляет подтверждение о создании подписки.
func (n *Notifier) PublishCreated(info models.CreatedInfo) error {
	return PublishMessage(n.ch, ExchangeName, RoutingKeyCreated, info)
}
