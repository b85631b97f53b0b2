package rabbitmq

// ExchangeName — единственный exchange уведомлений приложения.
const ExchangeName = "notifications"

// Routing keys и очереди уведомлений.
const (
	RoutingKeyReminder = "reminder"
	RoutingKeyCreated  = "created"

	QueueReminder = "notification.reminder"
	QueueCreated  = "notification.created"
)

// QueueConfig описывает очередь и её routing key.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые обслуживает notification-sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueReminder, RoutingKey: RoutingKeyReminder},
		{QueueName: QueueCreated, RoutingKey: RoutingKeyCreated},
	}
}
