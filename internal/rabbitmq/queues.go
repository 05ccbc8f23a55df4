package rabbitmq

// ContactExchange обменник сообщений обратной связи.
const ContactExchange = "sacola.contato"

// Очередь и ключ маршрутизации для отправки писем.
const (
	ContactQueue      = "contato.email"
	ContactRoutingKey = "email"
)

// QueueConfig очередь и ее ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetContactQueues очереди, которые объявляют издатель и потребитель.
func GetContactQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ContactQueue, RoutingKey: ContactRoutingKey},
	}
}
