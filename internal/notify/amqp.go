package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"ledger-service/internal/config"
	"ledger-service/internal/model"
)

// AMQPDispatcher publishes one message per requested channel to the notify
// exchange, routing key "notify.<channel>". The transport services bound to
// those keys own actual delivery; the engine's responsibility ends at the
// queue boundary.
type AMQPDispatcher struct {
	exchange string
	log      *logrus.Logger

	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

func NewAMQPDispatcher(cfg config.RabbitConfig, log *logrus.Logger) (*AMQPDispatcher, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.VHost)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.NotifyExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"exchange": cfg.NotifyExchange,
	}).Info("notification publisher ready")

	return &AMQPDispatcher{
		exchange: cfg.NotifyExchange,
		log:      log,
		conn:     conn,
		channel:  ch,
	}, nil
}

// Notify publishes the notification once per requested channel and reports
// each publish outcome. It never retries: delivery is best-effort and the
// alert event behind the notification is already persisted.
func (d *AMQPDispatcher) Notify(ctx context.Context, n Notification) map[model.Channel]error {
	results := make(map[model.Channel]error, len(n.Channels))

	body, err := json.Marshal(n)
	if err != nil {
		encodeErr := fmt.Errorf("failed to encode notification: %w", err)
		for _, channel := range n.Channels {
			results[channel] = encodeErr
		}
		return results
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, channel := range n.Channels {
		results[channel] = d.channel.PublishWithContext(ctx,
			d.exchange,
			"notify."+string(channel),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    n.ID,
				Timestamp:    n.CreatedAt,
				Body:         body,
			})
	}
	return results
}

func (d *AMQPDispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.channel != nil {
		d.channel.Close()
		d.channel = nil
	}
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	d.log.Info("notification publisher closed")
}
