package queue

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NotificationQueue carries notifications from the API to the push consumer.
const NotificationQueue = "notification_delivery"

func Dial(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}

// Publisher sends persistent messages to one durable queue and waits for the broker confirm.
type Publisher struct {
	ch       *amqp.Channel
	queue    string
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

func NewPublisher(conn *amqp.Connection, queue string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		return nil, err
	}
	return &Publisher{
		ch:       ch,
		queue:    queue,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	select {
	case c := <-p.confirms:
		if !c.Ack {
			return fmt.Errorf("publish to %s: not confirmed", p.queue)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// Handler processes one message body. A returned error drops the message after logging.
type Handler func(ctx context.Context, body []byte) error

// Consume delivers messages from queue to h until ctx is cancelled or the channel closes.
func Consume(ctx context.Context, conn *amqp.Connection, queue string, prefetch int, h Handler, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return err
	}
	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	log.Info("queue consumer started", zap.String("queue", queue), zap.Int("prefetch", prefetch))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("consumer channel for %s closed", queue)
			}
			if err := h(ctx, d.Body); err != nil {
				log.Error("queue message failed", zap.String("queue", queue), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
