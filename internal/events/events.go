// Package events publishes post lifecycle notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blog_backend/internal/observability"
	"blog_backend/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type Type string

const (
	PostCreated Type = "post.created"
	PostUpdated Type = "post.updated"
)

// PostEvent is the message body on the post events queue. AuthorID is the
// identity that performed the write.
type PostEvent struct {
	Type       Type      `json:"type"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e PostEvent) Validate() error {
	switch e.Type {
	case PostCreated, PostUpdated:
	default:
		return fmt.Errorf("unknown event type: %q", e.Type)
	}
	if e.PostID == "" || e.AuthorID == "" {
		return fmt.Errorf("event %s is missing post or author id", e.Type)
	}
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, event PostEvent) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PostEvent) error {
	return nil
}

type AMQPPublisher struct {
	conn    *amqp.Connection
	queue   string
	metrics *observability.Metrics
}

// NewAMQPPublisher declares queueName once and returns a publisher that
// sends to it through the default exchange.
func NewAMQPPublisher(conn *amqp.Connection, queueName string, metrics *observability.Metrics) (*AMQPPublisher, error) {
	ch, err := queue.CreateChannel(conn)
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	if _, err := queue.DeclareQueue(ch, queueName); err != nil {
		return nil, err
	}

	return &AMQPPublisher{conn: conn, queue: queueName, metrics: metrics}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event PostEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := queue.CreateChannel(p.conn)
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.metrics.EventsPublishedTotal.WithLabelValues(p.queue).Inc()
	logrus.WithFields(logrus.Fields{
		"type":    event.Type,
		"post_id": event.PostID,
	}).Debug("Published post event")

	return nil
}
