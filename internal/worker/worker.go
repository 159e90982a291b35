package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blog_backend/internal/events"
	"blog_backend/internal/observability"
	"blog_backend/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxRetries       = 3
	retryCountHeader = "x-retry-count"
	handleTimeout    = 5 * time.Second
)

// publisher is the subset of *amqp.Channel used to requeue a message.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Worker consumes post events and records each one as a PostActivity row.
type Worker struct {
	id      int
	db      *gorm.DB
	queue   string
	metrics *observability.Metrics
}

func New(id int, db *gorm.DB, queueName string, metrics *observability.Metrics) *Worker {
	return &Worker{
		id:      id,
		db:      db,
		queue:   queueName,
		metrics: metrics,
	}
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (w *Worker) Run(ctx context.Context, conn *amqp.Connection) error {
	ch, err := queue.CreateChannel(conn)
	if err != nil {
		return fmt.Errorf("worker %d: %w", w.id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d failed to set QoS: %w", w.id, err)
	}

	if _, err := queue.DeclareQueue(ch, w.queue); err != nil {
		return fmt.Errorf("worker %d: %w", w.id, err)
	}

	msgs, err := ch.ConsumeWithContext(
		ctx,
		w.queue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d failed to start consuming messages: %w", w.id, err)
	}

	logrus.Infof("Worker %d started", w.id)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Worker %d stopping", w.id)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", w.id)
			}
			w.process(ctx, ch, msg)
		}
	}
}

func (w *Worker) process(ctx context.Context, pub publisher, msg amqp.Delivery) {
	w.metrics.EventsConsumedTotal.WithLabelValues(w.queue).Inc()

	var event events.PostEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.reject(msg, "invalid_payload", err)
		return
	}
	if err := event.Validate(); err != nil {
		w.reject(msg, "invalid_payload", err)
		return
	}

	retryCount := retryCountOf(msg)

	logrus.WithFields(logrus.Fields{
		"worker":  w.id,
		"type":    event.Type,
		"post_id": event.PostID,
		"retry":   retryCount,
	}).Info("Processing post event")

	handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if err := recordActivity(handleCtx, w.db, event); err != nil {
		logrus.WithError(err).Error("Failed to record post activity")

		if retryCount >= maxRetries {
			w.reject(msg, "max_retries", err)
			return
		}

		logrus.Infof("Worker %d: requeuing post event (retry %d/%d)", w.id, retryCount+1, maxRetries)

		if err := republishWithRetry(ctx, pub, &msg, retryCount+1); err != nil {
			w.reject(msg, "republish_error", err)
			return
		}

		w.metrics.EventsPublishedTotal.WithLabelValues(w.queue).Inc()
		_ = msg.Ack(false)
		return
	}

	_ = msg.Ack(false)
}

// reject drops msg without requeueing it.
func (w *Worker) reject(msg amqp.Delivery, errorType string, err error) {
	logrus.WithError(err).WithField("error_type", errorType).Warnf("Worker %d dropping message", w.id)
	w.metrics.EventsFailedTotal.WithLabelValues(w.queue, errorType).Inc()
	_ = msg.Nack(false, false)
}

func retryCountOf(msg amqp.Delivery) int32 {
	if msg.Headers == nil {
		return 0
	}
	if count, ok := msg.Headers[retryCountHeader].(int32); ok {
		return count
	}
	return 0
}

func republishWithRetry(ctx context.Context, pub publisher, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryCountHeader] = retryCount

	return pub.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			Type:         msg.Type,
			Timestamp:    msg.Timestamp,
			Body:         msg.Body,
			Headers:      headers,
		},
	)
}
