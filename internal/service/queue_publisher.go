// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers can ignore failures without interrupting the main
// request flow.
package service

import (
	"context"
	"encoding/json"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/taskboard/internal/config"
	q "github.com/iliyamo/taskboard/internal/queue"
)

// TaskEventPublisher sends task events to whoever listens downstream.
type TaskEventPublisher interface {
	PublishTaskAdded(ctx context.Context, event q.TaskAddedEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishTaskAdded(context.Context, q.TaskAddedEvent) error { return nil }

// NewPublisher returns an AMQP publisher when events are enabled and a
// NopPublisher otherwise.
func NewPublisher(cfg config.EventsConfig, log *zap.Logger) TaskEventPublisher {
	if !cfg.Enabled {
		return NopPublisher{}
	}
	return NewAMQPPublisher(cfg, log)
}

// AMQPPublisher opens a short-lived connection per event.  Task appends are
// rare enough that a pooled channel is not worth the reconnect handling.
type AMQPPublisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewAMQPPublisher(cfg config.EventsConfig, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{url: cfg.URL, queue: cfg.Queue, log: log}
}

// PublishTaskAdded publishes event to the configured queue.  Messages are
// marked as persistent.
func (p *AMQPPublisher) PublishTaskAdded(ctx context.Context, event q.TaskAddedEvent) error {
	conn, err := dial(ctx, p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}

// dial opens a connection whose TCP dial and AMQP handshake both end at
// ctx's deadline.  amqp clears the socket deadline once the connection is
// open.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if deadline, ok := ctx.Deadline(); ok {
				if err := conn.SetDeadline(deadline); err != nil {
					_ = conn.Close()
					return nil, err
				}
			}
			return conn, nil
		},
	})
}

// NewTaskAddedEvent builds the event for a task stored at position.
func NewTaskAddedEvent(text string, position int, now time.Time) q.TaskAddedEvent {
	return q.TaskAddedEvent{
		Text:     text,
		Position: position,
		Total:    position + 1,
		AddedAt:  now.UTC().Format(time.RFC3339),
	}
}
