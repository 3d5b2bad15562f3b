package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrBadPayload marks an undecodable message. The consumer rejects such
// messages without requeue so they route to the dead letter queue instead of
// being retried forever.
var ErrBadPayload = errors.New("bad payload")

type MessageHandler func(ctx context.Context, data json.RawMessage) error

type Consumer struct {
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	conn       *amqp091.Connection
	logger     *zap.Logger
}

// NewConsumer creates a consumer for a specific routing key. The queue is
// declared with a dead-letter exchange so rejected messages are preserved.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := DeclareDLQExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(ch, routingKey); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		amqp091.Table{"x-dead-letter-exchange": DLQExchangeName},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		routingKey,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming starts consuming messages. This method blocks and should be
// called in a goroutine.
//
// Ack policy: processing failures are terminal states the handler has already
// persisted, so business errors are logged and acked. Nothing is retried
// automatically; retry is an explicit reprocess call by an operator. Only
// undecodable payloads (ErrBadPayload) are rejected to the DLQ.
func (c *Consumer) StartConsuming() error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"worker",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for msg := range deliveries {
		func() {
			ctx := context.Background()

			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("Handler panic recovered",
						zap.String("routing_key", c.routingKey),
						zap.String("queue", c.queue.Name),
						zap.Any("panic", r),
					)
					if err := msg.Nack(false, false); err != nil {
						c.logger.Error("Failed to nack message after panic",
							zap.String("routing_key", c.routingKey),
							zap.Error(err),
						)
					}
				}
			}()

			if err := c.handler(ctx, msg.Body); err != nil {
				if errors.Is(err, ErrBadPayload) {
					c.logger.Error("Undecodable message, sending to DLQ",
						zap.String("routing_key", c.routingKey),
						zap.String("queue", c.queue.Name),
						zap.Error(err),
					)
					if err := msg.Nack(false, false); err != nil {
						c.logger.Error("Failed to nack message",
							zap.String("routing_key", c.routingKey),
							zap.Error(err),
						)
					}
					return
				}

				c.logger.Error("Handler error",
					zap.String("routing_key", c.routingKey),
					zap.String("queue", c.queue.Name),
					zap.Error(err),
				)
			}

			if err := msg.Ack(false); err != nil {
				c.logger.Error("Failed to ack message",
					zap.String("routing_key", c.routingKey),
					zap.Error(err),
				)
			}
		}()
	}

	return nil
}
