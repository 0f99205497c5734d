// Package mq is a thin RabbitMQ publisher/consumer pair on a topic exchange.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends JSON messages to one exchange. Safe for concurrent use:
// amqp091 serialises publishes on a channel.
type Publisher struct {
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
}

// NewPublisher dials url and declares a durable exchange.
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Str("type", exchangeType).Msg("rabbitmq publisher ready")
	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish marshals message as JSON and publishes it persistently.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	msg, err := encode(message)
	if err != nil {
		return err
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	log.Debug().Str("routing_key", routingKey).RawJSON("body", msg.Body).Msg("message published")
	return nil
}

func encode(message interface{}) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}, nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Consumer reads one durable queue bound to an exchange.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer declares exchange and queue and binds routingKeys (wildcards allowed).
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	fail := func(err error) (*Consumer, error) {
		channel.Close()
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("declare exchange %s: %w", exchange, err))
	}

	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare queue %s: %w", queue, err))
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind %s to %s: %w", key, q.Name, err))
		}
	}

	log.Info().Str("queue", q.Name).Strs("routing_keys", routingKeys).Msg("rabbitmq consumer ready")
	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
	}, nil
}

// Handler processes one message. A returned error requeues the message
// unless it is wrapped with Permanent.
type Handler func(ctx context.Context, routingKey string, body []byte) error

// permanentError marks a failure that redelivery cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the consumer drops the message instead of requeueing it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, came from Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// acknowledger is the part of amqp.Delivery that settles a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consume blocks until ctx is done or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel of %s closed", c.queue)
			}
			settle(ctx, handler, msg, msg.RoutingKey, msg.Body)
		}
	}
}

// settle runs handler and acks, requeues or drops the message.
func settle(ctx context.Context, handler Handler, msg acknowledger, routingKey string, body []byte) {
	err := handler(ctx, routingKey, body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case IsPermanent(err):
		log.Error().Err(err).Str("routing_key", routingKey).Bytes("body", body).Msg("message rejected, dropping")
		_ = msg.Nack(false, false)
	default:
		log.Warn().Err(err).Str("routing_key", routingKey).Msg("message handling failed, requeueing")
		_ = msg.Nack(false, true)
	}
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
