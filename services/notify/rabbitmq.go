package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	publishTimeout = 5 * time.Second
	reconnectDelay = 5 * time.Second
)

// RabbitMQPublisher publishes notifications to a topic exchange.
type RabbitMQPublisher struct {
	mu           sync.RWMutex
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	url          string
	closed       chan struct{}
}

func NewRabbitMQPublisher(url, exchangeName string) (*RabbitMQPublisher, error) {
	conn, channel, err := dial(url, exchangeName)
	if err != nil {
		return nil, err
	}

	p := &RabbitMQPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		url:          url,
		closed:       make(chan struct{}),
	}
	go p.handleReconnect(conn)

	log.Info().Str("exchange", exchangeName).Msg("RabbitMQ publisher initialized")
	return p, nil
}

func dial(url, exchangeName string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, channel, nil
}

// Notify publishes n with routing key reminder.<type>.
func (p *RabbitMQPublisher) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.RLock()
	channel := p.channel
	p.mu.RUnlock()
	if channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	routingKey := RoutingKey(n.ReminderType)
	err = channel.PublishWithContext(ctx, p.exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
		MessageId:    uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("routing_key", routingKey).Str("exchange", p.exchangeName).Msg("notification published")
	return nil
}

// handleReconnect redials every reconnectDelay after the connection drops, until Close.
func (p *RabbitMQPublisher) handleReconnect(conn *amqp.Connection) {
	for {
		closeErr, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !p.connectionLost(closeErr, ok) {
			return
		}

		p.mu.Lock()
		p.channel = nil
		p.mu.Unlock()

		for {
			select {
			case <-p.closed:
				return
			case <-time.After(reconnectDelay):
			}
			newConn, channel, err := dial(p.url, p.exchangeName)
			if err != nil {
				log.Error().Err(err).Msg("failed to reconnect to RabbitMQ")
				continue
			}
			p.mu.Lock()
			p.conn, p.channel = newConn, channel
			p.mu.Unlock()
			conn = newConn
			log.Info().Msg("reconnected to RabbitMQ")
			break
		}
	}
}

// connectionLost logs a dropped connection and reports whether to redial.
// A close notification without an error still counts as lost unless Close was called.
func (p *RabbitMQPublisher) connectionLost(closeErr *amqp.Error, ok bool) bool {
	if p.stopped() {
		return false
	}
	if !ok || closeErr == nil {
		log.Warn().Msg("RabbitMQ connection closed without an error, reconnecting")
		return true
	}
	log.Error().Err(closeErr).Msg("RabbitMQ connection closed, reconnecting")
	return true
}

func (p *RabbitMQPublisher) stopped() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (p *RabbitMQPublisher) Close() error {
	close(p.closed)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close RabbitMQ channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	log.Info().Msg("RabbitMQ publisher closed")
	return nil
}

// HealthCheck reports whether the broker connection is usable.
func (p *RabbitMQPublisher) HealthCheck() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("RabbitMQ connection is closed")
	}
	if p.channel == nil {
		return errors.New("RabbitMQ channel is nil")
	}
	return nil
}
