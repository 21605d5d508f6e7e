// Package queue publishes domain events to RabbitMQ for the highlight pipeline.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"highlight-api/internal/infra/metrics"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Routing keys.
const (
	KeyHighlightRequested = "highlight.requested"
	KeyFootageReady       = "footage.ready"
)

// HighlightRequested asks the condensing service to build a reel.
type HighlightRequested struct {
	ProjectID   string    `json:"project_id"`
	RequestedBy uint      `json:"requested_by"`
	FootageIDs  []string  `json:"footage_ids"`
	Priority    uint8     `json:"priority"`
	Quality     string    `json:"quality"`
	Watermark   bool      `json:"watermark"`
	RequestedAt time.Time `json:"requested_at"`
}

// FootageReady is emitted the first time raw footage finishes processing.
type FootageReady struct {
	ProjectID  string    `json:"project_id"`
	VideoID    string    `json:"video_id"`
	PlaybackID string    `json:"playback_id"`
	ReadyAt    time.Time `json:"ready_at"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, priority uint8, body interface{}) error
	Close()
}

// AMQPPublisher writes JSON messages to a durable topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	log      *zap.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewAMQPPublisher(amqpURL, exchange string, log *zap.Logger) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange, log: log}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, priority uint8, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	// amqp091 channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Priority:     priority,
		Timestamp:    time.Now(),
		Body:         jsonBody,
	})
	p.mu.Unlock()

	metrics.ObserveExternal("rabbitmq", routingKey, err)
	if err != nil {
		return err
	}
	p.log.Debug("published event", zap.String("exchange", p.exchange), zap.String("routing_key", routingKey))
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// FallbackPublisher drops events when no broker is configured.
type FallbackPublisher struct {
	log *zap.Logger
}

func NewFallbackPublisher(log *zap.Logger) *FallbackPublisher {
	return &FallbackPublisher{log: log}
}

func (p *FallbackPublisher) Publish(_ context.Context, routingKey string, _ uint8, _ interface{}) error {
	p.log.Warn("publish skipped, no broker configured", zap.String("routing_key", routingKey))
	return nil
}

func (p *FallbackPublisher) Close() {}
