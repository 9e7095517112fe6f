// Package notify publishes catalog change messages to RabbitMQ.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/m3rciful/gameclub/core/logger"
)

// Config selects the broker. An empty URL disables publishing.
type Config struct {
	URL      string `yaml:"url" envconfig:"BROKER_URL"`
	Exchange string `yaml:"exchange" envconfig:"BROKER_EXCHANGE"`
}

// DefaultExchange is used when Config.Exchange is empty.
const DefaultExchange = "gameclub.catalog"

// Publisher sends catalog notifications.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

// Envelope is the JSON body of every message.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// NewEnvelope wraps payload with a fresh id.
func NewEnvelope(key string, payload any, now time.Time) Envelope {
	return Envelope{ID: uuid.NewString(), Type: key, OccurredAt: now.UTC(), Data: payload}
}

// Open connects to the broker, or returns a no-op publisher when cfg.URL is empty.
func Open(cfg Config) (Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		logger.Info(logger.Background(), logger.CompNotify, "notify.disabled")
		return Nop{}, nil
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	logger.Info(logger.Background(), logger.CompNotify, "notify.connected",
		slog.String("exchange", exchange),
	)
	return &AMQP{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

// AMQP publishes JSON envelopes to a topic exchange.
type AMQP struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	now      func() time.Time
}

// Publish sends payload under routing key key. The active trace context is
// propagated in message headers.
func (p *AMQP) Publish(ctx context.Context, key string, payload any) error {
	env := NewEnvelope(key, payload, p.now())
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Timestamp:    env.OccurredAt,
		Type:         key,
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	logger.Debug(ctx, logger.CompNotify, "notify.published",
		slog.String("key", key),
		slog.String("message_id", env.ID),
	)
	return nil
}

// Close closes the channel and the connection.
func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Nop drops every message.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

func (Nop) Close() error { return nil }

// headerCarrier adapts AMQP headers to the OpenTelemetry propagation API.
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	v, _ := c[key].(string)
	return v
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
