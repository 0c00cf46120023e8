// Package broker publishes payment events for the review desk.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/swytch/paydesk/pkg/config"
)

// Publisher sends JSON events to a topic exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close() error
}

// RabbitPublisher publishes on a durable topic exchange over one channel.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
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

func NewRabbitPublisher(rawURL, exchange string) (*RabbitPublisher, error) {
	clean, err := sanitizeAMQPURL(rawURL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp.DialConfig(clean, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to reopen amqp channel: %w", err)
		}
		p.ch = ch
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// LogPublisher is used when no broker is configured; events only reach the log.
type LogPublisher struct {
	Log *zap.SugaredLogger
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, body any) error {
	p.Log.Infow("event_not_published", "routing_key", routingKey, "body", body)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// New dials RabbitMQ when broker.url is set. A broker that is down at startup
// degrades to LogPublisher instead of blocking the payment flow.
func New(lc fx.Lifecycle, cfg *cfgpkg.Config, log *zap.SugaredLogger) Publisher {
	if cfg.Broker.URL == "" {
		return &LogPublisher{Log: log}
	}
	p, err := NewRabbitPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		log.Warnw("broker unavailable; events will only be logged", "err", err)
		return &LogPublisher{Log: log}
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return p.Close() }})
	log.Infow("broker connected", "exchange", cfg.Broker.Exchange)
	return p
}

var Module = fx.Options(
	fx.Provide(New),
)
