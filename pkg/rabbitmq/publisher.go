package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel - часть *amqp.Channel, нужная издателю.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// PublisherConfig - настройки обменника.
type PublisherConfig struct {
	ExchangeName    string
	ExchangeType    string // direct, fanout, topic, headers
	DurableExchange bool
	// DeclareExchangeIfMissing - объявить обменник при создании издателя.
	DeclareExchangeIfMissing bool

	Logger Logger
}

func (c PublisherConfig) validate() error {
	if c.DeclareExchangeIfMissing && (c.ExchangeName == "" || c.ExchangeType == "") {
		return errors.New("producer: exchange name and type are required to declare an exchange")
	}
	return nil
}

// Publisher публикует сообщения в один обменник. Безопасен для конкурентного использования.
type Publisher struct {
	config PublisherConfig
	Logger Logger

	mu      sync.Mutex
	channel Channel
}

func NewPublisher(cfg PublisherConfig, ch Channel) (*Publisher, error) {
	if ch == nil {
		return nil, errors.New("producer: channel is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NewNoopLogger()
	}

	if cfg.DeclareExchangeIfMissing {
		logger.Debug("Declaring exchange", "name", cfg.ExchangeName, "type", cfg.ExchangeType)
		err := ch.ExchangeDeclare(cfg.ExchangeName, cfg.ExchangeType, cfg.DurableExchange, false, false, false, nil)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("producer: failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	}

	return &Publisher{config: cfg, Logger: logger, channel: ch}, nil
}

// Publish публикует сообщение с ключом маршрутизации routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return errors.New("producer: publisher is closed")
	}
	if err := p.channel.PublishWithContext(ctx, p.config.ExchangeName, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("producer: failed to publish message: %w", err)
	}
	return nil
}

// Close закрывает канал. Соединением владеет ConnectionManager.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return nil
	}
	err := p.channel.Close()
	p.channel = nil
	if err != nil {
		p.Logger.Error(err, "Error closing channel")
		return err
	}
	p.Logger.Info("Producer closed.")
	return nil
}
