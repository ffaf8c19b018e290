// Package fluentlogger создает клиент Fluent Bit для логгер-адаптера.
package fluentlogger

import (
	"errors"
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит конфигурацию для подключения к Fluent Bit.
type Config struct {
	Host      string
	Port      int
	TagPrefix string // общий префикс тегов, обычно имя приложения
	Timeout   time.Duration
	// Async - не блокировать вызывающего на отправке. Для интерактивного CLI включено.
	Async bool
}

// NewClient создает клиент. Соединение устанавливается лениво, поэтому
// ошибки сети проявятся только при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, errors.New("fluentd tag prefix is required")
	}
	if cfg.Host == "" {
		return nil, errors.New("fluentd host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 24224
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	logger, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
		Timeout:    cfg.Timeout,
		Async:      cfg.Async,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return logger, nil
}
