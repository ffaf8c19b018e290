// Package events публикует доменные события dev-сервера (заявки, избранное, удаление учетной записи).
package events

import (
	"context"
	"encoding/json"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/port"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Ключи маршрутизации, они же типы событий.
const (
	InquirySubmitted = "inquiry.submitted"
	WishlistAdded    = "wishlist.added"
	WishlistRemoved  = "wishlist.removed"
	AccountDeleted   = "account.deleted"
)

const publishTimeout = 5 * time.Second

// Publisher - издатель сообщений брокера.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// Envelope - тело сообщения.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurredAt"`
	TraceID    string    `json:"traceId,omitempty"`
	Payload    any       `json:"payload"`
}

type InquiryPayload struct {
	ReceiptID  string `json:"receiptId"`
	PropertyID int64  `json:"propertyId,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
}

type WishlistPayload struct {
	User          string `json:"user"`
	PropertyID    int64  `json:"propertyId"`
	PropertyTitle string `json:"propertyTitle,omitempty"`
}

type AccountPayload struct {
	UserID string `json:"userId"`
	User   string `json:"user"`
}

// Emitter превращает события в сообщения брокера. nil-Emitter ничего не делает,
// поэтому обработчики вызывают его без проверок.
type Emitter struct {
	publisher Publisher
	source    string
	now       func() time.Time
}

func NewEmitter(publisher Publisher, source string) *Emitter {
	if publisher == nil {
		return nil
	}
	return &Emitter{publisher: publisher, source: source, now: time.Now}
}

// Emit публикует событие. Ошибка брокера только логируется: запрос клиента уже выполнен.
func (e *Emitter) Emit(ctx context.Context, eventType string, payload any) {
	if e == nil {
		return
	}
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "EventEmitter",
		"event_type": eventType,
	})

	traceID := contextkeys.TraceIDFromContext(ctx)
	env := Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		Source:     e.source,
		OccurredAt: e.now().UTC(),
		TraceID:    traceID,
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to encode event", err, nil)
		return
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    env.ID,
		Type:         eventType,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    env.OccurredAt,
		Headers:      amqp.Table{},
	}
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	// контекст запроса завершится вместе с ответом, публикация идет со своим таймаутом
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.publisher.Publish(publishCtx, eventType, msg); err != nil {
		logger.Error("Failed to publish event", err, port.Fields{"event_id": env.ID})
		return
	}
	logger.Debug("Event published", port.Fields{"event_id": env.ID})
}
