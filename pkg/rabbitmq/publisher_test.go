package rabbitmq

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	published  []published
	closed     int
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed++
	return nil
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(PublisherConfig{
		ExchangeName:             "estate.events",
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
	}, ch)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"estate.events:topic"}, ch.declared)
}

func TestNewPublisher_Errors(t *testing.T) {
	_, err := NewPublisher(PublisherConfig{}, nil)
	assert.Error(t, err)

	_, err = NewPublisher(PublisherConfig{DeclareExchangeIfMissing: true, ExchangeName: "x"}, &fakeChannel{})
	assert.Error(t, err, "exchange type is required for declaration")

	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err = NewPublisher(PublisherConfig{DeclareExchangeIfMissing: true, ExchangeName: "x", ExchangeType: "topic"}, ch)
	require.Error(t, err)
	assert.Equal(t, 1, ch.closed, "channel is released when declaration fails")
}

func TestPublisher_PublishAndClose(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(PublisherConfig{ExchangeName: "estate.events"}, ch)
	require.NoError(t, err)
	assert.Empty(t, ch.declared)

	require.NoError(t, p.Publish(context.Background(), "inquiry.submitted", amqp.Publishing{Body: []byte(`{}`)}))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "estate.events", ch.published[0].exchange)
	assert.Equal(t, "inquiry.submitted", ch.published[0].key)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, ch.closed)

	assert.Error(t, p.Publish(context.Background(), "k", amqp.Publishing{}))
}

func TestPublisher_PublishErrorIsWrapped(t *testing.T) {
	boom := errors.New("channel closed")
	p, err := NewPublisher(PublisherConfig{}, &fakeChannel{publishErr: boom})
	require.NoError(t, err)

	err = p.Publish(context.Background(), "k", amqp.Publishing{})
	assert.ErrorIs(t, err, boom)
}

func TestNewConnectionManager_RequiresURL(t *testing.T) {
	_, err := NewConnectionManager("", nil)
	assert.Error(t, err)
}
