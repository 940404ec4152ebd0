package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/pkg/logger"
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
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "storefront.events", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"storefront.events:topic"}, ch.declared)

	err = p.Publish(context.Background(), events.New(events.OrderStatusChanged, "o-1", map[string]string{"to": "Confirmed"}))
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "storefront.events", got.exchange)
	assert.Equal(t, events.OrderStatusChanged, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var ev events.Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &ev))
	assert.Equal(t, "o-1", ev.Key)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	cause := errors.New("channel/connection is not open")
	ch := &fakeChannel{publishErr: cause}
	p, err := NewPublisher(ch, "storefront.events", logger.Nop())
	require.NoError(t, err)

	err = p.Publish(context.Background(), events.New(events.OrderDeleted, "o-1", nil))
	assert.ErrorIs(t, err, cause)
}
