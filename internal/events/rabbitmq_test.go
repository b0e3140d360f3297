package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
	closeErr  error
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return c.closeErr
}

type recordingConn struct{ closed bool }

func (c *recordingConn) Close() error {
	c.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	p := newRabbitPublisher(&recordingConn{}, ch)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	err := p.Publish(context.Background(), PhotoDeleted, PhotoDeletedPayload("p1", "u1"))
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, []string{QueueName}, ch.keys)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, PhotoDeleted, msg.Type)

	var decoded Message
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, PhotoDeleted, decoded.Event)
	assert.Equal(t, "p1", decoded.Payload["photo_id"])
	assert.True(t, at.Equal(decoded.OccurredAt))
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	brokerErr := errors.New("channel closed")
	p := newRabbitPublisher(&recordingConn{}, &recordingChannel{err: brokerErr})

	err := p.Publish(context.Background(), CommentAdded, nil)
	assert.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), "failed to publish comment_added")
}

func TestRabbitPublisher_Close(t *testing.T) {
	conn := &recordingConn{}
	ch := &recordingChannel{closeErr: errors.New("already closed")}
	p := newRabbitPublisher(conn, ch)

	assert.Error(t, p.Close())
	assert.True(t, ch.closed)
	assert.True(t, conn.closed)
}
