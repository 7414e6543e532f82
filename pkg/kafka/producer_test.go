package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("65f1c2a9e4b0a1b2c3d4e5f6").
		WithValue(map[string]string{"type": "booking.created"}).
		WithEventType("booking.created").
		WithSource("dormitory").
		Build()
	require.NoError(t, err)
	return msg
}

func TestMessageBuilder(t *testing.T) {
	msg := buildMessage(t)

	assert.Len(t, msg.GetEventID(), 36)
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	assert.Empty(t, msg.GetCorrelationID())

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "booking.created", payload["type"])
}

func TestMessageBuilder_EncodingFailure(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "dormitory.bookings")

	require.NoError(t, producer.Publish(context.Background(), buildMessage(t)))

	require.Len(t, writer.written, 1)
	written := writer.written[0]
	assert.Equal(t, "65f1c2a9e4b0a1b2c3d4e5f6", string(written.Key))

	headers := map[string]string{}
	for _, h := range written.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "booking.created", headers[HeaderEventType])
	assert.Equal(t, "dormitory", headers[HeaderSource])
}

func TestPublish_RejectsIncompleteMessages(t *testing.T) {
	producer := NewProducerWithWriter(&fakeWriter{}, "t")

	assert.ErrorIs(t, producer.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, producer.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestPublish_WriterFailure(t *testing.T) {
	cause := errors.New("leader not available")
	producer := NewProducerWithWriter(&fakeWriter{err: cause}, "t")

	err := producer.Publish(context.Background(), buildMessage(t))
	assert.ErrorIs(t, err, cause)
}

func TestPublish_MiddlewareOrder(t *testing.T) {
	producer := NewProducerWithWriter(&fakeWriter{}, "dormitory.bookings")
	var calls []string

	for _, name := range []string{"outer", "inner"} {
		producer.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			calls = append(calls, name+":"+msg.Topic)
			return next(ctx, msg)
		})
	}

	require.NoError(t, producer.Publish(context.Background(), buildMessage(t)))
	assert.Equal(t, []string{"outer:dormitory.bookings", "inner:dormitory.bookings"}, calls)
}

func TestClose(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "t")

	require.NoError(t, producer.Close())
	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
	assert.ErrorIs(t, producer.Publish(context.Background(), buildMessage(t)), ErrProducerClosed)
}
