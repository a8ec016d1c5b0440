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

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_Publish_Envelope(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w)

	err := p.Publish(context.Background(), "42", "OrderPlaced", map[string]any{"order_id": 42})

	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("42"), w.messages[0].Key)

	event, err := DecodeEvent(w.messages[0].Value)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "OrderPlaced", event.Type)
	assert.Equal(t, "42", event.Key)
	assert.False(t, event.Timestamp.IsZero())

	var data map[string]int
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, 42, data["order_id"])
}

func TestProducer_Publish_WriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w)

	err := p.Publish(context.Background(), "1", "OrderPlaced", struct{}{})

	assert.EqualError(t, err, "leader not available")
}

func TestProducer_Publish_UnmarshalableData(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w)

	err := p.Publish(context.Background(), "1", "OrderPlaced", make(chan int))

	require.Error(t, err)
	assert.Empty(t, w.messages)
}

func TestProducer_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewProducerWithWriter(w).Close())
	assert.True(t, w.closed)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)
}
