package kafka

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p := NewProducer(Config{
		Brokers: []string{"localhost:9092", "localhost:9093"},
		Topic:   "loan-events",
	})

	require.NotNil(t, p)
	assert.Equal(t, "loan-events", p.Topic())

	// Hash balancing keeps every message with the same key on the same
	// partition, which is what gives per-loan event ordering.
	_, ok := p.writer.Balancer.(*kafkago.Hash)
	assert.True(t, ok)
	assert.Equal(t, kafkago.RequireAll, p.writer.RequiredAcks)
}

func TestPublish_NoMessagesIsANoOp(t *testing.T) {
	// No broker is running; an empty publish must not try to reach one.
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "loan-events"})
	assert.NoError(t, p.Publish(context.Background()))
}

func TestMessageToKafka(t *testing.T) {
	m := Message{
		Key:   []byte("loan-1"),
		Value: []byte(`{"event":"x"}`),
		Headers: map[string]string{
			"event_type": "loan.payment_applied",
		},
	}

	km := m.toKafka()
	assert.Equal(t, []byte("loan-1"), km.Key)
	assert.Equal(t, []byte(`{"event":"x"}`), km.Value)
	require.Len(t, km.Headers, 1)
	assert.Equal(t, "event_type", km.Headers[0].Key)
	assert.Equal(t, []byte("loan.payment_applied"), km.Headers[0].Value)
}
