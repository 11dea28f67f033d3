package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is one record bound for the event topic.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

func (m Message) toKafka() kafkago.Message {
	km := kafkago.Message{Key: m.Key, Value: m.Value}
	for k, v := range m.Headers {
		km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	return km
}

// Producer writes to a single topic. Messages are keyed by aggregate ID and
// hash-balanced, so all events of one loan land on the same partition and
// consumers see them in order.
type Producer struct {
	writer *kafkago.Writer
}

// NewProducer creates a producer for the configured brokers and topic.
func NewProducer(cfg Config) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
		},
	}
}

// Topic returns the topic this producer writes to.
func (p *Producer) Topic() string {
	return p.writer.Topic
}

// Publish sends the messages, blocking until the brokers acknowledge them.
func (p *Producer) Publish(ctx context.Context, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	records := make([]kafkago.Message, 0, len(messages))
	for _, m := range messages {
		records = append(records, m.toKafka())
	}
	if err := p.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
