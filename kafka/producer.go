package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Producer publishes domain events to a single topic, keyed so events for
// one order stay ordered within a partition.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a Kafka producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: w, topic: topic}
}

// Publish writes one message. Callers treat failures as best-effort.
func (p *Producer) Publish(ctx context.Context, key string, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() {
	_ = p.writer.Close()
}
