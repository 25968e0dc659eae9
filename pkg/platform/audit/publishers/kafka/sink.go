// Package kafka forwards audit events to a Kafka topic as JSON, keyed by
// subject so every event about one entity lands on the same partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "vouch/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink is an audit.Sink writing to Kafka.
type Sink struct {
	producer Producer
	topic    string
}

func New(producer Producer, topic string) (*Sink, error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	return &Sink{producer: producer, topic: topic}, nil
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
