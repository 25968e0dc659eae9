package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"vouch/internal/platform/config"
)

// New creates a producer client for the configured brokers. Returns nil if
// Kafka is disabled.
func New(cfg config.KafkaConfig) (*kgo.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required when kafka is enabled")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID(cfg.ClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic if it does not exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Health pings the seed brokers.
func Health(ctx context.Context, client *kgo.Client) error {
	return client.Ping(ctx)
}
