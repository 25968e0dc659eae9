//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "vouch/pkg/platform/audit"
	"vouch/pkg/testutil/containers"
)

func TestSinkAgainstBroker(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := kgo.NewClient(kgo.SeedBrokers(rp.Broker), kgo.AllowAutoTopicCreation())
	require.NoError(t, err)
	defer producer.Close()

	sink, err := New(producer, "vouch.events")
	require.NoError(t, err)
	require.NoError(t, sink.Append(ctx, audit.Event{ID: "e1", Action: "verifier_added", Subject: "v1"}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("vouch.events"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)
	require.Equal(t, []byte("v1"), records[0].Key)
}
