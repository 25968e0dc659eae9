package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "vouch/pkg/platform/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.records = append(p.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSinkAppend(t *testing.T) {
	t.Run("writes keyed json record", func(t *testing.T) {
		p := &recordingProducer{}
		sink, err := New(p, "vouch.events")
		require.NoError(t, err)

		event := audit.Event{ID: "e1", Action: "attestation_recorded", Subject: "abcd", Category: audit.CategoryCompliance}
		require.NoError(t, sink.Append(context.Background(), event))

		require.Len(t, p.records, 1)
		rec := p.records[0]
		assert.Equal(t, "vouch.events", rec.Topic)
		assert.Equal(t, []byte("abcd"), rec.Key)

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, event, decoded)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		p := &recordingProducer{err: errors.New("broker down")}
		sink, err := New(p, "vouch.events")
		require.NoError(t, err)
		err = sink.Append(context.Background(), audit.Event{Action: "x"})
		assert.ErrorContains(t, err, "broker down")
	})

	t.Run("requires producer and topic", func(t *testing.T) {
		_, err := New(nil, "t")
		assert.Error(t, err)
		_, err = New(&recordingProducer{}, "")
		assert.Error(t, err)
	})
}
