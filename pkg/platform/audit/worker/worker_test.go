package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	audit "vouch/pkg/platform/audit"
	"vouch/pkg/platform/audit/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (f *failingSink) Append(context.Context, audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("sink down")
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	store := memory.NewInMemoryStore()
	failing := &failingSink{}
	d := NewDispatcher([]audit.Sink{failing, store}, WithFlushInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.NoError(t, d.Emit(ctx, audit.Event{Action: string(audit.EventVerifierAdded), Subject: "v1"}))
	require.NoError(t, d.Emit(ctx, audit.Event{Action: string(audit.EventProtocolPaused)}))

	require.Eventually(t, func() bool {
		events, _ := store.ListRecent(context.Background(), 0)
		return len(events) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	events, err := store.ListBySubject(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)

	failing.mu.Lock()
	defer failing.mu.Unlock()
	assert.Equal(t, 2, failing.calls)
}

func TestDispatcherFlushesOnShutdown(t *testing.T) {
	store := memory.NewInMemoryStore()
	d := NewDispatcher([]audit.Sink{store}, WithFlushInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Emit(ctx, audit.Event{Action: "campaign_created"}))
	require.NoError(t, d.Run(ctx))

	events, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 0, d.Pending())
}

func TestRingBufferDropsOldest(t *testing.T) {
	b := NewRingBuffer(2)
	b.Enqueue(audit.Event{Action: "a"})
	b.Enqueue(audit.Event{Action: "b"})
	b.Enqueue(audit.Event{Action: "c"})

	assert.Equal(t, int64(1), b.Dropped())
	batch := b.DequeueBatch(10)
	require.Len(t, batch, 2)
	assert.Equal(t, "b", batch[0].Action)
	assert.Equal(t, "c", batch[1].Action)
	assert.Nil(t, b.DequeueBatch(1))
}
