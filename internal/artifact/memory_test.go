package artifact

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/fault"
)

func TestMemoryStoreObjectLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.PutObject(ctx, ReportKey("m1"), []byte(`{"ok":true}`), "application/json"))

	data, err := s.GetObject(ctx, ReportKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	stat, err := s.Stat(ctx, ReportKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), stat.Size)
	assert.Equal(t, "application/json", stat.ContentType)

	require.NoError(t, s.Remove(ctx, ReportKey("m1")))
	_, err = s.GetObject(ctx, ReportKey("m1"))
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestMemoryStoreMissingKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetObject(ctx, "tracking/none.ttb")
	assert.True(t, fault.IsKind(err, fault.NotFound))
	_, err = s.Stat(ctx, "tracking/none.ttb")
	assert.True(t, fault.IsKind(err, fault.NotFound))
	assert.True(t, fault.IsKind(s.Remove(ctx, "tracking/none.ttb"), fault.NotFound))
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.PutObject(ctx, "k", []byte("first"), "text/plain"))
	require.NoError(t, s.PutObject(ctx, "k", []byte("second"), "text/plain"))

	data, err := s.GetObject(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestMemoryStoreCopiesData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	buf := []byte("original")
	require.NoError(t, s.PutObject(ctx, "k", buf, "text/plain"))
	buf[0] = 'X'

	data, err := s.GetObject(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestMemoryStoreTableRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.PutTable(ctx, TrackingKey("m1"), sampleTable(true)))

	stat, err := s.Stat(ctx, TrackingKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, TableContentType, stat.ContentType)

	got, err := s.GetTable(ctx, TrackingKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), int64(got.Len()))
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.PutObject(ctx, "shared", []byte("x"), "text/plain"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.PutObject(ctx, fmt.Sprintf("k-%d", i), []byte("v"), "text/plain")
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.GetObject(ctx, "shared")
		}()
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		_, err := s.GetObject(ctx, fmt.Sprintf("k-%d", i))
		assert.NoError(t, err)
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.PutObject(ctx, "k", []byte("v"), "text/plain")
	assert.True(t, fault.IsKind(err, fault.Cancelled))
}

func TestBusDeliversInOrder(t *testing.T) {
	t.Parallel()
	b := NewBus()

	var got []string
	b.Subscribe("ingestion.completed", func(ev DomainEvent) { got = append(got, "specific:"+ev.MatchID) })
	b.Subscribe("", func(ev DomainEvent) { got = append(got, "wildcard:"+ev.Kind) })

	b.Publish(DomainEvent{Kind: "ingestion.completed", MatchID: "m1"})
	b.Publish(DomainEvent{Kind: "report.stored", MatchID: "m1"})

	assert.Equal(t, []string{
		"specific:m1",
		"wildcard:ingestion.completed",
		"wildcard:report.stored",
	}, got)
}

func TestBusStampsOccurredAt(t *testing.T) {
	t.Parallel()
	b := NewBus()

	var got DomainEvent
	b.Subscribe("k", func(ev DomainEvent) { got = ev })
	b.Publish(DomainEvent{Kind: "k"})
	assert.False(t, got.OccurredAt.IsZero())
}
