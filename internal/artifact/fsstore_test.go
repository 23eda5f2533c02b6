package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/fsutil"
)

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(fsutil.NewMemoryFileSystem(), "artifacts")
	require.NoError(t, err)
	return s
}

func TestFSStoreObjectLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFSStore(t)

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

func TestFSStoreTableRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFSStore(t)

	in := &Table{
		FrameID:    []int64{1, 2},
		PlayerID:   []string{"7", "7"},
		X:          []float64{10, 11},
		Y:          []float64{30, 31},
		ObjectKind: []string{"player", "player"},
		Confidence: []float64{0.9, 0.8},
		Timestamp:  []float64{0.04, 0.08},
	}
	require.NoError(t, s.PutTable(ctx, TrackingKey("m1"), in))

	out, err := s.GetTable(ctx, TrackingKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, in.FrameID, out.FrameID)
	assert.Equal(t, in.PlayerID, out.PlayerID)

	stat, err := s.Stat(ctx, TrackingKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, TableContentType, stat.ContentType)
}

func TestFSStoreMissingAndBadKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFSStore(t)

	_, err := s.GetObject(ctx, "feeds/absent.json")
	assert.True(t, fault.IsKind(err, fault.NotFound))

	err = s.Remove(ctx, "feeds/absent.json")
	assert.True(t, fault.IsKind(err, fault.NotFound))

	err = s.PutObject(ctx, "", []byte("x"), "text/plain")
	assert.True(t, fault.IsKind(err, fault.BadInput))

	err = s.PutObject(ctx, "../outside", []byte("x"), "text/plain")
	assert.True(t, fault.IsKind(err, fault.BadInput))
}

func TestFSStoreOverwriteLastWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFSStore(t)

	require.NoError(t, s.PutObject(ctx, FeedKey("m1"), []byte("one"), "application/json"))
	require.NoError(t, s.PutObject(ctx, FeedKey("m1"), []byte("two"), "application/json"))

	data, err := s.GetObject(ctx, FeedKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}
