package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tactics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp())
	return db
}

func sampleMatch(t *testing.T) *match.Match {
	t.Helper()
	m := match.NewMatch("m1", "home", "away")
	m.Competition = "League"
	m.Season = "2025/26"
	m.MatchDate = "2026-03-14"
	events := []match.Event{
		{EventID: "e1", Kind: match.Pass, Timestamp: 1.0, Location: pitch.Point{X: 30, Y: 34},
			End: &pitch.Point{X: 45, Y: 30}, PlayerID: "p1", TeamID: "home"},
		{EventID: "e2", Kind: match.Carry, Timestamp: 2.5, Location: pitch.Point{X: 45, Y: 30},
			End: &pitch.Point{X: 60, Y: 28}, PlayerID: "p2", TeamID: "home"},
		{EventID: "e3", Kind: match.Interception, Timestamp: 4.0, Location: pitch.Point{X: 60, Y: 28},
			TeamID: "away"},
	}
	for _, e := range events {
		require.NoError(t, m.AppendEvent(e))
	}
	return m
}

func TestMigrateVersionAndDown(t *testing.T) {
	t.Parallel()
	db, err := Open(filepath.Join(t.TempDir(), "tactics.db"))
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp())
	version, dirty, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Up again is a no-op, not an error.
	require.NoError(t, db.MigrateUp())

	require.NoError(t, db.MigrateDown())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

func TestSaveAndLoadMatch(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	m := sampleMatch(t)
	require.NoError(t, db.SaveMatch(ctx, m))

	got, err := db.LoadMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, m.MatchID, got.MatchID)
	assert.Equal(t, m.HomeTeamID, got.HomeTeamID)
	assert.Equal(t, m.AwayTeamID, got.AwayTeamID)
	assert.Equal(t, m.Competition, got.Competition)
	assert.Equal(t, m.Season, got.Season)
	assert.Equal(t, m.MatchDate, got.MatchDate)
	assert.True(t, got.Sealed())

	require.Len(t, got.Events, 3)
	assert.Equal(t, "e1", got.Events[0].EventID)
	assert.Equal(t, match.Pass, got.Events[0].Kind)
	require.NotNil(t, got.Events[0].End)
	assert.InDelta(t, 45.0, got.Events[0].End.X, 1e-9)
	assert.Nil(t, got.Events[2].End)
	assert.Empty(t, got.Events[2].PlayerID)
}

func TestSaveMatchReplacesEvents(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveMatch(ctx, sampleMatch(t)))

	// A re-save with fewer events fully replaces the old list.
	m := match.NewMatch("m1", "home", "away")
	require.NoError(t, m.AppendEvent(match.Event{
		EventID: "e9", Kind: match.Shot, Timestamp: 0.5,
		Location: pitch.Point{X: 95, Y: 34}, TeamID: "home",
	}))
	require.NoError(t, db.SaveMatch(ctx, m))

	got, err := db.LoadMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "e9", got.Events[0].EventID)
}

func TestLoadMatchNotFound(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	_, err := db.LoadMatch(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestListMatchIDs(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2"} {
		m := match.NewMatch(id, "home", "away")
		require.NoError(t, db.SaveMatch(ctx, m))
	}

	ids, err := db.ListMatchIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)
}

func TestPhysicalStatsUpsert(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	first := &metrics.PhysicalMetrics{TotalDistanceKm: 9.1, MaxSpeedKmh: 31.2, AvgSpeedKmh: 6.9, SprintCount: 12}
	require.NoError(t, db.UpsertPhysicalStats(ctx, "m1", "p7", first))

	second := &metrics.PhysicalMetrics{TotalDistanceKm: 10.4, MaxSpeedKmh: 33.0, AvgSpeedKmh: 7.2, SprintCount: 15}
	require.NoError(t, db.UpsertPhysicalStats(ctx, "m1", "p7", second))
	require.NoError(t, db.UpsertPhysicalStats(ctx, "m1", "p3", first))

	rows, err := db.GetPhysicalStats(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p3", rows[0].PlayerID)
	assert.Equal(t, "p7", rows[1].PlayerID)
	assert.InDelta(t, 10.4, rows[1].TotalDistanceKm, 1e-9)
	assert.Equal(t, 15, rows[1].SprintCount)
}

func TestPPDARoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertPPDA(ctx, "m1", "home", metrics.FinitePPDA(8.75)))
	require.NoError(t, db.UpsertPPDA(ctx, "m1", "away", metrics.InfinitePPDA()))

	home, err := db.GetPPDA(ctx, "m1", "home")
	require.NoError(t, err)
	assert.True(t, home.IsFinite())
	assert.InDelta(t, 8.75, home.Value(), 1e-9)

	away, err := db.GetPPDA(ctx, "m1", "away")
	require.NoError(t, err)
	assert.False(t, away.IsFinite())

	// Overwrite flips the infinite case back to a ratio.
	require.NoError(t, db.UpsertPPDA(ctx, "m1", "away", metrics.FinitePPDA(14.0)))
	away, err = db.GetPPDA(ctx, "m1", "away")
	require.NoError(t, err)
	assert.InDelta(t, 14.0, away.Value(), 1e-9)
}

func TestPPDANotFound(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	_, err := db.GetPPDA(context.Background(), "m1", "home")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}
