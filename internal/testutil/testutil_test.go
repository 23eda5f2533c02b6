package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/ingest"
)

func TestCanonicalFeedParses(t *testing.T) {
	t.Parallel()
	m, err := ingest.ParseFeed(CanonicalFeed("m1"), ingest.SourceCanonical)
	require.NoError(t, err)
	assert.Equal(t, "m1", m.MatchID)
	assert.Equal(t, HomeTeamID, m.HomeTeamID)
	assert.Len(t, m.Events, 13)
}

func TestCanonicalFeedDeterministic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, CanonicalFeed("m1"), CanonicalFeed("m1"))
}

func TestTrackingTableShape(t *testing.T) {
	t.Parallel()
	tab := TrackingTable(2, 50, 25.0)
	require.NoError(t, tab.Validate())
	// 2 players per team plus the ball, per frame.
	assert.Equal(t, 50*5, tab.Len())
	assert.Equal(t, len(tab.FrameID), len(tab.Team))
}
