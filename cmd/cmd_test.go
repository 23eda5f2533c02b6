package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/testutil"
	"github.com/pitchlab/tactics.report/internal/workflow"
)

// setupWorkspace points the package-level flag state at temp locations.
// CLI commands share that state, so pipeline tests here run sequentially.
func setupWorkspace(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "tactics.db")
	artifactsDir = filepath.Join(dir, "artifacts")
	tuning = config.EmptyTuningConfig()
}

func TestPipelineCommands(t *testing.T) {
	setupWorkspace(t)
	ctx := context.Background()

	feedPath := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(feedPath, testutil.CanonicalFeed("m1"), 0o644))

	ingestMatchID = "m1"
	ingestSource = "canonical"
	require.NoError(t, runIngest(ingestCmd, []string{feedPath}))

	store, err := openStore()
	require.NoError(t, err)

	// The raw feed is kept for job-fabric reprocessing.
	_, err = store.GetObject(ctx, artifact.FeedKey("m1"))
	require.NoError(t, err)

	require.NoError(t, store.PutTable(ctx, artifact.TrackingKey("m1"), testutil.TrackingTable(2, 100, 25.0)))

	stabilizeIn = ""
	stabilizeFPS = 0
	require.NoError(t, runStabilize(stabilizeCmd, []string{"m1"}))

	require.NoError(t, runMetrics(metricsCmd, []string{"m1"}))

	db, err := openDB()
	require.NoError(t, err)
	defer db.Close()
	stats, err := db.GetPhysicalStats(ctx, "m1")
	require.NoError(t, err)
	assert.NotEmpty(t, stats)

	reportTeamID = testutil.HomeTeamID
	reportTitle = ""
	reportCharts = true
	reportOut = filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, runReport(reportCmd, []string{"m1"}))

	data, err := os.ReadFile(reportOut)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.0", doc["schema_version"])
}

func TestIngestMissingFeedFile(t *testing.T) {
	setupWorkspace(t)
	ingestMatchID = "m2"
	ingestSource = "canonical"
	err := runIngest(ingestCmd, []string{filepath.Join(t.TempDir(), "absent.json")})
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestStabilizeWithoutTable(t *testing.T) {
	setupWorkspace(t)
	stabilizeIn = ""
	stabilizeFPS = 0
	err := runStabilize(stabilizeCmd, []string{"nope"})
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestRunStageRejectsBadPayload(t *testing.T) {
	setupWorkspace(t)
	db, err := openDB()
	require.NoError(t, err)
	defer db.Close()
	store, err := openStore()
	require.NoError(t, err)

	_, err = runStage(workflow.Metrics(localDeps(db, store)), jobs.KindMetrics, map[string]any{})
	assert.True(t, fault.IsKind(err, fault.BadInput))
}
