package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg := EmptyTuningConfig()

	assert.Equal(t, 11, cfg.GetSmoothingWindow())
	assert.Equal(t, 2, cfg.GetSmoothingPolyorder())
	assert.Equal(t, 15, cfg.GetMinTrackFrames())
	assert.Equal(t, 10, cfg.GetMergeTimeGapFrames())
	assert.InDelta(t, 2.0, cfg.GetMergeDistanceMeters(), 1e-9)
	assert.InDelta(t, 36.0, cfg.GetMaxSpeedKmh(), 1e-9)
	assert.False(t, cfg.GetClipOutlierSpeed())
	assert.InDelta(t, 25.0, cfg.GetSprintThresholdKmh(), 1e-9)
	assert.Equal(t, 24, cfg.GetControlGridHeight())
	assert.Equal(t, 32, cfg.GetControlGridWidth())
	assert.Equal(t, 3, cfg.GetMinSequenceEvents())
	assert.Equal(t, 500, cfg.GetClassifyBatchSize())
}

func TestLoadPartialConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `{"sprint_threshold_kmh": 23.5, "clip_outlier_speed": true}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 23.5, cfg.GetSprintThresholdKmh(), 1e-9)
	assert.True(t, cfg.GetClipOutlierSpeed())
	// Unset fields keep defaults.
	assert.Equal(t, 11, cfg.GetSmoothingWindow())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		json string
	}{
		{"even window", `{"smoothing_window": 10}`},
		{"window below polyorder", `{"smoothing_window": 3, "smoothing_polyorder": 3}`},
		{"negative max speed", `{"max_speed_kmh": -1}`},
		{"bad backoff", `{"retry_base_backoff": "soon"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tc.json)
			_, err := LoadTuningConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := LoadTuningConfig(path)
	assert.Error(t, err)
}

func TestMustLoadDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := MustLoadDefaultConfig()
	assert.Equal(t, 11, cfg.GetSmoothingWindow())
	assert.False(t, cfg.GetClipOutlierSpeed())
}
