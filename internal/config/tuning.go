package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for analysis tuning
// parameters. All fields are pointers so a partial JSON file only overrides
// the values it names; the Get* accessors supply defaults for the rest.
type TuningConfig struct {
	// Stabilizer params
	SmoothingWindow       *int     `json:"smoothing_window,omitempty"`
	SmoothingPolyorder    *int     `json:"smoothing_polyorder,omitempty"`
	MinTrackFrames        *int     `json:"min_track_duration_frames,omitempty"`
	MergeTimeGapFrames    *int     `json:"merge_time_gap_frames,omitempty"`
	MergeDistanceMeters   *float64 `json:"merge_distance_threshold,omitempty"`
	MaxSpeedKmh           *float64 `json:"max_speed_kmh,omitempty"`
	ClipOutlierSpeed      *bool    `json:"clip_outlier_speed,omitempty"`

	// Physical metrics params
	SprintThresholdKmh *float64 `json:"sprint_threshold_kmh,omitempty"`

	// Pitch control params
	ControlGridHeight  *int     `json:"control_grid_height,omitempty"`
	ControlGridWidth   *int     `json:"control_grid_width,omitempty"`
	ReactionTimeSec    *float64 `json:"reaction_time_sec,omitempty"`
	PlayerMaxSpeedMps  *float64 `json:"player_max_speed_mps,omitempty"`

	// Event inference params
	BallProximityMeters *float64 `json:"ball_proximity_threshold,omitempty"`
	PassMinDistance     *float64 `json:"pass_min_distance,omitempty"`
	PressureDistance    *float64 `json:"pressure_distance,omitempty"`

	// Possession / phase params
	MinSequenceEvents *int `json:"min_sequence_events,omitempty"`
	ClassifyBatchSize *int `json:"classify_batch_size,omitempty"`

	// Video params
	VideoFPS *float64 `json:"video_fps,omitempty"`

	// Job fabric params
	DefaultQueueWorkers *int    `json:"default_queue_workers,omitempty"`
	GPUQueueWorkers     *int    `json:"gpu_queue_workers,omitempty"`
	RetryBaseBackoff    *string `json:"retry_base_backoff,omitempty"` // duration string like "250ms"
	JobDeadline         *string `json:"job_deadline,omitempty"`       // duration string like "10m"
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted from
// the JSON file retain their default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/storage/sqlite/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.SmoothingWindow != nil {
		if *c.SmoothingWindow < 3 || *c.SmoothingWindow%2 == 0 {
			return fmt.Errorf("smoothing_window must be odd and >= 3, got %d", *c.SmoothingWindow)
		}
	}
	if c.SmoothingPolyorder != nil && c.SmoothingWindow != nil {
		if *c.SmoothingWindow < *c.SmoothingPolyorder+2 {
			return fmt.Errorf("smoothing_window must be >= polyorder+2, got window=%d polyorder=%d",
				*c.SmoothingWindow, *c.SmoothingPolyorder)
		}
	}
	if c.MaxSpeedKmh != nil && *c.MaxSpeedKmh <= 0 {
		return fmt.Errorf("max_speed_kmh must be positive, got %f", *c.MaxSpeedKmh)
	}
	if c.MergeDistanceMeters != nil && *c.MergeDistanceMeters < 0 {
		return fmt.Errorf("merge_distance_threshold must be non-negative, got %f", *c.MergeDistanceMeters)
	}
	if c.MinSequenceEvents != nil && *c.MinSequenceEvents < 1 {
		return fmt.Errorf("min_sequence_events must be >= 1, got %d", *c.MinSequenceEvents)
	}
	if c.VideoFPS != nil && *c.VideoFPS <= 0 {
		return fmt.Errorf("video_fps must be positive, got %f", *c.VideoFPS)
	}
	if c.RetryBaseBackoff != nil && *c.RetryBaseBackoff != "" {
		if _, err := time.ParseDuration(*c.RetryBaseBackoff); err != nil {
			return fmt.Errorf("invalid retry_base_backoff '%s': %w", *c.RetryBaseBackoff, err)
		}
	}
	if c.JobDeadline != nil && *c.JobDeadline != "" {
		if _, err := time.ParseDuration(*c.JobDeadline); err != nil {
			return fmt.Errorf("invalid job_deadline '%s': %w", *c.JobDeadline, err)
		}
	}
	return nil
}

// GetSmoothingWindow returns the smoothing_window value or the default.
func (c *TuningConfig) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return 11
	}
	return *c.SmoothingWindow
}

// GetSmoothingPolyorder returns the smoothing_polyorder value or the default.
func (c *TuningConfig) GetSmoothingPolyorder() int {
	if c.SmoothingPolyorder == nil {
		return 2
	}
	return *c.SmoothingPolyorder
}

// GetMinTrackFrames returns the min_track_duration_frames value or the default.
func (c *TuningConfig) GetMinTrackFrames() int {
	if c.MinTrackFrames == nil {
		return 15
	}
	return *c.MinTrackFrames
}

// GetMergeTimeGapFrames returns the merge_time_gap_frames value or the default.
func (c *TuningConfig) GetMergeTimeGapFrames() int {
	if c.MergeTimeGapFrames == nil {
		return 10
	}
	return *c.MergeTimeGapFrames
}

// GetMergeDistanceMeters returns the merge_distance_threshold value or the default.
func (c *TuningConfig) GetMergeDistanceMeters() float64 {
	if c.MergeDistanceMeters == nil {
		return 2.0
	}
	return *c.MergeDistanceMeters
}

// GetMaxSpeedKmh returns the max_speed_kmh value or the default (36 km/h,
// roughly the fastest recorded footballer sprint).
func (c *TuningConfig) GetMaxSpeedKmh() float64 {
	if c.MaxSpeedKmh == nil {
		return 36.0
	}
	return *c.MaxSpeedKmh
}

// GetClipOutlierSpeed returns the clip_outlier_speed value or the default.
// The default is to flag outliers and leave positions untouched.
func (c *TuningConfig) GetClipOutlierSpeed() bool {
	if c.ClipOutlierSpeed == nil {
		return false
	}
	return *c.ClipOutlierSpeed
}

// GetSprintThresholdKmh returns the sprint_threshold_kmh value or the default.
func (c *TuningConfig) GetSprintThresholdKmh() float64 {
	if c.SprintThresholdKmh == nil {
		return 25.0
	}
	return *c.SprintThresholdKmh
}

// GetControlGridHeight returns the control_grid_height value or the default.
func (c *TuningConfig) GetControlGridHeight() int {
	if c.ControlGridHeight == nil {
		return 24
	}
	return *c.ControlGridHeight
}

// GetControlGridWidth returns the control_grid_width value or the default.
func (c *TuningConfig) GetControlGridWidth() int {
	if c.ControlGridWidth == nil {
		return 32
	}
	return *c.ControlGridWidth
}

// GetReactionTimeSec returns the reaction_time_sec value or the default.
func (c *TuningConfig) GetReactionTimeSec() float64 {
	if c.ReactionTimeSec == nil {
		return 0.7
	}
	return *c.ReactionTimeSec
}

// GetPlayerMaxSpeedMps returns the player_max_speed_mps value or the default.
func (c *TuningConfig) GetPlayerMaxSpeedMps() float64 {
	if c.PlayerMaxSpeedMps == nil {
		return 5.0
	}
	return *c.PlayerMaxSpeedMps
}

// GetBallProximityMeters returns the ball_proximity_threshold value or the default.
func (c *TuningConfig) GetBallProximityMeters() float64 {
	if c.BallProximityMeters == nil {
		return 1.5
	}
	return *c.BallProximityMeters
}

// GetPassMinDistance returns the pass_min_distance value or the default.
func (c *TuningConfig) GetPassMinDistance() float64 {
	if c.PassMinDistance == nil {
		return 3.0
	}
	return *c.PassMinDistance
}

// GetPressureDistance returns the pressure_distance value or the default.
func (c *TuningConfig) GetPressureDistance() float64 {
	if c.PressureDistance == nil {
		return 2.0
	}
	return *c.PressureDistance
}

// GetMinSequenceEvents returns the min_sequence_events value or the default.
func (c *TuningConfig) GetMinSequenceEvents() int {
	if c.MinSequenceEvents == nil {
		return 3
	}
	return *c.MinSequenceEvents
}

// GetClassifyBatchSize returns the classify_batch_size value or the default.
func (c *TuningConfig) GetClassifyBatchSize() int {
	if c.ClassifyBatchSize == nil {
		return 500
	}
	return *c.ClassifyBatchSize
}

// GetVideoFPS returns the video_fps value or the default broadcast rate.
func (c *TuningConfig) GetVideoFPS() float64 {
	if c.VideoFPS == nil {
		return 25.0
	}
	return *c.VideoFPS
}

// GetDefaultQueueWorkers returns the default_queue_workers value or the default.
func (c *TuningConfig) GetDefaultQueueWorkers() int {
	if c.DefaultQueueWorkers == nil {
		return 4
	}
	return *c.DefaultQueueWorkers
}

// GetGPUQueueWorkers returns the gpu_queue_workers value or the default.
// GPU inference is serialized by default.
func (c *TuningConfig) GetGPUQueueWorkers() int {
	if c.GPUQueueWorkers == nil {
		return 1
	}
	return *c.GPUQueueWorkers
}

// GetRetryBaseBackoff parses and returns the RetryBaseBackoff as a time.Duration.
func (c *TuningConfig) GetRetryBaseBackoff() time.Duration {
	if c.RetryBaseBackoff == nil || *c.RetryBaseBackoff == "" {
		return 250 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.RetryBaseBackoff)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}

// GetJobDeadline parses and returns the JobDeadline as a time.Duration.
func (c *TuningConfig) GetJobDeadline() time.Duration {
	if c.JobDeadline == nil || *c.JobDeadline == "" {
		return 10 * time.Minute
	}
	d, err := time.ParseDuration(*c.JobDeadline)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}
