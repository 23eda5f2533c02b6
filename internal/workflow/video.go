package workflow

import (
	"context"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/pitch"
	"github.com/pitchlab/tactics.report/internal/track"
)

// VideoProcessing runs detection, tracking and stabilization over a video
// and stores the cleaned trajectory table. GPU-bound; the dispatcher
// routes it onto the gpu queue.
func VideoProcessing(deps Deps) jobs.Handler {
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		if deps.Detector == nil || deps.Tracker == nil {
			return nil, fault.New(fault.UpstreamUnavailable, "no detector or tracker configured")
		}
		videoPath, err := payloadString(job.Payload, "video_path")
		if err != nil {
			return nil, err
		}

		detections, err := deps.Detector.DetectBatch(ctx, videoPath, 0, -1)
		if err != nil {
			return nil, fault.Wrap(fault.UpstreamUnavailable, err, "detect %s", videoPath)
		}
		progress(40)

		raw, err := deps.Tracker.Track(ctx, detections)
		if err != nil {
			return nil, fault.Wrap(fault.UpstreamUnavailable, err, "track %s", videoPath)
		}
		progress(60)

		stab, err := track.NewStabilizer(track.StabilizerConfigFromTuning(deps.Tuning))
		if err != nil {
			return nil, err
		}
		cleaned, err := stab.Process(raw, deps.Tuning.GetVideoFPS())
		if err != nil {
			return nil, err
		}
		progress(85)

		matchID := metadataMatchID(job.Payload)
		key := payloadStringOr(job.Payload, "output_path", "")
		if matchID != "" {
			key = artifact.TrackingKey(matchID)
		}
		if key == "" {
			return nil, fault.New(fault.BadInput, "payload needs metadata.match_id or output_path to store the trajectory")
		}
		if err := deps.Store.PutTable(ctx, key, PointsToTable(cleaned)); err != nil {
			return nil, err
		}

		opsf("processed video=%s detections=%d cleaned_points=%d key=%s",
			videoPath, len(detections), len(cleaned), key)
		result := map[string]any{
			"tracking_key": key,
			"point_count":  len(cleaned),
		}
		if matchID != "" {
			result["match_id"] = matchID
		}
		return result, nil
	}
}

func metadataMatchID(payload map[string]any) string {
	meta, ok := payload["metadata"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := meta["match_id"].(string)
	return id
}

// Calibration fits the pixel-to-pitch homography from the payload's
// keypoints. The matrix travels in the job result; the video workflow's
// external tracker applies it.
func Calibration(deps Deps) jobs.Handler {
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		videoID, err := payloadString(job.Payload, "video_id")
		if err != nil {
			return nil, err
		}
		raw, ok := job.Payload["keypoints"].([]any)
		if !ok {
			return nil, fault.New(fault.BadInput, "payload requires keypoints")
		}

		pairs := make([]pitch.Correspondence, 0, len(raw))
		for _, item := range raw {
			kp, ok := item.(map[string]any)
			if !ok {
				return nil, fault.New(fault.BadInput, "keypoint must be an object")
			}
			pairs = append(pairs, pitch.Correspondence{
				Pixel: pitch.Point{X: floatField(kp, "pixel_x"), Y: floatField(kp, "pixel_y")},
				Pitch: pitch.Point{X: floatField(kp, "pitch_x"), Y: floatField(kp, "pitch_y")},
			})
		}
		progress(50)

		h, err := pitch.FitHomography(pairs)
		if err != nil {
			return nil, fault.Wrap(fault.BadInput, err, "calibrate video %s", videoID)
		}

		m := h.Matrix()
		flat := make([]float64, len(m))
		copy(flat, m[:])
		opsf("calibrated video=%s keypoints=%d", videoID, len(pairs))
		return map[string]any{
			"video_id":   videoID,
			"homography": flat,
		}, nil
	}
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
