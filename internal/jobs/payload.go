package jobs

import (
	"fmt"
	"strings"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// IdempotencyKey derives the at-most-once key from a kind's identifying
// payload fields. Jobs of the same kind with the same key share a result.
func IdempotencyKey(kind Kind, payload map[string]any) string {
	switch kind {
	case KindVideoProcessing:
		return fmt.Sprintf("%v|%v", payload["video_path"], payload["mode"])
	case KindCalibration:
		return fmt.Sprintf("%v", payload["video_id"])
	case KindPhaseClassification, KindPatternDetection, KindReport:
		return fmt.Sprintf("%v|%v", payload["match_id"], payload["team_id"])
	default:
		return fmt.Sprintf("%v", payload["match_id"])
	}
}

// ValidatePayload checks a payload against its kind's schema. Validation
// failures are BadInput and never retried.
func ValidatePayload(kind Kind, payload map[string]any) error {
	if !kind.Valid() {
		return fault.New(fault.BadInput, "unknown job kind %q", kind)
	}
	switch kind {
	case KindIngestion:
		return requireStrings(kind, payload, "match_id", "source")

	case KindVideoProcessing:
		if err := requireStrings(kind, payload, "video_path", "output_path", "mode"); err != nil {
			return err
		}
		mode, _ := payload["mode"].(string)
		if mode != "full_match" && mode != "highlights" {
			return fault.New(fault.BadInput, "video_processing mode must be full_match or highlights, got %q", mode)
		}
		return nil

	case KindCalibration:
		if err := requireStrings(kind, payload, "video_id"); err != nil {
			return err
		}
		kps, ok := payload["keypoints"].([]any)
		if !ok {
			return fault.New(fault.BadInput, "calibration payload needs a keypoints list")
		}
		if len(kps) < 4 {
			return fault.New(fault.BadInput, "calibration needs at least 4 keypoints, got %d", len(kps))
		}
		for i, raw := range kps {
			kp, ok := raw.(map[string]any)
			if !ok {
				return fault.New(fault.BadInput, "keypoint %d is not an object", i)
			}
			for _, field := range []string{"pixel_x", "pixel_y", "pitch_x", "pitch_y"} {
				if _, ok := numeric(kp[field]); !ok {
					return fault.New(fault.BadInput, "keypoint %d missing numeric %s", i, field)
				}
			}
		}
		return nil

	case KindMetrics, KindAnalysis:
		return requireStrings(kind, payload, "match_id")

	case KindPhaseClassification:
		if err := requireStrings(kind, payload, "match_id", "team_id"); err != nil {
			return err
		}
		return requireSide(payload)

	case KindPatternDetection:
		if err := requireStrings(kind, payload, "match_id", "team_id"); err != nil {
			return err
		}
		n, ok := numeric(payload["n_clusters"])
		if !ok {
			return fault.New(fault.BadInput, "pattern_detection needs numeric n_clusters")
		}
		if n != float64(int(n)) || n < 2 || n > 16 {
			return fault.New(fault.BadInput, "n_clusters must be an integer in [2,16], got %g", n)
		}
		return nil

	case KindReport:
		if err := requireStrings(kind, payload, "match_id", "team_id", "format"); err != nil {
			return err
		}
		format, _ := payload["format"].(string)
		if format != "pdf" && format != "json" {
			return fault.New(fault.BadInput, "report format must be pdf or json, got %q", format)
		}
		return nil
	}
	return nil
}

func requireStrings(kind Kind, payload map[string]any, fields ...string) error {
	var missing []string
	for _, f := range fields {
		s, ok := payload[f].(string)
		if !ok || s == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fault.New(fault.BadInput, "%s payload missing %s", kind, strings.Join(missing, ", "))
	}
	return nil
}

func requireSide(payload map[string]any) error {
	side, _ := payload["team_id"].(string)
	if side != "home" && side != "away" {
		return fault.New(fault.BadInput, "team_id must be home or away, got %q", side)
	}
	return nil
}

// numeric accepts the types JSON decoding and native callers produce.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
