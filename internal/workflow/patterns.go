package workflow

import (
	"context"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/pitch"
	"github.com/pitchlab/tactics.report/internal/possession"
)

// PatternDetection extracts possession sequences from the stored events
// and clusters them into tactical patterns.
func PatternDetection(deps Deps) jobs.Handler {
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		matchID, err := payloadString(job.Payload, "match_id")
		if err != nil {
			return nil, err
		}
		teamID, err := payloadString(job.Payload, "team_id")
		if err != nil {
			return nil, err
		}
		nClusters := int(floatField(job.Payload, "n_clusters"))

		m, err := deps.DB.LoadMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		extractor := possession.NewExtractor(possession.ExtractorConfigFromTuning(deps.Tuning))
		var seqs []*possession.Sequence
		for _, s := range extractor.Extract(matchID, m.Events) {
			if s.TeamID == teamID {
				seqs = append(seqs, s)
			}
		}
		if len(seqs) == 0 {
			return nil, fault.New(fault.NotFound, "no possession sequences for match %s team %s", matchID, teamID)
		}
		progress(40)

		fx, err := possession.NewFeatureExtractor(pitch.StandardDimensions(), m.HomeTeamID)
		if err != nil {
			return nil, err
		}
		detector := possession.NewKMeansDetector(fx, possession.DefaultLabelRules())
		patterns, err := detector.DetectPatterns(matchID, teamID, seqs, nClusters)
		if err != nil {
			return nil, err
		}
		progress(90)

		out := make([]map[string]any, 0, len(patterns))
		for _, p := range patterns {
			out = append(out, p.ToDict())
		}
		opsf("patterns for match=%s team=%s sequences=%d patterns=%d",
			matchID, teamID, len(seqs), len(patterns))
		return map[string]any{
			"match_id":       matchID,
			"team_id":        teamID,
			"sequence_count": len(seqs),
			"patterns":       out,
		}, nil
	}
}
