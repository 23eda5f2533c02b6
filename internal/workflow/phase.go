package workflow

import (
	"context"
	"sort"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/phase"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// PhaseClassification classifies every stored frame into a game phase and
// summarizes the resulting sequence.
func PhaseClassification(deps Deps) jobs.Handler {
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		matchID, err := payloadString(job.Payload, "match_id")
		if err != nil {
			return nil, err
		}
		teamID, err := payloadString(job.Payload, "team_id")
		if err != nil {
			return nil, err
		}
		if deps.Classifier == nil {
			return nil, fault.New(fault.ModelNotTrained, "no phase classifier configured")
		}

		table, err := deps.Store.GetTable(ctx, artifact.TrackingKey(matchID))
		if err != nil {
			return nil, err
		}
		m, err := deps.DB.LoadMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		frames := framesFromTable(table, m.HomeTeamID, m.AwayTeamID)
		progress(40)

		builder, err := phase.NewBuilder(deps.Classifier, deps.Tuning, deps.Tuning.GetVideoFPS())
		if err != nil {
			return nil, err
		}
		seq, err := builder.Build(ctx, matchID, teamID, frames)
		if err != nil {
			return nil, err
		}
		progress(90)

		percentages := map[string]any{}
		for ph, pct := range seq.Percentages() {
			percentages[string(ph)] = pct
		}
		opsf("classified match=%s team=%s frames=%d dominant=%s",
			matchID, teamID, len(frames), seq.Dominant())
		return map[string]any{
			"match_id":         matchID,
			"team_id":          teamID,
			"frame_count":      len(frames),
			"dominant_phase":   string(seq.Dominant()),
			"transition_count": seq.TransitionCount(),
			"percentages":      percentages,
		}, nil
	}
}

// framesFromTable regroups the columnar trajectory into per-frame match
// snapshots ordered by frame id.
func framesFromTable(t *artifact.Table, homeTeamID, awayTeamID string) []*metrics.MatchFrame {
	byFrame := map[int64]*metrics.MatchFrame{}
	hasTeam := len(t.Team) == len(t.FrameID)
	for i := range t.FrameID {
		f, ok := byFrame[t.FrameID[i]]
		if !ok {
			f = &metrics.MatchFrame{
				FrameID:    int(t.FrameID[i]),
				HomeTeamID: homeTeamID,
				AwayTeamID: awayTeamID,
				Dims:       pitch.StandardDimensions(),
			}
			byFrame[t.FrameID[i]] = f
		}
		pos := pitch.Point{X: t.X[i], Y: t.Y[i]}
		if t.ObjectKind[i] == "ball" {
			ball := pos
			f.Ball = &ball
			continue
		}
		team := ""
		if hasTeam {
			team = t.Team[i]
		}
		f.Players = append(f.Players, metrics.PlayerPosition{
			PlayerID: t.PlayerID[i],
			TeamID:   team,
			Pos:      pos,
		})
	}

	frames := make([]*metrics.MatchFrame, 0, len(byFrame))
	for _, f := range byFrame {
		frames = append(frames, f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].FrameID < frames[j].FrameID })
	return frames
}
