package workflow

import (
	"context"
	"strconv"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/track"
)

// Metrics computes physical metrics per player from the stored trajectory
// and PPDA for both teams from the stored events, then upserts everything
// into the metrics store.
func Metrics(deps Deps) jobs.Handler {
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		matchID, err := payloadString(job.Payload, "match_id")
		if err != nil {
			return nil, err
		}

		playerCount, err := physicalStage(ctx, deps, matchID, job.Payload)
		if err != nil {
			return nil, err
		}
		progress(60)

		teams, err := ppdaStage(ctx, deps, matchID)
		if err != nil {
			return nil, err
		}
		progress(95)

		opsf("metrics for match=%s players=%d teams=%d", matchID, playerCount, teams)
		return map[string]any{
			"match_id":     matchID,
			"player_count": playerCount,
			"team_count":   teams,
		}, nil
	}
}

func physicalStage(ctx context.Context, deps Deps, matchID string, payload map[string]any) (int, error) {
	key := payloadStringOr(payload, "tracking_data", artifact.TrackingKey(matchID))
	table, err := deps.Store.GetTable(ctx, key)
	if err != nil {
		return 0, err
	}

	stab, err := track.NewStabilizer(track.StabilizerConfigFromTuning(deps.Tuning))
	if err != nil {
		return 0, err
	}
	fps := deps.Tuning.GetVideoFPS()
	cleaned, err := stab.Process(TableToPoints(table), fps)
	if err != nil {
		return 0, err
	}

	players := cleaned[:0:0]
	for _, p := range cleaned {
		if !p.Kind.IsBall() {
			players = append(players, p)
		}
	}
	trajectories, err := track.Build(players, fps, deps.Tuning.GetSprintThresholdKmh())
	if err != nil {
		return 0, err
	}

	engine := metrics.NewPhysicalEngine()
	count := 0
	for trackID, traj := range trajectories {
		m := engine.Compute(traj)
		if err := deps.DB.UpsertPhysicalStats(ctx, matchID, strconv.Itoa(trackID), m); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func ppdaStage(ctx context.Context, deps Deps, matchID string) (int, error) {
	m, err := deps.DB.LoadMatch(ctx, matchID)
	if err != nil {
		return 0, err
	}
	tm, err := metrics.NewTacticalMatch(m)
	if err != nil {
		return 0, err
	}

	teams := 0
	for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
		ppda := tm.ComputePPDA(teamID, m.OpponentOf(teamID))
		if err := deps.DB.UpsertPPDA(ctx, matchID, teamID, ppda); err != nil {
			return 0, err
		}
		teams++
	}
	return teams, nil
}
