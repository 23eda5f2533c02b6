package workflow

import (
	"context"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/report"
)

// Report composes the tactical report and stores its JSON export in the
// artifact store under reports/{match_id}.json.
func Report(deps Deps) jobs.Handler {
	composer := report.NewComposer(deps.DB, deps.Store, report.NewEChartsAdapter(), deps.Analysis, deps.Index)
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		matchID, err := payloadString(job.Payload, "match_id")
		if err != nil {
			return nil, err
		}
		teamID, err := payloadString(job.Payload, "team_id")
		if err != nil {
			return nil, err
		}

		r, err := composer.Compose(ctx, report.ComposeRequest{
			MatchID:           matchID,
			TeamID:            teamID,
			Title:             payloadStringOr(job.Payload, "title", ""),
			IncludeCharts:     payloadBool(job.Payload, "include_charts"),
			IncludeAIAnalysis: payloadBool(job.Payload, "include_ai_analysis") && deps.Analysis != nil,
		})
		if err != nil {
			return nil, err
		}
		progress(70)

		data, err := report.ExportJSON(r)
		if err != nil {
			return nil, err
		}
		key := artifact.ReportKey(matchID)
		if err := deps.Store.PutObject(ctx, key, data, "application/json"); err != nil {
			return nil, err
		}

		opsf("report for match=%s team=%s sections=%d bytes=%d", matchID, teamID, r.Len(), len(data))
		return map[string]any{
			"match_id":      matchID,
			"team_id":       teamID,
			"report_key":    key,
			"section_count": r.Len(),
		}, nil
	}
}
