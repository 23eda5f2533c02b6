package workflow

import (
	"context"
	"fmt"

	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/ports"
)

// Analysis indexes a match's events into the semantic retrieval store so
// later report jobs can ground their narrative. With no index configured
// the job completes as a no-op; ingestion chains here best-effort and must
// never be failed by a missing collaborator.
func Analysis(deps Deps) jobs.Handler {
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		matchID, err := payloadString(job.Payload, "match_id")
		if err != nil {
			return nil, err
		}
		if deps.Index == nil {
			diagf("no vector index configured, skipping indexing for match=%s", matchID)
			return map[string]any{"match_id": matchID, "indexed": 0}, nil
		}

		m, err := deps.DB.LoadMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		docs := matchDocuments(m)
		progress(50)

		if err := deps.Index.Index(ctx, docs); err != nil {
			return nil, err
		}
		opsf("indexed match=%s documents=%d", matchID, len(docs))
		return map[string]any{"match_id": matchID, "indexed": len(docs)}, nil
	}
}

// matchDocuments turns the event stream into retrievable text fragments,
// one per event plus a match header.
func matchDocuments(m *match.Match) []ports.Document {
	docs := make([]ports.Document, 0, len(m.Events)+1)
	docs = append(docs, ports.Document{
		ID:      m.MatchID + "/header",
		MatchID: m.MatchID,
		Text: fmt.Sprintf("Match %s: %s vs %s, %d events.",
			m.MatchID, m.HomeTeamID, m.AwayTeamID, len(m.Events)),
	})
	for _, e := range m.Events {
		text := fmt.Sprintf("%.1fs %s by team %s at (%.1f, %.1f)",
			e.Timestamp, e.Kind, e.TeamID, e.Location.X, e.Location.Y)
		if e.End != nil {
			text += fmt.Sprintf(" to (%.1f, %.1f)", e.End.X, e.End.Y)
		}
		docs = append(docs, ports.Document{
			ID:      m.MatchID + "/" + e.EventID,
			MatchID: m.MatchID,
			Text:    text,
			Meta:    map[string]string{"kind": string(e.Kind), "team_id": e.TeamID},
		})
	}
	return docs
}
