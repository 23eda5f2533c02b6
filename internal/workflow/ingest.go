package workflow

import (
	"context"
	"os"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/ingest"
	"github.com/pitchlab/tactics.report/internal/jobs"
)

// Ingestion parses an external feed into the canonical match aggregate and
// persists it. The raw document comes from the payload's feed_path when
// set, otherwise from the artifact store under feeds/{match_id}.json.
func Ingestion(deps Deps) jobs.Handler {
	return func(ctx context.Context, job jobs.Job, progress func(int)) (map[string]any, error) {
		matchID, err := payloadString(job.Payload, "match_id")
		if err != nil {
			return nil, err
		}
		source := ingest.Source(payloadStringOr(job.Payload, "source", string(ingest.SourceCanonical)))

		var data []byte
		if path, ok := job.Payload["feed_path"].(string); ok && path != "" {
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, fault.Wrap(fault.NotFound, err, "feed file %s", path)
			}
		} else {
			data, err = deps.Store.GetObject(ctx, artifact.FeedKey(matchID))
			if err != nil {
				return nil, err
			}
		}
		progress(25)

		m, err := ingest.ParseFeed(data, source)
		if err != nil {
			return nil, err
		}
		if m.MatchID != matchID {
			return nil, fault.New(fault.BadInput, "feed match id %q does not match payload %q", m.MatchID, matchID)
		}
		progress(60)

		if err := deps.DB.SaveMatch(ctx, m); err != nil {
			return nil, err
		}
		opsf("ingested match=%s source=%s events=%d", m.MatchID, source, len(m.Events))
		return map[string]any{
			"match_id":    m.MatchID,
			"event_count": len(m.Events),
			"source":      string(source),
		}, nil
	}
}
