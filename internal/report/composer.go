package report

import (
	"context"
	"fmt"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/ports"
	"github.com/pitchlab/tactics.report/internal/storage/sqlite"
)

// MetricsSource is the slice of the sqlite store the composer reads.
// *sqlite.DB satisfies it directly.
type MetricsSource interface {
	GetPhysicalStats(ctx context.Context, matchID string) ([]sqlite.PlayerStats, error)
	GetPPDA(ctx context.Context, matchID, teamID string) (metrics.PPDA, error)
}

// ComposeRequest selects what goes into one report.
type ComposeRequest struct {
	MatchID           string
	TeamID            string
	Title             string
	IncludeCharts     bool
	IncludeAIAnalysis bool
	// Query steers the analysis provider; empty means a general summary.
	Query string
}

// Composer assembles tactical reports. Analysis and retrieval providers
// are optional; charts degrade to absent when no trajectory artifact
// exists yet.
type Composer struct {
	stats    MetricsSource
	store    artifact.Store
	charts   ChartAdapter
	analysis ports.AnalysisProvider
	index    ports.VectorIndex
}

// NewComposer wires the composer's collaborators. charts may be nil when
// the caller never requests chart sections.
func NewComposer(stats MetricsSource, store artifact.Store, charts ChartAdapter, analysis ports.AnalysisProvider, index ports.VectorIndex) *Composer {
	return &Composer{stats: stats, store: store, charts: charts, analysis: analysis, index: index}
}

// Compose builds the report for one match and team. Missing metrics or
// trajectories reduce the report rather than failing it; only invalid
// requests and store faults are errors.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (*TacticalReport, error) {
	if req.MatchID == "" {
		return nil, fault.New(fault.BadInput, "report requires a match_id")
	}
	title := req.Title
	if title == "" {
		title = fmt.Sprintf("Tactical Report %s", req.MatchID)
	}
	r := NewTacticalReport(req.MatchID, req.TeamID, title)

	players, err := c.stats.GetPhysicalStats(ctx, req.MatchID)
	if err != nil {
		return nil, err
	}
	ppda, ppdaErr := c.stats.GetPPDA(ctx, req.MatchID, req.TeamID)
	havePPDA := ppdaErr == nil
	if ppdaErr != nil && !fault.IsKind(ppdaErr, fault.NotFound) {
		return nil, ppdaErr
	}

	if len(players) > 0 || havePPDA {
		content := map[string]any{}
		if len(players) > 0 {
			content["players"] = players
		}
		if havePPDA {
			content["ppda"] = ppda
		}
		if err := r.AddSection(Section{
			Title:       "Key Metrics",
			ContentType: ContentMetrics,
			Content:     content,
			Order:       orderKeyMetrics,
		}); err != nil {
			return nil, err
		}
	}

	if req.IncludeCharts && c.charts != nil {
		if err := c.addChartSection(ctx, r, req.MatchID); err != nil {
			return nil, err
		}
	}

	if req.IncludeAIAnalysis && c.analysis != nil {
		if err := c.addAnalysisSection(ctx, r, req); err != nil {
			return nil, err
		}
	}

	r.SetExecutiveSummary(c.summaryText(req, players, ppda, havePPDA))
	opsf("composed report for match=%s team=%s sections=%d", req.MatchID, req.TeamID, r.Len())
	return r, nil
}

func (c *Composer) addChartSection(ctx context.Context, r *TacticalReport, matchID string) error {
	table, err := c.store.GetTable(ctx, artifact.TrackingKey(matchID))
	if fault.IsKind(err, fault.NotFound) {
		diagf("no trajectory artifact for match=%s, skipping chart sections", matchID)
		return nil
	}
	if err != nil {
		return err
	}
	chart, err := c.charts.PositionsChart("Player Positions", table)
	if err != nil {
		return err
	}
	return r.AddSection(Section{
		Title:       "Player Positions",
		ContentType: ContentChart,
		Content:     chart,
		Order:       orderFirstChart,
		Description: "All stabilized positions over the match, colored by detection confidence.",
	})
}

func (c *Composer) addAnalysisSection(ctx context.Context, r *TacticalReport, req ComposeRequest) error {
	query := req.Query
	if query == "" {
		query = "Summarize the team's tactical performance in this match."
	}
	areq := ports.AnalysisRequest{MatchID: req.MatchID, TeamID: req.TeamID, Query: query}
	if c.index != nil {
		docs, err := c.index.Query(ctx, req.MatchID, query, 5)
		if err != nil {
			// Retrieval is an enrichment; the provider can answer without it.
			diagf("context retrieval for match=%s failed: %v", req.MatchID, err)
		} else {
			areq.Context = docs
		}
	}
	text, err := c.analysis.Analyze(ctx, areq)
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "analysis provider")
	}
	return r.AddSection(Section{
		Title:       "AI Tactical Analysis",
		ContentType: ContentAIAnalysis,
		Content:     text,
		Order:       orderAIAnalysis,
	})
}

func (c *Composer) summaryText(req ComposeRequest, players []sqlite.PlayerStats, ppda metrics.PPDA, havePPDA bool) string {
	s := fmt.Sprintf("Match %s", req.MatchID)
	if req.TeamID != "" {
		s += fmt.Sprintf(", team %s", req.TeamID)
	}
	s += fmt.Sprintf(". Physical metrics available for %d players.", len(players))
	if havePPDA {
		if ppda.IsFinite() {
			s += fmt.Sprintf(" PPDA %.2f.", ppda.Value())
		} else {
			s += " PPDA undefined (no defensive actions recorded)."
		}
	}
	return s
}
