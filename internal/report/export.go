package report

import (
	"encoding/json"
	"time"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// SchemaVersion identifies the JSON export layout.
const SchemaVersion = "1.0"

// ChartDataToken replaces chart payloads in the JSON export. Consumers
// re-request charts through the renderer instead of carrying them inline.
const ChartDataToken = "[CHART_DATA]"

type exportDocument struct {
	SchemaVersion string          `json:"schema_version"`
	MatchID       string          `json:"match_id"`
	TeamID        string          `json:"team_id,omitempty"`
	Title         string          `json:"title"`
	GeneratedAt   string          `json:"generated_at"`
	Sections      []exportSection `json:"sections"`
}

type exportSection struct {
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	Content     any         `json:"content"`
	Order       int         `json:"order"`
	Description string      `json:"description,omitempty"`
}

// ExportJSON serializes the report deterministically. Timestamps are UTC
// with a Z suffix; chart payloads become the ChartDataToken literal.
func ExportJSON(r *TacticalReport) ([]byte, error) {
	doc := exportDocument{
		SchemaVersion: SchemaVersion,
		MatchID:       r.MatchID,
		TeamID:        r.TeamID,
		Title:         r.Title,
		GeneratedAt:   r.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for _, s := range r.Sections() {
		es := exportSection{
			Title:       s.Title,
			ContentType: s.ContentType,
			Content:     s.Content,
			Order:       s.Order,
			Description: s.Description,
		}
		if s.ContentType == ContentChart {
			es.Content = ChartDataToken
		}
		doc.Sections = append(doc.Sections, es)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "serialize report for match %s", r.MatchID)
	}
	return data, nil
}
