// Package report composes tactical match reports from persisted metrics,
// trajectory charts and provider-generated analysis text, and exports them
// as schema-versioned JSON.
package report

import (
	"sort"
	"time"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// ContentType is the closed set of section payload categories.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentChart      ContentType = "chart"
	ContentTable      ContentType = "table"
	ContentMetrics    ContentType = "metrics"
	ContentAIAnalysis ContentType = "ai_analysis"
)

var knownContentTypes = map[ContentType]bool{
	ContentText:       true,
	ContentChart:      true,
	ContentTable:      true,
	ContentMetrics:    true,
	ContentAIAnalysis: true,
}

// Valid reports whether the content type is known.
func (c ContentType) Valid() bool { return knownContentTypes[c] }

// Section is one block of a report. Order decides placement; ties keep
// append order.
type Section struct {
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	Content     any         `json:"content"`
	Order       int         `json:"order"`
	Description string      `json:"description,omitempty"`
}

// Reserved orders for the sections the composer always places.
const (
	orderExecutiveSummary = 0
	orderKeyMetrics       = 10
	orderFirstChart       = 20
	orderAIAnalysis       = 90
)

// TacticalReport is the ordered aggregate of sections for one match and
// team. The section list stays sorted by order after every append.
type TacticalReport struct {
	MatchID     string
	TeamID      string
	Title       string
	GeneratedAt time.Time

	sections []Section
}

// NewTacticalReport creates a report pre-seeded with an Executive Summary
// placeholder at the top.
func NewTacticalReport(matchID, teamID, title string) *TacticalReport {
	r := &TacticalReport{
		MatchID:     matchID,
		TeamID:      teamID,
		Title:       title,
		GeneratedAt: time.Now().UTC(),
	}
	r.sections = append(r.sections, Section{
		Title:       "Executive Summary",
		ContentType: ContentText,
		Content:     "",
		Order:       orderExecutiveSummary,
	})
	return r
}

// AddSection appends a section and re-establishes the order invariant.
func (r *TacticalReport) AddSection(s Section) error {
	if s.Title == "" {
		return fault.New(fault.BadInput, "section requires a title")
	}
	if !s.ContentType.Valid() {
		return fault.New(fault.BadInput, "unknown section content type %q", s.ContentType)
	}
	r.sections = append(r.sections, s)
	sort.SliceStable(r.sections, func(i, j int) bool {
		return r.sections[i].Order < r.sections[j].Order
	})
	return nil
}

// SetExecutiveSummary replaces the pre-seeded summary text.
func (r *TacticalReport) SetExecutiveSummary(text string) {
	for i := range r.sections {
		if r.sections[i].Order == orderExecutiveSummary && r.sections[i].ContentType == ContentText {
			r.sections[i].Content = text
			return
		}
	}
}

// Sections returns a copy of the ordered section list.
func (r *TacticalReport) Sections() []Section {
	out := make([]Section, len(r.sections))
	copy(out, r.sections)
	return out
}

// Len returns the section count.
func (r *TacticalReport) Len() int { return len(r.sections) }
