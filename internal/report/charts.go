package report

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// ChartAdapter renders a positions table into a chart payload. The JSON
// export never carries the payload itself, so adapters are free to emit
// full HTML documents.
type ChartAdapter interface {
	PositionsChart(title string, table *artifact.Table) (string, error)
}

// EChartsAdapter renders pitch scatter charts as self-contained HTML.
type EChartsAdapter struct{}

// NewEChartsAdapter creates the default chart adapter.
func NewEChartsAdapter() *EChartsAdapter { return &EChartsAdapter{} }

// PositionsChart plots every tracked position on the pitch, one series per
// object kind, colored by confidence.
func (a *EChartsAdapter) PositionsChart(title string, table *artifact.Table) (string, error) {
	if err := table.Validate(); err != nil {
		return "", fault.Wrap(fault.BadInput, err, "chart input table")
	}

	series := map[string][]opts.ScatterData{}
	maxConf := 0.0
	for i := range table.FrameID {
		kind := table.ObjectKind[i]
		if table.Confidence[i] > maxConf {
			maxConf = table.Confidence[i]
		}
		series[kind] = append(series[kind], opts.ScatterData{
			Value: []interface{}{table.X[i], table.Y[i], table.Confidence[i]},
		})
	}
	if maxConf == 0 {
		maxConf = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "620px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("points=%d", len(table.FrameID))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: pitch.StandardLength, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: pitch.StandardWidth, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxConf),
			Dimension:  "2",
		}),
	)

	// Stable series order so repeated renders of the same table match.
	for _, kind := range []string{"player", "goalkeeper", "ball", "referee"} {
		pts, ok := series[kind]
		if !ok {
			continue
		}
		scatter.AddSeries(kind, pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
		delete(series, kind)
	}
	for kind, pts := range series {
		scatter.AddSeries(kind, pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return "", fault.Wrap(fault.Internal, err, "render positions chart")
	}
	return buf.String(), nil
}
