package metrics

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pitchlab/tactics.report/internal/pitch"
)

//go:embed xt_grid.json
var xtGridResource []byte

// XTGrid is the Expected Threat lookup: a 12×8 table over pitch zones whose
// values increase toward the attacked goal. The table is oriented for a team
// attacking +x; LookupMirrored serves teams attacking −x.
type XTGrid struct {
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Values [][]float64 `json:"values"` // [row][col], row over pitch width
}

var (
	xtOnce   sync.Once
	xtShared *XTGrid
	xtErr    error
)

// LoadXTGrid returns the process-wide xT table, decoding the embedded
// resource on first use.
func LoadXTGrid() (*XTGrid, error) {
	xtOnce.Do(func() {
		g := &XTGrid{}
		if err := json.Unmarshal(xtGridResource, g); err != nil {
			xtErr = fmt.Errorf("decode embedded xT grid: %w", err)
			return
		}
		if g.Rows == 0 || g.Cols == 0 || len(g.Values) != g.Rows {
			xtErr = fmt.Errorf("embedded xT grid has inconsistent shape %dx%d", g.Rows, g.Cols)
			return
		}
		for _, row := range g.Values {
			if len(row) != g.Cols {
				xtErr = fmt.Errorf("embedded xT grid row length %d != %d", len(row), g.Cols)
				return
			}
		}
		xtShared = g
	})
	return xtShared, xtErr
}

// zoneOf maps a canonical point to (row, col) by floor scaling, clamped to
// the grid bounds.
func (g *XTGrid) zoneOf(p pitch.Point, dims pitch.Dimensions) (row, col int) {
	col = int(p.X / dims.Length * float64(g.Cols))
	if col < 0 {
		col = 0
	}
	if col >= g.Cols {
		col = g.Cols - 1
	}
	row = int(p.Y / dims.Width * float64(g.Rows))
	if row < 0 {
		row = 0
	}
	if row >= g.Rows {
		row = g.Rows - 1
	}
	return row, col
}

// Lookup returns the xT value for a team attacking +x.
func (g *XTGrid) Lookup(p pitch.Point, dims pitch.Dimensions) float64 {
	row, col := g.zoneOf(p, dims)
	return g.Values[row][col]
}

// LookupMirrored returns the xT value for a team attacking −x by mirroring
// the zone along both axes.
func (g *XTGrid) LookupMirrored(p pitch.Point, dims pitch.Dimensions) float64 {
	row, col := g.zoneOf(p, dims)
	return g.Values[g.Rows-1-row][g.Cols-1-col]
}
