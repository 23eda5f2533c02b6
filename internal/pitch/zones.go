package pitch

// Third identifies one of the three x-axis bands of the pitch.
type Third int

const (
	DefensiveThird Third = iota
	MiddleThird
	AttackingThird
)

func (t Third) String() string {
	switch t {
	case DefensiveThird:
		return "defensive"
	case MiddleThird:
		return "middle"
	case AttackingThird:
		return "attacking"
	}
	return "unknown"
}

// ThirdOf maps an x coordinate to its band on a pitch of the given length.
// Bands are [0, L/3), [L/3, 2L/3), [2L/3, L]; values past either goal line
// clamp to the nearest band.
func ThirdOf(x, length float64) Third {
	switch {
	case x < length/3:
		return DefensiveThird
	case x < 2*length/3:
		return MiddleThird
	default:
		return AttackingThird
	}
}

// Zone grid used by the possession extractor: 4 columns along x, 3 rows
// along y, 12 zones total. Zone id = col*3 + row, so ids increase toward
// the attacked goal first by column.
const (
	ZoneCols = 4
	ZoneRows = 3
)

// ZoneOf maps a canonical point to its zone id on a pitch of the given
// dimensions. Out-of-bounds coordinates clamp to the edge zones.
func ZoneOf(p Point, d Dimensions) int {
	col := int(p.X / d.Length * ZoneCols)
	if col < 0 {
		col = 0
	}
	if col >= ZoneCols {
		col = ZoneCols - 1
	}
	row := int(p.Y / d.Width * ZoneRows)
	if row < 0 {
		row = 0
	}
	if row >= ZoneRows {
		row = ZoneRows - 1
	}
	return col*ZoneRows + row
}
