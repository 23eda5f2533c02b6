package artifact

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// Table is a columnar trajectory artifact. All populated columns must
// share one length; Team is optional and nil when the writer had no team
// assignments.
type Table struct {
	FrameID    []int64
	PlayerID   []string
	X          []float64
	Y          []float64
	ObjectKind []string
	Confidence []float64
	Timestamp  []float64
	Team       []string
}

// TableContentType is the content type recorded for encoded tables.
const TableContentType = "application/x-tactics-table"

// tableMagic marks encoded tables; the trailing digit is the format
// version.
var tableMagic = [4]byte{'T', 'T', 'B', '1'}

const (
	colInt64 byte = iota
	colFloat64
	colString
)

// Len returns the row count.
func (t *Table) Len() int { return len(t.FrameID) }

// Validate checks the columns are consistent.
func (t *Table) Validate() error {
	n := len(t.FrameID)
	for name, l := range map[string]int{
		"player_id":   len(t.PlayerID),
		"x":           len(t.X),
		"y":           len(t.Y),
		"object_kind": len(t.ObjectKind),
		"confidence":  len(t.Confidence),
		"timestamp":   len(t.Timestamp),
	} {
		if l != n {
			return fault.New(fault.BadInput, "column %s has %d rows, want %d", name, l, n)
		}
	}
	if t.Team != nil && len(t.Team) != n {
		return fault.New(fault.BadInput, "column team has %d rows, want %d", len(t.Team), n)
	}
	return nil
}

// SortByFrame stably reorders all rows by ascending frame id. Metric
// readers call this when the writer did not guarantee order.
func (t *Table) SortByFrame() {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.FrameID[idx[a]] < t.FrameID[idx[b]] })

	reorderInt64(t.FrameID, idx)
	reorderString(t.PlayerID, idx)
	reorderFloat64(t.X, idx)
	reorderFloat64(t.Y, idx)
	reorderString(t.ObjectKind, idx)
	reorderFloat64(t.Confidence, idx)
	reorderFloat64(t.Timestamp, idx)
	if t.Team != nil {
		reorderString(t.Team, idx)
	}
}

func reorderInt64(col []int64, idx []int) {
	tmp := make([]int64, len(col))
	for i, j := range idx {
		tmp[i] = col[j]
	}
	copy(col, tmp)
}

func reorderFloat64(col []float64, idx []int) {
	tmp := make([]float64, len(col))
	for i, j := range idx {
		tmp[i] = col[j]
	}
	copy(col, tmp)
}

func reorderString(col []string, idx []int) {
	tmp := make([]string, len(col))
	for i, j := range idx {
		tmp[i] = col[j]
	}
	copy(col, tmp)
}

type columnSpec struct {
	name string
	typ  byte
}

// EncodeTable serializes the table into the self-describing columnar
// binary form. The header lists every present column with its name and
// type, so readers can skip columns they do not know.
func EncodeTable(t *Table) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	cols := []columnSpec{
		{"frame_id", colInt64},
		{"player_id", colString},
		{"x", colFloat64},
		{"y", colFloat64},
		{"object_kind", colString},
		{"confidence", colFloat64},
		{"timestamp", colFloat64},
	}
	if t.Team != nil {
		cols = append(cols, columnSpec{"team", colString})
	}

	var buf bytes.Buffer
	buf.Write(tableMagic[:])
	writeUvarint(&buf, uint64(len(cols)))
	for _, c := range cols {
		writeString(&buf, c.name)
		buf.WriteByte(c.typ)
	}
	writeUvarint(&buf, uint64(t.Len()))

	for _, c := range cols {
		switch c.name {
		case "frame_id":
			for _, v := range t.FrameID {
				writeUint64(&buf, uint64(v))
			}
		case "player_id":
			for _, v := range t.PlayerID {
				writeString(&buf, v)
			}
		case "x":
			writeFloatColumn(&buf, t.X)
		case "y":
			writeFloatColumn(&buf, t.Y)
		case "object_kind":
			for _, v := range t.ObjectKind {
				writeString(&buf, v)
			}
		case "confidence":
			writeFloatColumn(&buf, t.Confidence)
		case "timestamp":
			writeFloatColumn(&buf, t.Timestamp)
		case "team":
			for _, v := range t.Team {
				writeString(&buf, v)
			}
		}
	}
	return buf.Bytes(), nil
}

// DecodeTable parses an encoded table. Unknown columns are skipped;
// missing optional columns leave the field nil.
func DecodeTable(data []byte) (*Table, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != tableMagic {
		return nil, fault.New(fault.BadInput, "not a columnar table artifact")
	}

	nCols, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fault.Wrap(fault.BadInput, err, "table header")
	}
	cols := make([]columnSpec, nCols)
	for i := range cols {
		name, err := readString(r)
		if err != nil {
			return nil, fault.Wrap(fault.BadInput, err, "table column header %d", i)
		}
		typ, err := r.ReadByte()
		if err != nil {
			return nil, fault.Wrap(fault.BadInput, err, "table column header %d", i)
		}
		cols[i] = columnSpec{name: name, typ: typ}
	}

	nRows, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fault.Wrap(fault.BadInput, err, "table row count")
	}
	n := int(nRows)

	t := &Table{}
	for _, c := range cols {
		switch c.typ {
		case colInt64:
			vals := make([]int64, n)
			for i := range vals {
				u, err := readUint64(r)
				if err != nil {
					return nil, fault.Wrap(fault.BadInput, err, "column %s", c.name)
				}
				vals[i] = int64(u)
			}
			if c.name == "frame_id" {
				t.FrameID = vals
			}
		case colFloat64:
			vals, err := readFloatColumn(r, n)
			if err != nil {
				return nil, fault.Wrap(fault.BadInput, err, "column %s", c.name)
			}
			switch c.name {
			case "x":
				t.X = vals
			case "y":
				t.Y = vals
			case "confidence":
				t.Confidence = vals
			case "timestamp":
				t.Timestamp = vals
			}
		case colString:
			vals := make([]string, n)
			for i := range vals {
				s, err := readString(r)
				if err != nil {
					return nil, fault.Wrap(fault.BadInput, err, "column %s", c.name)
				}
				vals[i] = s
			}
			switch c.name {
			case "player_id":
				t.PlayerID = vals
			case "object_kind":
				t.ObjectKind = vals
			case "team":
				t.Team = vals
			}
		default:
			return nil, fault.New(fault.BadInput, "column %s has unknown type %d", c.name, c.typ)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	buf.Write(tmp[:binary.PutUvarint(tmp[:], v)])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(tmp[:]), nil
}

func writeFloatColumn(buf *bytes.Buffer, vals []float64) {
	for _, v := range vals {
		writeUint64(buf, math.Float64bits(v))
	}
}

func readFloatColumn(r *bytes.Reader, n int) ([]float64, error) {
	vals := make([]float64, n)
	for i := range vals {
		u, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		vals[i] = math.Float64frombits(u)
	}
	return vals, nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	l, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	if l > uint64(r.Len()) {
		return "", io.ErrUnexpectedEOF
	}
	b := make([]byte, l)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
