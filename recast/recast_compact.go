package recast

import (
	"fmt"

	"github.com/gorustyt/navcontour/common"
)

const (
	// NotConnected marks a direction without a walkable neighbour span.
	NotConnected = 0x3f
	// NullRegion is the id of unclaimed space.
	NullRegion = 0
)

type CompactCell struct {
	Index int ///< Index to the first span in the column.
	Count int ///< Number of spans in the column.
}

// / Represents a span of unobstructed space within a compact heightfield.
type CompactSpan struct {
	Y   int ///< The lower extent of the span. (Measured from the heightfield's base.)
	H   int ///< The height of the span.  (Measured from #Y.)
	Reg int ///< The id of the region the span belongs to. (Or zero if not in a region.)
	Con int ///< Packed neighbor connection data.
}

// / A compact, static heightfield representing unobstructed space.
// / Spans live in one arena; neighbours are referenced by their layer
// / index inside the neighbouring column, never by pointer.
type CompactHeightfield struct {
	Width          int           ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height         int           ///< The height of the heightfield. (Along the z-axis in cell units.)
	WalkableHeight int           ///< The walkable height used when linking spans.
	WalkableClimb  int           ///< The walkable climb used when linking spans.
	MaxRegions     int           ///< The maximum region id of any span within the field.
	Bmin           [3]float32    ///< The minimum bounds in world space. [(x, y, z)]
	Bmax           [3]float32    ///< The maximum bounds in world space. [(x, y, z)]
	Cs             float32       ///< The size of each cell. (On the xz-plane.)
	Ch             float32       ///< The height of each cell. (The minimum increment along the y-axis.)
	Cells          []CompactCell ///< Array of cells. [Size: #Width*#Height]
	Spans          []CompactSpan ///< Array of spans.

	lastCell int
}

func NewCompactHeightfield(width, height int, bmin, bmax [3]float32, cs, ch float32) *CompactHeightfield {
	return &CompactHeightfield{
		Width:    width,
		Height:   height,
		Bmin:     bmin,
		Bmax:     bmax,
		Cs:       cs,
		Ch:       ch,
		Cells:    make([]CompactCell, width*height),
		lastCell: -1,
	}
}

// AddSpan appends a span to column (x, z). Columns must be filled in cell
// order (x fastest) and spans of one column bottom to top.
func (chf *CompactHeightfield) AddSpan(x, z, y, h, reg int) error {
	if x < 0 || z < 0 || x >= chf.Width || z >= chf.Height {
		return fmt.Errorf("%w: span at (%d,%d) outside %dx%d grid", ErrInvalidHeightfield, x, z, chf.Width, chf.Height)
	}
	if reg < 0 {
		return fmt.Errorf("%w: negative region %d at (%d,%d)", ErrInvalidHeightfield, reg, x, z)
	}
	ci := x + z*chf.Width
	if ci < chf.lastCell {
		return fmt.Errorf("%w: column (%d,%d) added out of order", ErrInvalidHeightfield, x, z)
	}
	cell := &chf.Cells[ci]
	if ci != chf.lastCell {
		cell.Index = len(chf.Spans)
		cell.Count = 0
		chf.lastCell = ci
	}
	if cell.Count > 0 && chf.Spans[cell.Index+cell.Count-1].Y >= y {
		return fmt.Errorf("%w: span at (%d,%d) y=%d is not above the previous one", ErrInvalidHeightfield, x, z, y)
	}
	if cell.Count >= NotConnected {
		return fmt.Errorf("%w: column (%d,%d) has too many layers", ErrInvalidHeightfield, x, z)
	}
	s := CompactSpan{Y: y, H: h, Reg: reg}
	for dir := 0; dir < 4; dir++ {
		SetCon(&s, dir, NotConnected)
	}
	chf.Spans = append(chf.Spans, s)
	cell.Count++
	chf.MaxRegions = max(chf.MaxRegions, reg)
	return nil
}

func (chf *CompactHeightfield) SpanCount() int {
	return len(chf.Spans)
}

// / Sets the neighbor connection data for the specified direction.
// / @param[in]		span			The span to update.
// / @param[in]		direction		The direction to set. [Limits: 0 <= value < 4]
// / @param[in]		neighborIndex	The index of the neighbor span.
func SetCon(span *CompactSpan, direction, neighborIndex int) {
	shift := direction * 6
	con := span.Con
	span.Con = (con & ^(0x3f << shift)) | ((neighborIndex & 0x3f) << shift)
}

// / Gets neighbor connection data for the specified direction.
// / @param[in]		span		The span to check.
// / @param[in]		direction	The direction to check. [Limits: 0 <= value < 4]
// / @return The neighbor connection data for the specified direction,
// /   or #NotConnected if there is no connection.
func GetCon(span *CompactSpan, direction int) int {
	shift := direction * 6
	return (span.Con >> shift) & 0x3f
}

// Neighbour resolves the span linked from span i at (x, z) in direction dir.
func (chf *CompactHeightfield) Neighbour(x, z, i, dir int) (nx, nz, ni int, ok bool) {
	con := GetCon(&chf.Spans[i], dir)
	if con == NotConnected {
		return 0, 0, -1, false
	}
	nx = x + common.GetDirOffsetX(dir)
	nz = z + common.GetDirOffsetY(dir)
	return nx, nz, chf.Cells[nx+nz*chf.Width].Index + con, true
}

// BuildConnections links every span to the first span of each axis
// neighbour column that leaves at least walkableHeight of clearance and
// whose floor is within walkableClimb.
func (chf *CompactHeightfield) BuildConnections(walkableHeight, walkableClimb int) {
	chf.WalkableHeight = walkableHeight
	chf.WalkableClimb = walkableClimb
	xSize := chf.Width
	zSize := chf.Height
	zStride := xSize // for readability
	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			cell := chf.Cells[x+z*zStride]
			for i := cell.Index; i < cell.Index+cell.Count; i++ {
				span := &chf.Spans[i]

				for dir := 0; dir < 4; dir++ {
					SetCon(span, dir, NotConnected)
					neighborX := x + common.GetDirOffsetX(dir)
					neighborZ := z + common.GetDirOffsetY(dir)
					// First check that the neighbour cell is in bounds.
					if neighborX < 0 || neighborZ < 0 || neighborX >= xSize || neighborZ >= zSize {
						continue
					}

					// Iterate over all neighbour spans and check if any of the is
					// accessible from current cell.
					neighborCell := chf.Cells[neighborX+neighborZ*zStride]
					for k := neighborCell.Index; k < neighborCell.Index+neighborCell.Count; k++ {
						neighborSpan := chf.Spans[k]
						bot := max(span.Y, neighborSpan.Y)
						top := min(span.Y+span.H, neighborSpan.Y+neighborSpan.H)

						// Check that the gap between the spans is walkable,
						// and that the climb height between the gaps is not too high.
						if (top-bot) >= walkableHeight && common.Abs(neighborSpan.Y-span.Y) <= walkableClimb {
							SetCon(span, dir, k-neighborCell.Index)
							break
						}
					}
				}
			}
		}
	}
}

// Validate checks the arena invariants the contour walk relies on.
func (chf *CompactHeightfield) Validate() error {
	if chf.Width <= 0 || chf.Height <= 0 {
		return fmt.Errorf("%w: grid size %dx%d", ErrInvalidHeightfield, chf.Width, chf.Height)
	}
	if !(chf.Cs > 0) || !(chf.Ch > 0) {
		return fmt.Errorf("%w: cell size %v, cell height %v", ErrInvalidHeightfield, chf.Cs, chf.Ch)
	}
	if len(chf.Cells) != chf.Width*chf.Height {
		return fmt.Errorf("%w: %d cells for a %dx%d grid", ErrInvalidHeightfield, len(chf.Cells), chf.Width, chf.Height)
	}
	for ci, c := range chf.Cells {
		if c.Count == 0 {
			continue
		}
		if c.Index < 0 || c.Count < 0 || c.Index+c.Count > len(chf.Spans) {
			return fmt.Errorf("%w: cell %d spans [%d,%d) out of range", ErrInvalidHeightfield, ci, c.Index, c.Index+c.Count)
		}
	}
	for z := 0; z < chf.Height; z++ {
		for x := 0; x < chf.Width; x++ {
			c := chf.Cells[x+z*chf.Width]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if chf.Spans[i].Reg < 0 {
					return fmt.Errorf("%w: span %d has region %d", ErrInvalidHeightfield, i, chf.Spans[i].Reg)
				}
				for dir := 0; dir < 4; dir++ {
					con := GetCon(&chf.Spans[i], dir)
					if con == NotConnected {
						continue
					}
					nx := x + common.GetDirOffsetX(dir)
					nz := z + common.GetDirOffsetY(dir)
					if nx < 0 || nz < 0 || nx >= chf.Width || nz >= chf.Height ||
						con >= chf.Cells[nx+nz*chf.Width].Count {
						return fmt.Errorf("%w: span %d at (%d,%d) links outside the grid in direction %d", ErrInvalidHeightfield, i, x, z, dir)
					}
				}
			}
		}
	}
	return nil
}

// cornerToWorld converts a grid corner and height index to world space.
func (chf *CompactHeightfield) cornerToWorld(cx, y, cz int) common.Vec3 {
	return common.Vec3{
		chf.Bmin[0] + float32(cx)*chf.Cs,
		chf.Bmin[1] + float32(y)*chf.Ch,
		chf.Bmin[2] + float32(cz)*chf.Cs,
	}
}
