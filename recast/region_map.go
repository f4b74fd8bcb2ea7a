package recast

import (
	"fmt"
	"strings"
)

// RegionMapOptions describes how an ASCII region map becomes a heightfield.
type RegionMapOptions struct {
	Bmin [3]float32
	// Cs and Ch default to 1.
	Cs, Ch float32
	// Heights optionally gives the floor height of every cell, using the
	// same layout and digits as the region map. Missing cells are at 0.
	Heights string
	// WalkableClimb is the largest floor step that still links two spans.
	WalkableClimb int
}

const regionMapClearance = 0xff

// ParseRegionMap builds a single layer heightfield from a text map. Each
// non-empty line is one row, the first line being z = 0. A '.' is a cell
// without a span; '0'-'9' and 'a'-'z' are spans in regions 0 to 35, 0
// being the null region.
func ParseRegionMap(text string, opts RegionMapOptions) (*CompactHeightfield, error) {
	rows := mapRows(text)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty region map", ErrInvalidHeightfield)
	}
	width := len(rows[0])
	for z, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: region map row %d has %d cells, want %d", ErrInvalidHeightfield, z, len(row), width)
		}
	}
	var heights []string
	if opts.Heights != "" {
		heights = mapRows(opts.Heights)
		if len(heights) != len(rows) {
			return nil, fmt.Errorf("%w: height map has %d rows, want %d", ErrInvalidHeightfield, len(heights), len(rows))
		}
	}
	if opts.Cs == 0 {
		opts.Cs = 1
	}
	if opts.Ch == 0 {
		opts.Ch = 1
	}

	maxY := 0
	type cell struct{ y, reg int }
	cells := make([]cell, 0, width*len(rows))
	for z, row := range rows {
		for x := 0; x < width; x++ {
			reg, ok := mapDigit(row[x])
			if row[x] == '.' {
				reg = -1
			} else if !ok {
				return nil, fmt.Errorf("%w: bad region map cell %q at (%d,%d)", ErrInvalidHeightfield, row[x], x, z)
			}
			y := 0
			if heights != nil {
				if x >= len(heights[z]) {
					return nil, fmt.Errorf("%w: height map row %d too short", ErrInvalidHeightfield, z)
				}
				if y, ok = mapDigit(heights[z][x]); !ok {
					return nil, fmt.Errorf("%w: bad height %q at (%d,%d)", ErrInvalidHeightfield, heights[z][x], x, z)
				}
			}
			maxY = max(maxY, y)
			cells = append(cells, cell{y: y, reg: reg})
		}
	}

	bmax := [3]float32{
		opts.Bmin[0] + float32(width)*opts.Cs,
		opts.Bmin[1] + float32(maxY+1)*opts.Ch,
		opts.Bmin[2] + float32(len(rows))*opts.Cs,
	}
	chf := NewCompactHeightfield(width, len(rows), opts.Bmin, bmax, opts.Cs, opts.Ch)
	for ci, c := range cells {
		if c.reg < 0 {
			continue
		}
		if err := chf.AddSpan(ci%width, ci/width, c.y, regionMapClearance, c.reg); err != nil {
			return nil, err
		}
	}
	chf.BuildConnections(1, opts.WalkableClimb)
	return chf, nil
}

func mapRows(text string) []string {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

func mapDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, true
	}
	return 0, false
}
