package recast

import (
	"fmt"
	"slices"
	"sort"

	"github.com/gorustyt/navcontour/common"
)

// regionSeed is the first boundary edge found for a region.
type regionSeed struct {
	reg     int
	x, z, i int
	dir     int
	// onlyNullRegionConnection stays set while every boundary edge of the
	// region faces the null region or the grid edge.
	onlyNullRegionConnection bool
}

// findRegionSeeds visits every span once and records, per region, the
// first span and direction whose neighbour is missing or in another region.
func findRegionSeeds(chf *CompactHeightfield) []*regionSeed {
	seeds := make(map[int]*regionSeed)
	w := chf.Width
	for z := 0; z < chf.Height; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				reg := chf.Spans[i].Reg
				if reg == NullRegion {
					continue
				}
				for dir := 0; dir < 4; dir++ {
					r := NullRegion
					if _, _, ni, ok := chf.Neighbour(x, z, i, dir); ok {
						r = chf.Spans[ni].Reg
					}
					if r == reg {
						continue
					}
					seed := seeds[reg]
					if seed == nil {
						seed = &regionSeed{reg: reg, x: x, z: z, i: i, dir: dir, onlyNullRegionConnection: true}
						seeds[reg] = seed
					}
					if r != NullRegion {
						seed.onlyNullRegionConnection = false
					}
				}
			}
		}
	}

	res := make([]*regionSeed, 0, len(seeds))
	for _, seed := range seeds {
		res = append(res, seed)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].reg < res[j].reg
	})
	return res
}

// getCornerHeight returns the highest floor among the spans sharing the
// start corner of edge dir of span i: the span, its neighbours in dir and
// in the previous direction, and the diagonal reached through either.
func getCornerHeight(chf *CompactHeightfield, x, z, i, dir int) int {
	ch := chf.Spans[i].Y
	dirp := common.RotateCCW(dir)

	if ax, az, ai, ok := chf.Neighbour(x, z, i, dir); ok {
		ch = max(ch, chf.Spans[ai].Y)
		if _, _, ai2, ok := chf.Neighbour(ax, az, ai, dirp); ok {
			ch = max(ch, chf.Spans[ai2].Y)
		}
	}
	if ax, az, ai, ok := chf.Neighbour(x, z, i, dirp); ok {
		ch = max(ch, chf.Spans[ai].Y)
		if _, _, ai2, ok := chf.Neighbour(ax, az, ai, dir); ok {
			ch = max(ch, chf.Spans[ai2].Y)
		}
	}
	return ch
}

// walkContour follows the region boundary clockwise from the seed and
// emits one vertex per boundary edge, placed at the edge's start corner.
func walkContour(chf *CompactHeightfield, seed *regionSeed, maxIter int) ([]ContourVertex, error) {
	x, z, i, dir := seed.x, seed.z, seed.i, seed.dir
	reg := chf.Spans[i].Reg

	var verts []ContourVertex
	for iter := 0; ; iter++ {
		if iter >= maxIter {
			return verts, fmt.Errorf("%w: %d steps from span %d dir %d", ErrContourOverflow, maxIter, seed.i, seed.dir)
		}
		nx, nz, ni, ok := chf.Neighbour(x, z, i, dir)
		if !ok || chf.Spans[ni].Reg != reg {
			ext := NullRegion
			if ok {
				ext = chf.Spans[ni].Reg
			}
			// Choose the edge corner
			cx, cz := x, z
			switch dir {
			case 1:
				cz++
			case 2:
				cx++
				cz++
			case 3:
				cx++
			}
			y := getCornerHeight(chf, x, z, i, dir)
			verts = append(verts, ContourVertex{
				Coordinate:       chf.cornerToWorld(cx, y, cz),
				ExternalRegionID: ext,
				InternalRegionID: reg,
				RawIndex:         len(verts),
			})
			dir = common.RotateCW(dir)
		} else {
			x, z, i = nx, nz, ni
			dir = common.RotateCCW(dir)
		}

		if i == seed.i && dir == seed.dir {
			break
		}
	}
	return verts, nil
}

// simplifyContour keeps the raw vertices where the bordering region
// changes. Islands, and loops that never change neighbour, are seeded with
// their max and min corners instead. tessellateAll reports the latter
// case, where no neighbour trace reproduces the boundary.
func simplifyContour(raw []ContourVertex, onlyNullRegionConnection bool) (simplified []ContourVertex, tessellateAll bool) {
	n := len(raw)
	if !onlyNullRegionConnection {
		for i := range raw {
			if raw[i].ExternalRegionID != raw[common.Prev(i, n)].ExternalRegionID {
				simplified = append(simplified, raw[i])
			}
		}
	}
	if len(simplified) > 0 {
		return simplified, false
	}

	maxi, mini := 0, 0
	for i, v := range raw {
		x, z := v.Coordinate[0], v.Coordinate[2]
		if mx := raw[maxi].Coordinate; x > mx[0] || (x == mx[0] && z > mx[2]) {
			maxi = i
		}
		if mn := raw[mini].Coordinate; x < mn[0] || (x == mn[0] && z < mn[2]) {
			mini = i
		}
	}
	simplified = append(simplified, raw[maxi], raw[mini])
	return simplified, n > 0 && raw[0].ExternalRegionID != NullRegion
}

type rawSpan struct {
	lo, hi int
}

// refineNullRegionEdges reinserts raw vertices into every edge facing the
// null region until no raw vertex lies farther than maxDeviation from the
// simplified edge (Ramer-Douglas-Peucker).
func refineNullRegionEdges(raw, simplified []ContourVertex, maxDeviation float32, tessellateAll bool) []ContourVertex {
	pn := len(raw)
	if pn == 0 || len(simplified) == 0 {
		return simplified
	}
	maxd := common.Sqr(maxDeviation)
	res := make([]ContourVertex, 0, len(simplified))
	work := NewStack[rawSpan](16)
	for k, a := range simplified {
		res = append(res, a)
		if a.ExternalRegionID != NullRegion && !tessellateAll {
			continue
		}
		b := simplified[common.Next(k, len(simplified))]
		// Offsets along the raw loop from a; the edge covers (0, m).
		m := (b.RawIndex - a.RawIndex + pn) % pn
		if m == 0 {
			m = pn
		}
		if m < 2 {
			continue
		}
		keep := make([]bool, m)
		work.Clear()
		work.Push(rawSpan{lo: 0, hi: m})
		for !work.Empty() {
			seg := work.Pop()
			if seg.hi-seg.lo < 2 {
				continue
			}
			pa := raw[(a.RawIndex+seg.lo)%pn].Coordinate
			pb := raw[(a.RawIndex+seg.hi)%pn].Coordinate
			maxi := -1
			maxDist := float32(0)
			for off := seg.lo + 1; off < seg.hi; off++ {
				d := common.DistancePtSegSqr2D(raw[(a.RawIndex+off)%pn].Coordinate, pa, pb)
				if d > maxDist {
					maxDist = d
					maxi = off
				}
			}
			if maxi == -1 || maxDist <= maxd {
				continue
			}
			keep[maxi] = true
			work.Push(rawSpan{lo: seg.lo, hi: maxi})
			work.Push(rawSpan{lo: maxi, hi: seg.hi})
		}
		for off := 1; off < m; off++ {
			if keep[off] {
				res = append(res, raw[(a.RawIndex+off)%pn])
			}
		}
	}
	return res
}

// limitNullRegionEdges splits edges facing the null region at their
// midpoint until none is longer than maxEdgeLen.
func limitNullRegionEdges(simplified []ContourVertex, maxEdgeLen float32, tessellateAll bool) []ContourVertex {
	maxLenSqr := common.Sqr(maxEdgeLen)
	for i := 0; i < len(simplified); {
		a := simplified[i]
		b := simplified[common.Next(i, len(simplified))]
		d := b.Coordinate.Sub(a.Coordinate)
		if (a.ExternalRegionID == NullRegion || tessellateAll) && d.Dot(d) > maxLenSqr {
			mid := ContourVertex{
				Coordinate:       common.Vlerp(a.Coordinate, b.Coordinate, 0.5),
				ExternalRegionID: a.ExternalRegionID,
				InternalRegionID: a.InternalRegionID,
				RawIndex:         a.RawIndex,
			}
			simplified = slices.Insert(simplified, i+1, mid)
			continue
		}
		i++
	}
	return simplified
}

// removeDegenerateSegments drops every vertex that sits on its successor
// in the xz-plane, the closing edge included, so the triangulator never
// sees a zero length edge. The successor is kept since its tags describe
// the edge that leaves the shared point.
func removeDegenerateSegments(simplified []ContourVertex) []ContourVertex {
	for i := 0; len(simplified) > 1 && i < len(simplified); {
		next := simplified[common.Next(i, len(simplified))]
		if common.Vequal2D(simplified[i].Coordinate, next.Coordinate) {
			simplified = slices.Delete(simplified, i, i+1)
			continue
		}
		i++
	}
	return simplified
}
