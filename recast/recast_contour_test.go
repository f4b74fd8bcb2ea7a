package recast

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/navcontour/common"
)

const twoStrips = `
	1111111111
	2222222222
`

const blob = `
	....1111....
	..11111111..
	.1111111111.
	111111111111
	.1111111111.
	..11111111..
	....1111....
`

func seedFor(t *testing.T, chf *CompactHeightfield, reg int) *regionSeed {
	t.Helper()
	for _, s := range findRegionSeeds(chf) {
		if s.reg == reg {
			return s
		}
	}
	t.Fatalf("no seed for region %d", reg)
	return nil
}

func traceRegion(t *testing.T, chf *CompactHeightfield, reg int) ([]ContourVertex, *regionSeed) {
	t.Helper()
	seed := seedFor(t, chf, reg)
	raw, err := walkContour(chf, seed, DefaultMaxIterations)
	require.NoError(t, err)
	return raw, seed
}

func xz(verts []ContourVertex) [][2]float32 {
	res := make([][2]float32, len(verts))
	for i, v := range verts {
		res[i] = [2]float32{v.Coordinate[0], v.Coordinate[2]}
	}
	return res
}

func rawIndices(verts []ContourVertex) []int {
	res := make([]int, len(verts))
	for i, v := range verts {
		res[i] = v.RawIndex
	}
	return res
}

// assertRawLoop checks that consecutive raw vertices, the closing pair
// included, are one cell edge apart.
func assertRawLoop(t *testing.T, chf *CompactHeightfield, raw []ContourVertex) {
	t.Helper()
	for i := range raw {
		a := raw[i].Coordinate
		b := raw[common.Next(i, len(raw))].Coordinate
		assert.InDelta(t, chf.Cs, common.Vdist2D(a, b), 1e-5, "raw edge %d", i)
		assert.Equal(t, i, raw[i].RawIndex)
	}
}

// assertCyclicRawOrder checks that RawIndex values increase around the loop
// with at most one wrap.
func assertCyclicRawOrder(t *testing.T, verts []ContourVertex, n int, strict bool) {
	t.Helper()
	wraps := 0
	for i := range verts {
		a := verts[i].RawIndex
		b := verts[common.Next(i, len(verts))].RawIndex
		assert.True(t, a >= 0 && a < n, "raw index %d out of [0,%d)", a, n)
		if b < a || (len(verts) > 1 && b == a && strict) {
			wraps++
		}
	}
	assert.LessOrEqual(t, wraps, 1, "raw indices %v", rawIndices(verts))
}

func TestFindRegionSeeds(t *testing.T) {
	chf := mustParseRegionMap(t, `
		11.22
		11.23
		00000
	`, RegionMapOptions{})
	seeds := findRegionSeeds(chf)
	require.Len(t, seeds, 3)

	assert.Equal(t, 1, seeds[0].reg)
	assert.True(t, seeds[0].onlyNullRegionConnection)
	assert.Equal(t, [4]int{0, 0, 0, 0}, [4]int{seeds[0].x, seeds[0].z, seeds[0].i, seeds[0].dir})

	assert.Equal(t, 2, seeds[1].reg)
	assert.False(t, seeds[1].onlyNullRegionConnection)
	assert.Equal(t, 3, seeds[1].x)
	assert.Equal(t, 0, seeds[1].z)
	assert.Equal(t, 0, seeds[1].dir, "the -x side faces a missing span")

	assert.Equal(t, 3, seeds[2].reg)
	assert.False(t, seeds[2].onlyNullRegionConnection)
}

func TestWalkContourSingleVoxel(t *testing.T) {
	for name, text := range map[string]string{
		"missing neighbours": "...\n.1.\n...",
		"null neighbours":    "000\n010\n000",
	} {
		t.Run(name, func(t *testing.T) {
			chf := mustParseRegionMap(t, text, RegionMapOptions{})
			raw, seed := traceRegion(t, chf, 1)

			assert.Equal(t, [][2]float32{{1, 1}, {1, 2}, {2, 2}, {2, 1}}, xz(raw))
			for _, v := range raw {
				assert.Equal(t, NullRegion, v.ExternalRegionID)
				assert.Equal(t, 1, v.InternalRegionID)
			}
			assertRawLoop(t, chf, raw)
			assert.True(t, seed.onlyNullRegionConnection)
		})
	}
}

func TestWalkContourTwoStrips(t *testing.T) {
	chf := mustParseRegionMap(t, twoStrips, RegionMapOptions{})

	raw, _ := traceRegion(t, chf, 1)
	require.Len(t, raw, 22)
	assertRawLoop(t, chf, raw)
	assert.Equal(t, [2]float32{0, 0}, xz(raw)[0])
	for i := 1; i <= 10; i++ {
		assert.Equal(t, 2, raw[i].ExternalRegionID, "shared border vertex %d", i)
		assert.Equal(t, [2]float32{float32(i - 1), 1}, xz(raw)[i])
	}
	for _, i := range []int{0, 11, 12, 21} {
		assert.Equal(t, NullRegion, raw[i].ExternalRegionID)
	}

	raw2, _ := traceRegion(t, chf, 2)
	require.Len(t, raw2, 22)
	assertRawLoop(t, chf, raw2)
	assert.Equal(t, 1, raw2[12].ExternalRegionID)
	assert.Equal(t, [2]float32{10, 1}, xz(raw2)[12])
}

func TestWalkContourIterationCap(t *testing.T) {
	chf := mustParseRegionMap(t, "...\n.1.\n...", RegionMapOptions{})
	seed := seedFor(t, chf, 1)

	_, err := walkContour(chf, seed, 3)
	assert.True(t, errors.Is(err, ErrContourOverflow))

	raw, err := walkContour(chf, seed, 4)
	require.NoError(t, err)
	assert.Len(t, raw, 4)
}

func TestWalkContourBlobIsClosed(t *testing.T) {
	chf := mustParseRegionMap(t, blob, RegionMapOptions{Cs: 0.5})
	raw, _ := traceRegion(t, chf, 1)
	assertRawLoop(t, chf, raw)
	assert.Len(t, raw, 38, "an orthogonally convex outline has the bounding box perimeter")
}

func TestGetCornerHeight(t *testing.T) {
	chf := mustParseRegionMap(t, "11\n11", RegionMapOptions{Heights: "01\n23", WalkableClimb: 3})
	// Span 0 is the (0,0) cell at height 0.
	assert.Equal(t, 0, getCornerHeight(chf, 0, 0, 0, 0))
	assert.Equal(t, 2, getCornerHeight(chf, 0, 0, 0, 1))
	assert.Equal(t, 3, getCornerHeight(chf, 0, 0, 0, 2), "centre corner is shared by all four cells")
	assert.Equal(t, 1, getCornerHeight(chf, 0, 0, 0, 3))

	raw, _ := traceRegion(t, chf, 1)
	for _, v := range raw {
		if v.Coordinate[0] == 1 && v.Coordinate[2] == 1 {
			t.Fatalf("the centre corner is not on the boundary")
		}
	}
	// (2,2) is only touched by the height 3 cell.
	assert.Contains(t, raw, ContourVertex{
		Coordinate:       common.Vec3{2, 3, 2},
		ExternalRegionID: NullRegion,
		InternalRegionID: 1,
		RawIndex:         4,
	})

	flat := mustParseRegionMap(t, "11\n11", RegionMapOptions{Heights: "01\n23"})
	assert.Equal(t, 0, getCornerHeight(flat, 0, 0, 0, 2), "unlinked spans do not contribute")
}

func TestSimplifyContourSharedBorder(t *testing.T) {
	chf := mustParseRegionMap(t, twoStrips, RegionMapOptions{})

	raw, seed := traceRegion(t, chf, 1)
	require.False(t, seed.onlyNullRegionConnection)
	simplified, all := simplifyContour(raw, seed.onlyNullRegionConnection)
	assert.False(t, all)
	assert.Equal(t, [][2]float32{{0, 1}, {10, 1}}, xz(simplified))
	assert.Equal(t, []int{1, 11}, rawIndices(simplified))
	assert.Equal(t, 2, simplified[0].ExternalRegionID)
	assert.Equal(t, NullRegion, simplified[1].ExternalRegionID)

	raw2, seed2 := traceRegion(t, chf, 2)
	simplified2, _ := simplifyContour(raw2, seed2.onlyNullRegionConnection)
	assert.Equal(t, [][2]float32{{0, 1}, {10, 1}}, xz(simplified2))
	assert.Equal(t, []int{0, 12}, rawIndices(simplified2))
	assert.Equal(t, 1, simplified2[1].ExternalRegionID)
}

func TestSimplifyContourIsland(t *testing.T) {
	chf := mustParseRegionMap(t, `
		.......
		.1111..
		.1..1..
		.1..111
		.1.....
	`, RegionMapOptions{})
	raw, seed := traceRegion(t, chf, 1)
	require.True(t, seed.onlyNullRegionConnection)

	simplified, all := simplifyContour(raw, true)
	assert.False(t, all)
	require.Len(t, simplified, 2)
	assert.Equal(t, [2]float32{7, 4}, xz(simplified)[0], "max corner first")
	assert.Equal(t, [2]float32{1, 1}, xz(simplified)[1], "then min corner")
	assertCyclicRawOrder(t, simplified, len(raw), true)
}

func TestSimplifyContourEnclosed(t *testing.T) {
	chf := mustParseRegionMap(t, `
		22222
		22122
		22222
	`, RegionMapOptions{})
	raw, seed := traceRegion(t, chf, 1)
	require.False(t, seed.onlyNullRegionConnection)

	simplified, all := simplifyContour(raw, false)
	assert.True(t, all, "no neighbour change to keep")
	assert.Equal(t, [][2]float32{{3, 2}, {2, 1}}, xz(simplified))

	refined := refineNullRegionEdges(raw, simplified, 0.5, all)
	assert.Len(t, refined, 4)
}

func TestRefineNullRegionEdges(t *testing.T) {
	chf := mustParseRegionMap(t, twoStrips, RegionMapOptions{})
	raw, seed := traceRegion(t, chf, 1)
	simplified, all := simplifyContour(raw, seed.onlyNullRegionConnection)

	// Every raw vertex is within 1 of the shared border line.
	same := refineNullRegionEdges(raw, simplified, 1, all)
	assert.Equal(t, simplified, same)

	refined := refineNullRegionEdges(raw, simplified, 0.5, all)
	assert.Equal(t, [][2]float32{{0, 1}, {10, 1}, {10, 0}, {0, 0}}, xz(refined))
	assert.Equal(t, []int{1, 11, 12, 0}, rawIndices(refined))
	assertCyclicRawOrder(t, refined, len(raw), true)

	raw2, seed2 := traceRegion(t, chf, 2)
	simplified2, all2 := simplifyContour(raw2, seed2.onlyNullRegionConnection)
	refined2 := refineNullRegionEdges(raw2, simplified2, 0.5, all2)
	assert.Equal(t, [][2]float32{{0, 1}, {0, 2}, {10, 2}, {10, 1}}, xz(refined2))
	assert.Equal(t, []int{0, 1, 11, 12}, rawIndices(refined2))
}

func TestRefineNullRegionEdgesDeviationBound(t *testing.T) {
	for _, dev := range []float32{0.3, 0.5, 1, 2, 4} {
		chf := mustParseRegionMap(t, blob, RegionMapOptions{})
		raw, seed := traceRegion(t, chf, 1)
		simplified, all := simplifyContour(raw, seed.onlyNullRegionConnection)
		require.Len(t, simplified, 2)
		refined := refineNullRegionEdges(raw, simplified, dev, all)

		assertCyclicRawOrder(t, refined, len(raw), true)
		for k, a := range refined {
			b := refined[common.Next(k, len(refined))]
			for off := 1; off < (b.RawIndex-a.RawIndex+len(raw))%len(raw); off++ {
				p := raw[(a.RawIndex+off)%len(raw)].Coordinate
				d := common.Sqrt(common.DistancePtSegSqr2D(p, a.Coordinate, b.Coordinate))
				assert.LessOrEqual(t, d, dev+1e-5, "deviation %v edge %d raw %d", dev, k, a.RawIndex+off)
			}
		}
	}
}

func TestRefineLeavesRegionEdges(t *testing.T) {
	chf := mustParseRegionMap(t, `
		111
		122
		122
	`, RegionMapOptions{})
	raw, seed := traceRegion(t, chf, 2)
	require.Len(t, raw, 8)
	simplified, all := simplifyContour(raw, seed.onlyNullRegionConnection)
	require.Equal(t, []int{2, 6}, rawIndices(simplified))

	// (1,1) lies 1.4 from the closing edge, which faces region 1 and is kept.
	refined := refineNullRegionEdges(raw, simplified, 0.1, all)
	assert.Equal(t, [][2]float32{{1, 3}, {3, 3}, {3, 1}}, xz(refined))
	assert.Equal(t, []int{2, 4, 6}, rawIndices(refined))
}

func TestLimitNullRegionEdges(t *testing.T) {
	simplified := []ContourVertex{
		{Coordinate: common.Vec3{0, 0, 0}, ExternalRegionID: NullRegion, InternalRegionID: 3, RawIndex: 4},
		{Coordinate: common.Vec3{200, 0, 0}, ExternalRegionID: 5, InternalRegionID: 3, RawIndex: 9},
	}
	limited := limitNullRegionEdges(simplified, 60, false)
	require.Len(t, limited, 5)
	assert.Equal(t, [][2]float32{{0, 0}, {50, 0}, {100, 0}, {150, 0}, {200, 0}}, xz(limited))
	for i := 0; i < 4; i++ {
		v := limited[i]
		assert.Equal(t, NullRegion, v.ExternalRegionID)
		assert.Equal(t, 3, v.InternalRegionID)
		assert.Equal(t, 4, v.RawIndex)
		d := common.Vdist2D(v.Coordinate, limited[i+1].Coordinate)
		assert.LessOrEqual(t, d, float32(60))
	}
	// The edge facing region 5 is not split even though it is 200 long.
	assert.Equal(t, 5, limited[4].ExternalRegionID)

	all := limitNullRegionEdges([]ContourVertex{
		{Coordinate: common.Vec3{0, 0, 0}, ExternalRegionID: 5},
		{Coordinate: common.Vec3{0, 0, 100}, ExternalRegionID: 5},
	}, 60, true)
	assert.Len(t, all, 4)
}

func TestLimitNullRegionEdgesBound(t *testing.T) {
	chf := mustParseRegionMap(t, blob, RegionMapOptions{Cs: 3})
	raw, seed := traceRegion(t, chf, 1)
	simplified, all := simplifyContour(raw, seed.onlyNullRegionConnection)
	simplified = refineNullRegionEdges(raw, simplified, 60, all)
	limited := limitNullRegionEdges(simplified, 5, all)
	for k, v := range limited {
		next := limited[common.Next(k, len(limited))]
		assert.LessOrEqual(t, v.Coordinate.Sub(next.Coordinate).Len(), float32(5)+1e-4)
	}
	assertCyclicRawOrder(t, limited, len(raw), false)
}

func TestRemoveDegenerateSegments(t *testing.T) {
	v := func(x, z float32, raw int) ContourVertex {
		return ContourVertex{Coordinate: common.Vec3{x, 0, z}, RawIndex: raw}
	}
	in := []ContourVertex{v(0, 0, 0), v(0, 0, 1), v(1, 0, 2), v(1, 1, 3), v(1, 1, 4), v(0, 0, 5)}
	out := removeDegenerateSegments(append([]ContourVertex(nil), in...))
	assert.Equal(t, [][2]float32{{0, 0}, {1, 0}, {1, 1}}, xz(out))
	// Of two equal vertices the later one survives, and the run that wraps
	// past the end keeps the head of the list.
	assert.Equal(t, []int{1, 2, 4}, rawIndices(out))

	again := removeDegenerateSegments(append([]ContourVertex(nil), out...))
	assert.Equal(t, out, again)

	// Height differences alone do not make an edge.
	stacked := []ContourVertex{
		{Coordinate: common.Vec3{0, 0, 0}},
		{Coordinate: common.Vec3{0, 5, 0}},
	}
	assert.Len(t, removeDegenerateSegments(stacked), 1)
}

// Region 1 wraps around region 2 and touches itself at (2,2), so the walk
// passes that corner twice: once leaving the border with region 2 and once
// leaving onto the null region.
const pinched = `
	111
	121
	11.
`

func TestRemoveDegenerateSegmentsKeepsOutgoingTags(t *testing.T) {
	chf := mustParseRegionMap(t, pinched, RegionMapOptions{})
	raw, seed := traceRegion(t, chf, 1)
	require.Len(t, raw, 16)

	simplified, tessellateAll := simplifyContour(raw, seed.onlyNullRegionConnection)
	simplified = refineNullRegionEdges(raw, simplified, 0.1, tessellateAll)
	simplified = limitNullRegionEdges(simplified, DefaultMaxEdgeLen, tessellateAll)
	repeated := 0
	for i, v := range simplified {
		if common.Vequal2D(v.Coordinate, simplified[common.Next(i, len(simplified))].Coordinate) {
			repeated++
		}
	}
	require.Equal(t, 1, repeated)

	out := removeDegenerateSegments(simplified)
	require.GreaterOrEqual(t, len(out), 3)
	for i, a := range out {
		b := out[common.Next(i, len(out))]
		assert.False(t, common.Vequal2D(a.Coordinate, b.Coordinate))
		if a.Coordinate[0] == 2 && a.Coordinate[2] == 2 {
			assert.Zero(t, a.ExternalRegionID, "the pinch vertex leaves onto the null region")
		}
		// Every raw edge the simplified edge runs along carries its tag.
		for j := a.RawIndex; j != b.RawIndex; j = common.Next(j, len(raw)) {
			mid := common.Vlerp(raw[j].Coordinate, raw[common.Next(j, len(raw))].Coordinate, 0.5)
			if common.DistancePtSegSqr2D(mid, a.Coordinate, b.Coordinate) < 1e-8 {
				assert.Equal(t, raw[j].ExternalRegionID, a.ExternalRegionID, "edge %d raw %d", i, j)
			}
		}
	}

	cfg := DefaultContourConfig()
	cfg.EdgeMaxDeviation = 0.1
	cset, err := BuildContours(context.Background(), chf, cfg)
	require.NoError(t, err)
	c1 := cset.Contour(1)
	require.NotNil(t, c1)
	assert.Equal(t, out, c1.Verts)
}
