package recast

import (
	"time"

	"github.com/gorustyt/navcontour/common"
)

// ContourVertex is one corner of a region boundary.
type ContourVertex struct {
	Coordinate common.Vec3 ///< World space position.
	// ExternalRegionID is the region across the edge that starts at this
	// vertex, NullRegion when it faces unclaimed space.
	ExternalRegionID int
	InternalRegionID int ///< The region owning the contour.
	RawIndex         int ///< Position of the vertex in the raw contour.
}

// 轮廓
type Contour struct {
	RegionID int             ///< The region id of the contour.
	Verts    []ContourVertex ///< The simplified contour.
	RawVerts []ContourVertex ///< The raw contour the simplified one was derived from.
}

type ContourSet struct {
	Conts          []*Contour     ///< Contours ordered by region id.
	Bmin           [3]float32     ///< The minimum bounds in world space. [(x, y, z)]
	Bmax           [3]float32     ///< The maximum bounds in world space. [(x, y, z)]
	Cs             float32        ///< The size of each cell. (On the xz-plane.)
	Ch             float32        ///< The height of each cell. (The minimum increment along the y-axis.)
	Width          int            ///< The width of the set. (Along the x-axis in cell units.)
	Height         int            ///< The height of the set. (Along the z-axis in cell units.)
	RegionCount    int            ///< Regions found by the scan.
	DiscardedCount int            ///< Regions dropped as degenerate.
	Failures       []*RegionError ///< Regions whose walk failed.
	Times          BuildTimes     ///< Time spent per stage. Not serialized.
}

// BuildTimes accumulates the time spent in each contour stage, summed over
// all regions.
type BuildTimes struct {
	Total    time.Duration
	Scan     time.Duration
	Trace    time.Duration
	Simplify time.Duration
	Refine   time.Duration
	Limit    time.Duration
}

// Contour returns the contour of region reg, or nil.
func (cset *ContourSet) Contour(reg int) *Contour {
	for _, c := range cset.Conts {
		if c.RegionID == reg {
			return c
		}
	}
	return nil
}
