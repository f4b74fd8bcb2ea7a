package common

import (
	"cmp"
	"math"
)

// / Returns the square of the value.
// / @param[in]		a	The value.
// / @return The square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

func Sqrt[T float64 | float32](x T) T {
	return T(math.Sqrt(float64(x)))
}

// / Returns the absolute value.
// / @param[in]		a	The value.
// / @return The absolute value of the specified value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// Next returns the index after i on a closed loop of n elements.
func Next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

// Prev returns the index before i on a closed loop of n elements.
func Prev(i, n int) int {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

// / Derives the distance between the specified points on the xz-plane.
// /  @param[in]		v1	A point. [(x, y, z)]
// /  @param[in]		v2	A point. [(x, y, z)]
// / @return The distance between the point on the xz-plane.
// /
// / The vectors are projected onto the xz-plane, so the y-values are ignored.
func Vdist2D(v1, v2 Vec3) float32 {
	return Sqrt(Vdist2DSqr(v1, v2))
}

func Vdist2DSqr(v1, v2 Vec3) float32 {
	dx := v2[0] - v1[0]
	dz := v2[2] - v1[2]
	return dx*dx + dz*dz
}

// Vequal2D reports whether two points share the same xz position.
func Vequal2D(a, b Vec3) bool {
	return a[0] == b[0] && a[2] == b[2]
}

// Vlerp interpolates between v1 and v2, t in [0, 1].
func Vlerp(v1, v2 Vec3, t float32) Vec3 {
	return v1.Add(v2.Sub(v1).Mul(t))
}

// DistancePtSegSqr2D returns the squared xz distance from pt to the segment p-q.
func DistancePtSegSqr2D(pt, p, q Vec3) float32 {
	pq := Vec2{q[0] - p[0], q[2] - p[2]}
	d := Vec2{pt[0] - p[0], pt[2] - p[2]}
	t := pq.Dot(d)
	if l := pq.Dot(pq); l > 0 {
		t /= l
	}
	t = Clamp(t, 0, 1)
	diff := pq.Mul(t).Sub(d)
	return diff.Dot(diff)
}

// / Gets the standard width (x-axis) offset for the specified direction.
// / @param[in]		direction		The direction. [Limits: 0 <= value < 4]
// / @return The width offset to apply to the current cell position to move in the direction.
func GetDirOffsetX(direction int) int {
	offset := [4]int{-1, 0, 1, 0}
	return offset[direction&0x03]
}

// / Gets the standard height (z-axis) offset for the specified direction.
// / @param[in]		direction		The direction. [Limits: 0 <= value < 4]
// / @return The height offset to apply to the current cell position to move in the direction.
func GetDirOffsetY(direction int) int {
	offset := [4]int{0, 1, 0, -1}
	return offset[direction&0x03]
}

// RotateCW turns a direction clockwise as seen from above.
func RotateCW(direction int) int {
	return (direction + 1) & 0x3
}

// RotateCCW turns a direction counter-clockwise as seen from above.
func RotateCCW(direction int) int {
	return (direction + 3) & 0x3
}
