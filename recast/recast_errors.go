package recast

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig      = errors.New("recast: invalid contour config")
	ErrInvalidHeightfield = errors.New("recast: invalid compact heightfield")
	// ErrContourOverflow is returned when a boundary walk does not get back
	// to its seed within the iteration limit.
	ErrContourOverflow = errors.New("recast: contour walk exceeded iteration limit")
)

// RegionError reports a failure confined to one region.
type RegionError struct {
	RegionID int
	Err      error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("recast: region %d: %v", e.RegionID, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}
