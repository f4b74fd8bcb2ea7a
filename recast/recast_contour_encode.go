package recast

import (
	"fmt"

	"github.com/gorustyt/navcontour/common"
	"github.com/gorustyt/navcontour/common/message"
)

// Wire schema handed to the meshing stage:
//
//	message ContourSet {
//	  repeated float bmin = 1; repeated float bmax = 2;
//	  float cs = 3; float ch = 4; int64 width = 5; int64 height = 6;
//	  int64 region_count = 7; int64 discarded_count = 8;
//	  repeated Contour conts = 9;
//	}
//	message Contour { int64 region_id = 1; repeated Vertex verts = 2; repeated Vertex raw_verts = 3; }
//	message Vertex { repeated float coordinate = 1; int64 external_region_id = 2;
//	  int64 internal_region_id = 3; int64 raw_index = 4; }
//
// Failures and build times are not part of the record.
const (
	fieldSetBmin           = 1
	fieldSetBmax           = 2
	fieldSetCs             = 3
	fieldSetCh             = 4
	fieldSetWidth          = 5
	fieldSetHeight         = 6
	fieldSetRegionCount    = 7
	fieldSetDiscardedCount = 8
	fieldSetConts          = 9

	fieldContRegion   = 1
	fieldContVerts    = 2
	fieldContRawVerts = 3

	fieldVertCoordinate = 1
	fieldVertExternal   = 2
	fieldVertInternal   = 3
	fieldVertRawIndex   = 4
)

func MarshalContourSet(cset *ContourSet) []byte {
	e := &message.Encoder{}
	e.PackedFloat32(fieldSetBmin, cset.Bmin[:])
	e.PackedFloat32(fieldSetBmax, cset.Bmax[:])
	e.Float32(fieldSetCs, cset.Cs)
	e.Float32(fieldSetCh, cset.Ch)
	e.Int(fieldSetWidth, cset.Width)
	e.Int(fieldSetHeight, cset.Height)
	e.Int(fieldSetRegionCount, cset.RegionCount)
	e.Int(fieldSetDiscardedCount, cset.DiscardedCount)
	for _, cont := range cset.Conts {
		e.Message(fieldSetConts, func(ce *message.Encoder) {
			ce.Int(fieldContRegion, cont.RegionID)
			for _, v := range cont.Verts {
				ce.Message(fieldContVerts, func(ve *message.Encoder) { encodeVertex(ve, v) })
			}
			for _, v := range cont.RawVerts {
				ce.Message(fieldContRawVerts, func(ve *message.Encoder) { encodeVertex(ve, v) })
			}
		})
	}
	return e.Bytes()
}

func encodeVertex(e *message.Encoder, v ContourVertex) {
	e.PackedFloat32(fieldVertCoordinate, v.Coordinate[:])
	e.Int(fieldVertExternal, v.ExternalRegionID)
	e.Int(fieldVertInternal, v.InternalRegionID)
	e.Int(fieldVertRawIndex, v.RawIndex)
}

func UnmarshalContourSet(data []byte) (*ContourSet, error) {
	cset := &ContourSet{}
	err := message.Range(data, func(f message.Field) error {
		switch f.Num {
		case fieldSetBmin:
			return decodeVec3(f, (*common.Vec3)(&cset.Bmin))
		case fieldSetBmax:
			return decodeVec3(f, (*common.Vec3)(&cset.Bmax))
		case fieldSetCs:
			cset.Cs = f.Float32()
		case fieldSetCh:
			cset.Ch = f.Float32()
		case fieldSetWidth:
			cset.Width = f.Int()
		case fieldSetHeight:
			cset.Height = f.Int()
		case fieldSetRegionCount:
			cset.RegionCount = f.Int()
		case fieldSetDiscardedCount:
			cset.DiscardedCount = f.Int()
		case fieldSetConts:
			cont, err := decodeContour(f.Bytes)
			if err != nil {
				return err
			}
			cset.Conts = append(cset.Conts, cont)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recast: decode contour set: %w", err)
	}
	return cset, nil
}

func decodeContour(data []byte) (*Contour, error) {
	cont := &Contour{}
	err := message.Range(data, func(f message.Field) error {
		switch f.Num {
		case fieldContRegion:
			cont.RegionID = f.Int()
		case fieldContVerts, fieldContRawVerts:
			v, err := decodeVertex(f.Bytes)
			if err != nil {
				return err
			}
			if f.Num == fieldContVerts {
				cont.Verts = append(cont.Verts, v)
			} else {
				cont.RawVerts = append(cont.RawVerts, v)
			}
		}
		return nil
	})
	return cont, err
}

func decodeVertex(data []byte) (v ContourVertex, err error) {
	err = message.Range(data, func(f message.Field) error {
		switch f.Num {
		case fieldVertCoordinate:
			return decodeVec3(f, &v.Coordinate)
		case fieldVertExternal:
			v.ExternalRegionID = f.Int()
		case fieldVertInternal:
			v.InternalRegionID = f.Int()
		case fieldVertRawIndex:
			v.RawIndex = f.Int()
		}
		return nil
	})
	return v, err
}

func decodeVec3(f message.Field, dst *common.Vec3) error {
	vs, err := message.UnpackFloat32s(f.Bytes)
	if err != nil {
		return err
	}
	if len(vs) != 3 {
		return fmt.Errorf("field %d: %d floats, want 3", f.Num, len(vs))
	}
	copy(dst[:], vs)
	return nil
}
