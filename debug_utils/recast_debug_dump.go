package debug_utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/gorustyt/navcontour/common/rw"
	"github.com/gorustyt/navcontour/recast"
)

var (
	ErrBadMagic   = errors.New("debug_utils: bad voodoo")
	ErrBadVersion = errors.New("debug_utils: bad version")
)

// DuDumpContoursToObj writes every contour of cset as a closed polyline
// object, one object per region, with the region color appended to each
// vertex. raw selects the raw outlines, drawn darker, instead of the
// simplified ones.
func DuDumpContoursToObj(cset *recast.ContourSet, w io.Writer, raw bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Recast contours\n")
	base := 1
	for _, cont := range cset.Conts {
		verts := cont.Verts
		if raw {
			verts = cont.RawVerts
		}
		if len(verts) == 0 {
			continue
		}
		col := DuIntToCol(cont.RegionID, 255)
		if raw {
			col = DuDarkenCol(col)
		}
		r, g, b := col.Float()
		fmt.Fprintf(bw, "\no region_%d\n", cont.RegionID)
		for _, v := range verts {
			fmt.Fprintf(bw, "v %f %f %f %.3f %.3f %.3f\n", v.Coordinate[0], v.Coordinate[1], v.Coordinate[2], r, g, b)
		}
		fmt.Fprintf(bw, "l")
		for i := range verts {
			fmt.Fprintf(bw, " %d", base+i)
		}
		fmt.Fprintf(bw, " %d\n", base)
		base += len(verts)
	}
	return bw.Flush()
}

const CHF_MAGIC = ('r' << 24) | ('c' << 16) | ('h' << 8) | 'f'

const CHF_VERSION = 4

const (
	chfHasCells = 1 << iota
	chfHasSpans
)

// checkDumpRanges reports the first field that does not fit its slot in
// the dump layout.
func checkDumpRanges(chf *recast.CompactHeightfield) error {
	if chf.MaxRegions < 0 || chf.MaxRegions > 0xffff {
		return fmt.Errorf("%w: max regions %d does not fit 16 bits", recast.ErrInvalidHeightfield, chf.MaxRegions)
	}
	for i, c := range chf.Cells {
		if c.Index < 0 || int64(c.Index) > 0xffffffff || c.Count < 0 || c.Count > 0xff {
			return fmt.Errorf("%w: cell %d index %d count %d out of range", recast.ErrInvalidHeightfield, i, c.Index, c.Count)
		}
	}
	for i, s := range chf.Spans {
		switch {
		case s.Y < 0 || s.Y > 0xffff:
			return fmt.Errorf("%w: span %d y %d does not fit 16 bits", recast.ErrInvalidHeightfield, i, s.Y)
		case s.H < 0 || s.H > 0xff:
			return fmt.Errorf("%w: span %d h %d does not fit 8 bits", recast.ErrInvalidHeightfield, i, s.H)
		case s.Reg < 0 || s.Reg > 0xffff:
			return fmt.Errorf("%w: span %d region %d does not fit 16 bits", recast.ErrInvalidHeightfield, i, s.Reg)
		case s.Con < 0 || s.Con > 0xffffff:
			return fmt.Errorf("%w: span %d connections %#x do not fit 24 bits", recast.ErrInvalidHeightfield, i, s.Con)
		}
	}
	return nil
}

// DuDumpCompactHeightfield appends chf to w. Nothing is written when a
// field is too wide for the dump layout.
func DuDumpCompactHeightfield(chf *recast.CompactHeightfield, w *rw.ReaderWriter) error {
	if err := checkDumpRanges(chf); err != nil {
		return fmt.Errorf("duDumpCompactHeightfield: %w", err)
	}
	w.WriteInt32(CHF_MAGIC)
	w.WriteInt32(CHF_VERSION)
	w.WriteInt32(int32(chf.Width))
	w.WriteInt32(int32(chf.Height))
	w.WriteInt32(int32(chf.SpanCount()))
	w.WriteInt32(int32(chf.WalkableHeight))
	w.WriteInt32(int32(chf.WalkableClimb))
	w.WriteUInt16(uint16(chf.MaxRegions))
	w.WriteFloat32s(chf.Bmin[:])
	w.WriteFloat32s(chf.Bmax[:])
	w.WriteFloat32(chf.Cs)
	w.WriteFloat32(chf.Ch)
	tmp := int32(0)
	if len(chf.Cells) != 0 {
		tmp |= chfHasCells
	}
	if len(chf.Spans) != 0 {
		tmp |= chfHasSpans
	}
	w.WriteInt32(tmp)

	for _, c := range chf.Cells {
		w.WriteUInt32(uint32(c.Index))
		w.WriteUInt8(uint8(c.Count))
	}
	for _, s := range chf.Spans {
		w.WriteUInt16(uint16(s.Y))
		w.WriteUInt8(uint8(s.H))
		w.WriteUInt16(uint16(s.Reg))
		w.WriteUInt32(uint32(s.Con))
	}
	return nil
}

func DuReadCompactHeightfield(r *rw.ReaderWriter) (*recast.CompactHeightfield, error) {
	magic := r.ReadInt32()
	version := r.ReadInt32()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("duReadCompactHeightfield: %w", err)
	}
	if magic != CHF_MAGIC {
		return nil, ErrBadMagic
	}
	if version != CHF_VERSION {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	width := int(r.ReadInt32())
	height := int(r.ReadInt32())
	spanCount := int(r.ReadInt32())
	walkableHeight := int(r.ReadInt32())
	walkableClimb := int(r.ReadInt32())
	maxRegions := int(r.ReadUInt16())
	var bmin, bmax [3]float32
	r.ReadFloat32s(bmin[:])
	r.ReadFloat32s(bmax[:])
	cs := r.ReadFloat32()
	ch := r.ReadFloat32()
	tmp := r.ReadInt32()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("duReadCompactHeightfield: %w", err)
	}
	if width <= 0 || height <= 0 || spanCount < 0 || width*height > r.Size() || spanCount > r.Size() {
		return nil, fmt.Errorf("duReadCompactHeightfield: %w: header %dx%d with %d spans", recast.ErrInvalidHeightfield, width, height, spanCount)
	}

	chf := recast.NewCompactHeightfield(width, height, bmin, bmax, cs, ch)
	chf.WalkableHeight = walkableHeight
	chf.WalkableClimb = walkableClimb
	chf.MaxRegions = maxRegions
	if tmp&chfHasCells != 0 {
		for i := range chf.Cells {
			chf.Cells[i].Index = int(r.ReadUInt32())
			chf.Cells[i].Count = int(r.ReadUInt8())
		}
	}
	if tmp&chfHasSpans != 0 {
		chf.Spans = make([]recast.CompactSpan, spanCount)
		for i := range chf.Spans {
			s := &chf.Spans[i]
			s.Y = int(r.ReadUInt16())
			s.H = int(r.ReadUInt8())
			s.Reg = int(r.ReadUInt16())
			s.Con = int(r.ReadUInt32())
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("duReadCompactHeightfield: %w", err)
	}
	if err := chf.Validate(); err != nil {
		return nil, fmt.Errorf("duReadCompactHeightfield: %w", err)
	}
	return chf, nil
}

func logLine(log *zap.Logger, name string, d time.Duration, pc float64) {
	log.Info(name,
		zap.Float64("ms", float64(d.Microseconds())/1000.0),
		zap.Float64("percent", float64(d)*pc))
}

// DuLogBuildTimes logs every stage time as a share of the total.
func DuLogBuildTimes(log *zap.Logger, times recast.BuildTimes) {
	pc := 0.0
	if times.Total > 0 {
		pc = 100.0 / float64(times.Total)
	}
	log.Info("Build Times")
	logLine(log, "- Scan", times.Scan, pc)
	logLine(log, "- Build Contours", times.Trace+times.Simplify+times.Refine+times.Limit, pc)
	logLine(log, "    - Trace", times.Trace, pc)
	logLine(log, "    - Simplify", times.Simplify, pc)
	logLine(log, "    - Refine", times.Refine, pc)
	logLine(log, "    - Limit", times.Limit, pc)
	log.Info("=== TOTAL", zap.Float64("ms", float64(times.Total.Microseconds())/1000.0))
}
