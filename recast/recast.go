package recast

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// / Specifies the configuration of a contour build.
// / @ingroup recast
type ContourConfig struct {
	/// The maximum distance a simplified contour's null-region edges may deviate
	/// from the raw contour. [Limit: > 0] [Units: wu]
	EdgeMaxDeviation float32 `yaml:"edge_max_deviation" validate:"gt=0"`

	/// The maximum allowed length for contour edges bordering the null region. [Limit: > 0] [Units: wu]
	MaxEdgeLen float32 `yaml:"max_edge_len" validate:"gt=0"`

	/// Safety cap on the steps of a single boundary walk. [Limit: > 0]
	MaxIterations int `yaml:"max_iterations" validate:"gt=0"`

	/// Number of regions processed concurrently. 1 processes them in order. [Limit: >= 1]
	Workers int `yaml:"workers" validate:"gte=1"`
}

const (
	DefaultEdgeMaxDeviation = 60
	DefaultMaxEdgeLen       = 60
	DefaultMaxIterations    = 40000
)

func DefaultContourConfig() ContourConfig {
	return ContourConfig{
		EdgeMaxDeviation: DefaultEdgeMaxDeviation,
		MaxEdgeLen:       DefaultMaxEdgeLen,
		MaxIterations:    DefaultMaxIterations,
		Workers:          1,
	}
}

var validate = validator.New()

func (cfg ContourConfig) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

type buildOptions struct {
	log     *zap.Logger
	metrics *Metrics
}

type BuildOption func(o *buildOptions)

func WithLogger(log *zap.Logger) BuildOption {
	return func(o *buildOptions) {
		o.log = log
	}
}

func WithMetrics(m *Metrics) BuildOption {
	return func(o *buildOptions) {
		o.metrics = m
	}
}

type regionResult struct {
	contour   *Contour
	discarded bool
	err       error
	elapsed   time.Duration
}

type stageTimes struct {
	trace, simplify, refine, limit atomic.Int64
}

func timeStage(acc *atomic.Int64, start time.Time) time.Time {
	now := time.Now()
	acc.Add(int64(now.Sub(start)))
	return now
}

// / @par
// /
// / The raw contours follow the region outlines exactly. EdgeMaxDeviation and
// / MaxEdgeLen control how closely the simplified contours follow them along
// / the null region; edges shared with another region keep only the vertices
// / where the neighbour changes.
// /
// / Only a region whose raw walk yields fewer than 3 vertices is dropped and
// / counted in DiscardedCount. A simplified contour may keep as few as 2
// / vertices, for example an island seen at a coarse EdgeMaxDeviation, and
// / is returned as is. A region whose walk fails is
// / reported in Failures and the returned error, without stopping the others,
// / so the set is returned whenever the config and heightfield are valid.
func BuildContours(ctx context.Context, chf *CompactHeightfield, cfg ContourConfig, opts ...BuildOption) (*ContourSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := chf.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	cset := &ContourSet{
		Bmin:   chf.Bmin,
		Bmax:   chf.Bmax,
		Cs:     chf.Cs,
		Ch:     chf.Ch,
		Width:  chf.Width,
		Height: chf.Height,
	}

	seeds := findRegionSeeds(chf)
	cset.RegionCount = len(seeds)
	cset.Times.Scan = time.Since(start)

	var times stageTimes
	results := make([]regionResult, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for k, seed := range seeds {
		if gctx.Err() != nil {
			break
		}
		k, seed := k, seed
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[k] = buildRegionContour(chf, seed, cfg, &times)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures []error
	for k, res := range results {
		reg := seeds[k].reg
		switch {
		case res.err != nil:
			rerr := &RegionError{RegionID: reg, Err: res.err}
			cset.Failures = append(cset.Failures, rerr)
			failures = append(failures, rerr)
			o.log.Warn("contour walk failed", zap.Int("region", reg), zap.Error(res.err))
		case res.discarded:
			cset.DiscardedCount++
			o.log.Debug("contour discarded", zap.Int("region", reg))
		default:
			cset.Conts = append(cset.Conts, res.contour)
			o.log.Debug("contour built",
				zap.Int("region", reg),
				zap.Int("raw", len(res.contour.RawVerts)),
				zap.Int("verts", len(res.contour.Verts)))
		}
		o.metrics.observe(res)
	}

	cset.Times.Trace = time.Duration(times.trace.Load())
	cset.Times.Simplify = time.Duration(times.simplify.Load())
	cset.Times.Refine = time.Duration(times.refine.Load())
	cset.Times.Limit = time.Duration(times.limit.Load())
	cset.Times.Total = time.Since(start)

	o.log.Info("contours built",
		zap.Int("regions", cset.RegionCount),
		zap.Int("contours", len(cset.Conts)),
		zap.Int("discarded", cset.DiscardedCount),
		zap.Int("failed", len(cset.Failures)),
		zap.Duration("elapsed", cset.Times.Total))

	return cset, errors.Join(failures...)
}

// buildRegionContour runs trace, simplify, refine, limit and duplicate
// removal for one region. It only reads chf.
func buildRegionContour(chf *CompactHeightfield, seed *regionSeed, cfg ContourConfig, times *stageTimes) regionResult {
	start := time.Now()
	raw, err := walkContour(chf, seed, cfg.MaxIterations)
	t := timeStage(&times.trace, start)
	if err != nil {
		return regionResult{err: err, elapsed: time.Since(start)}
	}
	if len(raw) < 3 {
		return regionResult{discarded: true, elapsed: time.Since(start)}
	}

	simplified, tessellateAll := simplifyContour(raw, seed.onlyNullRegionConnection)
	t = timeStage(&times.simplify, t)
	simplified = refineNullRegionEdges(raw, simplified, cfg.EdgeMaxDeviation, tessellateAll)
	t = timeStage(&times.refine, t)
	simplified = limitNullRegionEdges(simplified, cfg.MaxEdgeLen, tessellateAll)
	simplified = removeDegenerateSegments(simplified)
	timeStage(&times.limit, t)

	return regionResult{
		contour: &Contour{
			RegionID: seed.reg,
			Verts:    simplified,
			RawVerts: raw,
		},
		elapsed: time.Since(start),
	}
}
