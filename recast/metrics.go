package recast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-region contour build statistics.
type Metrics struct {
	regions   *prometheus.CounterVec
	rawVerts  prometheus.Histogram
	verts     prometheus.Histogram
	buildTime prometheus.Histogram
}

// NewMetrics registers the contour metrics on reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		regions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "navcontour_regions_total",
			Help: "Regions processed by the contour build, by result",
		}, []string{"result"}),
		rawVerts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "navcontour_raw_vertices",
			Help:    "Raw contour vertices per built region",
			Buckets: prometheus.ExponentialBuckets(4, 2, 12),
		}),
		verts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "navcontour_simplified_vertices",
			Help:    "Simplified contour vertices per built region",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		}),
		buildTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "navcontour_region_build_seconds",
			Help:    "Time spent building one region contour",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		}),
	}
}

func (m *Metrics) observe(res regionResult) {
	if m == nil {
		return
	}
	m.buildTime.Observe(res.elapsed.Seconds())
	switch {
	case res.err != nil:
		m.regions.WithLabelValues("failed").Inc()
	case res.discarded:
		m.regions.WithLabelValues("discarded").Inc()
	default:
		m.regions.WithLabelValues("built").Inc()
		m.rawVerts.Observe(float64(len(res.contour.RawVerts)))
		m.verts.Observe(float64(len(res.contour.Verts)))
	}
}
