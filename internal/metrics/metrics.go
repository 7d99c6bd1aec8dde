package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// CritiquesTotal counts critique requests by provider and result.
	CritiquesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "design_critic",
		Subsystem: "api",
		Name:      "critiques_total",
		Help:      "Total number of critique requests, labeled by provider and result.",
	}, []string{"provider", "result"})

	// CritiqueDurationSeconds is end-to-end critique time including
	// rendering, optimization and the provider round trip.
	CritiqueDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "design_critic",
		Subsystem: "api",
		Name:      "critique_duration_seconds",
		Help:      "End-to-end time to serve a critique request.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"provider"})

	// RenderDurationSeconds is time spent in headless rendering.
	RenderDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "design_critic",
		Subsystem: "api",
		Name:      "render_duration_seconds",
		Help:      "Time spent rendering HTML to a screenshot.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60},
	})

	// OptimizedImageBytes observes the size of images sent to providers.
	OptimizedImageBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "design_critic",
		Subsystem: "api",
		Name:      "optimized_image_bytes",
		Help:      "Size in bytes of optimized images submitted to providers.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
	})
)

// Register registers critique metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			CritiquesTotal,
			CritiqueDurationSeconds,
			RenderDurationSeconds,
			OptimizedImageBytes,
		)
	})
}
