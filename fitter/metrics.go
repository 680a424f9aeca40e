// SPDX-License-Identifier: MIT

package fitter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus collectors of a Driver. A nil *Metrics records
// nothing.
type Metrics struct {
	// fits counts finished fits by terminal status
	fits *prometheus.CounterVec

	// iterations tracks iterations per fit
	iterations prometheus.Histogram

	// chi2PerNDF tracks the goodness of fit of converged fits
	chi2PerNDF prometheus.Histogram

	// skipped counts constraints skipped on a singular update, by kind
	skipped *prometheus.CounterVec

	// duration tracks wall time per fit
	duration prometheus.Histogram
}

// NewMetrics registers the fitter collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		fits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treefit_fits_total",
			Help: "Total decay tree fits by terminal status",
		}, []string{"status"}),
		iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treefit_fit_iterations",
			Help:    "Iterations per decay tree fit",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 15, 20},
		}),
		chi2PerNDF: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treefit_fit_chi2_per_ndf",
			Help:    "Chi-square per degree of freedom of converged fits",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treefit_skipped_constraints_total",
			Help: "Constraints skipped after a singular update, by constraint kind",
		}, []string{"kind"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treefit_fit_duration_seconds",
			Help:    "Decay tree fit duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~400ms
		}),
	}
}

func (m *Metrics) observeFit(res *Result, elapsed time.Duration) {
	if m == nil || res == nil {
		return
	}
	m.fits.WithLabelValues(res.Status.String()).Inc()
	m.iterations.Observe(float64(res.Iterations))
	m.duration.Observe(elapsed.Seconds())
	if res.Status == StatusConverged && res.NDF > 0 {
		m.chi2PerNDF.Observe(res.Chi2 / float64(res.NDF))
	}
}

func (m *Metrics) observeSkip(kind string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(kind).Inc()
}
