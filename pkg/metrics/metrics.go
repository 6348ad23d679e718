package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reportctl"

// Registry holds every reportctl collector. It is separate from the default
// registry so that embedding programs do not see our series.
var Registry = prometheus.NewRegistry()

var (
	reportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_total",
		Help:      "Report requests by classified result kind.",
	}, []string{"kind"})

	reportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "Latency of report generation requests.",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	blobsLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "blobs_live",
		Help:      "Allocated display resources that have not been released.",
	})

	blobReleases = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_releases_total",
		Help:      "Display resources released.",
	})
)

func init() {
	Registry.MustRegister(reportsTotal, reportDuration, blobsLive, blobReleases)
}

// ObserveReport records one finished report request
func ObserveReport(kind string, elapsed time.Duration) {
	reportsTotal.WithLabelValues(kind).Inc()
	reportDuration.Observe(elapsed.Seconds())
}

// BlobAllocated increments the live blob gauge
func BlobAllocated() {
	blobsLive.Inc()
}

// BlobReleased decrements the live blob gauge and counts the release
func BlobReleased() {
	blobsLive.Dec()
	blobReleases.Inc()
}

// Handler serves Registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
