package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RunsTotal           *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	RunStage            *prometheus.GaugeVec
	ItemsTotal          *prometheus.CounterVec
	ScrollIterations    *prometheus.HistogramVec
	RecordsExported     *prometheus.CounterVec

	initOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_runs_total",
			Help: "Total number of scrape runs by final state.",
		},
		[]string{"profile", "outcome"}, // outcome: done, aborted
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_run_duration_seconds",
			Help:    "Wall-clock duration of scrape runs.",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
		},
		[]string{"profile"},
	)

	RunStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scraper_run_stage",
			Help: "1 for the stage the current run is in, 0 otherwise.",
		},
		[]string{"profile", "stage"},
	)

	ItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_items_total",
			Help: "Items processed, by result.",
		},
		[]string{"profile", "result"}, // result: extracted, failed, skipped
	)

	ScrollIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_scroll_iterations",
			Help:    "Scroll commands issued before the container height settled.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"profile"},
	)

	RecordsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_records_exported_total",
			Help: "Records written, by sink.",
		},
		[]string{"sink"},
	)
}
