package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type LendingMetrics struct {
	BorrowsTotal         *prometheus.CounterVec
	ReturnsTotal         *prometheus.CounterVec
	OpenLoans            prometheus.Gauge
	AvailabilityMismatch prometheus.Gauge
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

var (
	Lending = LendingMetrics{
		BorrowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_lending_borrows_total",
				Help: "Total number of borrow attempts by outcome.",
			},
			[]string{"status"},
		),
		ReturnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_lending_returns_total",
				Help: "Total number of return attempts by outcome.",
			},
			[]string{"status"},
		),
		OpenLoans: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "library_lending_open_loans",
				Help: "Number of loans currently open, as of the last audit run.",
			},
		),
		AvailabilityMismatch: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "library_lending_availability_mismatches",
				Help: "Books whose availability flag disagrees with their open-loan state, as of the last audit run.",
			},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "library_lending_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}
)

func RecordBorrow(status string) {
	Lending.BorrowsTotal.WithLabelValues(status).Inc()
}

func RecordReturn(status string) {
	Lending.ReturnsTotal.WithLabelValues(status).Inc()
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordAudit(openLoans, mismatches int64) {
	Lending.OpenLoans.Set(float64(openLoans))
	Lending.AvailabilityMismatch.Set(float64(mismatches))
}
