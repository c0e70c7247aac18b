package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "chargehub_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultInvalid = "invalid"

	LoadResultHit   = "hit"
	LoadResultMiss  = "miss"
	LoadResultError = "error"
)

var (
	registerOnce sync.Once

	searchTotal   *prometheus.CounterVec
	searchLatency *prometheus.HistogramVec

	stationLoads   *prometheus.CounterVec
	stationsLoaded prometheus.Gauge

	ledgerOps   *prometheus.CounterVec
	openReports prometheus.Gauge
)

// Init registers the service metrics on the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		searchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "station_search_total",
				Help: "Total station searches by result",
			},
			[]string{"result"},
		)
		searchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "station_search_latency_seconds",
				Help:    "Station search latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		stationLoads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "station_data_loads_total",
				Help: "Station data source loads by cache result",
			},
			[]string{"result"},
		)
		stationsLoaded = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "stations_loaded",
				Help: "Number of stations in the last parsed data file",
			},
		)
		ledgerOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_operations_total",
				Help: "Malfunction ledger mutations by operation and result",
			},
			[]string{"operation", "result"},
		)
		openReports = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "open_malfunction_reports",
				Help: "Number of open malfunction reports",
			},
		)

		prometheus.MustRegister(
			searchTotal,
			searchLatency,
			stationLoads,
			stationsLoaded,
			ledgerOps,
			openReports,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch records a station search and its latency.
func ObserveSearch(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if searchTotal != nil {
		searchTotal.WithLabelValues(result).Inc()
	}
	if searchLatency != nil {
		searchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveStationLoad counts a data source access.
func ObserveStationLoad(result string) {
	if stationLoads != nil {
		stationLoads.WithLabelValues(result).Inc()
	}
}

// SetStationsLoaded records the size of the last parsed station set.
func SetStationsLoaded(n int) {
	if stationsLoaded != nil {
		stationsLoaded.Set(float64(n))
	}
}

// ObserveLedgerOp counts a ledger mutation.
func ObserveLedgerOp(operation, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if ledgerOps != nil {
		ledgerOps.WithLabelValues(operation, result).Inc()
	}
}

// SetOpenReports records the current number of open reports.
func SetOpenReports(n int) {
	if openReports != nil {
		openReports.Set(float64(n))
	}
}
