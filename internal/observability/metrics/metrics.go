package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "maintenance_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	pipelineRuns    *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
	rowsScored      prometheus.Counter
	devicesScored   prometheus.Gauge

	datasetLoads       *prometheus.CounterVec
	datasetLoadLatency *prometheus.HistogramVec
	cacheEvents        *prometheus.CounterVec

	complaintAppends *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the service metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		pipelineRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_runs_total",
				Help: "Total prediction pipeline runs by trigger and result",
			},
			[]string{"trigger", "result"},
		)
		pipelineLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_latency_seconds",
				Help:    "Prediction pipeline latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		rowsScored = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "feature_rows_scored_total",
				Help: "Total feature rows scored by the classifier",
			},
		)
		devicesScored = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "snapshot_devices",
				Help: "Devices in the last persisted predictions snapshot",
			},
		)

		datasetLoads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dataset_loads_total",
				Help: "Total dataset loads by dataset, resolved source and result",
			},
			[]string{"dataset", "source", "result"},
		)
		datasetLoadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dataset_load_latency_seconds",
				Help:    "Dataset load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dataset"},
		)
		cacheEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_events_total",
				Help: "Dataset cache hits, misses and invalidations",
			},
			[]string{"dataset", "event"},
		)

		complaintAppends = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "complaint_appends_total",
				Help: "Total complaint appends by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total risk report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Risk report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			pipelineRuns,
			pipelineLatency,
			rowsScored,
			devicesScored,
			datasetLoads,
			datasetLoadLatency,
			cacheEvents,
			complaintAppends,
			exportTotal,
			exportLatency,
		)
	})
}

// ObservePipelineRun records a pipeline run.
func ObservePipelineRun(trigger, result string, duration time.Duration) {
	if trigger == "" {
		trigger = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if pipelineRuns != nil {
		pipelineRuns.WithLabelValues(trigger, result).Inc()
	}
	if pipelineLatency != nil {
		pipelineLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveScored records rows scored and the persisted snapshot size.
func ObserveScored(rows, devices int) {
	if rowsScored != nil && rows > 0 {
		rowsScored.Add(float64(rows))
	}
	if devicesScored != nil {
		devicesScored.Set(float64(devices))
	}
}

// ObserveDatasetLoad records which source served a dataset.
func ObserveDatasetLoad(dataset, source, result string, duration time.Duration) {
	if dataset == "" {
		dataset = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if datasetLoads != nil {
		datasetLoads.WithLabelValues(dataset, source, result).Inc()
	}
	if datasetLoadLatency != nil {
		datasetLoadLatency.WithLabelValues(dataset).Observe(duration.Seconds())
	}
}

// IncCacheEvent increments the cache event counter.
func IncCacheEvent(dataset, event string) {
	if cacheEvents != nil {
		cacheEvents.WithLabelValues(dataset, event).Inc()
	}
}

// IncComplaintAppend increments the complaint append counter.
func IncComplaintAppend(result string) {
	if result == "" {
		result = resultSuccess
	}
	if complaintAppends != nil {
		complaintAppends.WithLabelValues(result).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	CacheHit        = "hit"
	CacheMiss       = "miss"
	CacheInvalidate = "invalidate"
)
