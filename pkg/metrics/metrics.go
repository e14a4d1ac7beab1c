package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	radiocast = "radiocast"

	// Job metrics
	jobsStartedTotal   = "jobs_started_total"
	jobsCompletedTotal = "jobs_completed_total"
	jobsFailedTotal    = "jobs_failed_total"
	JobQueueDepth      = "job_queue_depth"

	// Audio metrics
	segmentsSkippedTotal = "audio_segments_skipped_total"

	// Labels
	jobTypeLabel     = "type"
	failureKindLabel = "kind"
)

var jobTypeLabels = []string{
	jobTypeLabel,
}

var jobFailureLabels = []string{
	jobTypeLabel,
	failureKindLabel,
}

/**
* Metrics definition
**/
var jobsStartedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: radiocast,
		Name:      jobsStartedTotal,
		Help:      "number of jobs moved into the processing state",
	},
	jobTypeLabels,
)

var jobsCompletedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: radiocast,
		Name:      jobsCompletedTotal,
		Help:      "number of jobs that reached the completed state",
	},
	jobTypeLabels,
)

var jobsFailedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: radiocast,
		Name:      jobsFailedTotal,
		Help:      "number of jobs that reached the failed state, by failure kind",
	},
	jobFailureLabels,
)

var jobQueueDepthMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: radiocast,
		Name:      JobQueueDepth,
		Help:      "number of jobs currently pending or processing",
	},
	jobTypeLabels,
)

var segmentsSkippedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: radiocast,
		Name:      segmentsSkippedTotal,
		Help:      "number of audio segments skipped during concatenation",
	},
	jobTypeLabels,
)

func IncreaseJobsStartedMetric(jobType string) {
	jobsStartedTotalMetric.With(prometheus.Labels{jobTypeLabel: jobType}).Inc()
}

func IncreaseJobsCompletedMetric(jobType string) {
	jobsCompletedTotalMetric.With(prometheus.Labels{jobTypeLabel: jobType}).Inc()
}

func IncreaseJobsFailedMetric(jobType string, kind string) {
	labels := prometheus.Labels{
		jobTypeLabel:     jobType,
		failureKindLabel: kind,
	}
	jobsFailedTotalMetric.With(labels).Inc()
}

func UpdateJobQueueDepthMetric(jobType string, depth int) {
	jobQueueDepthMetric.With(prometheus.Labels{jobTypeLabel: jobType}).Set(float64(depth))
}

func IncreaseSegmentsSkippedMetric(jobType string, count int) {
	segmentsSkippedTotalMetric.With(prometheus.Labels{jobTypeLabel: jobType}).Add(float64(count))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsStartedTotalMetric)
	prometheus.MustRegister(jobsCompletedTotalMetric)
	prometheus.MustRegister(jobsFailedTotalMetric)
	prometheus.MustRegister(jobQueueDepthMetric)
	prometheus.MustRegister(segmentsSkippedTotalMetric)
}
