package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/virafm/radiocast/internal/store"
	"go.uber.org/zap"
)

type jobStatsCollector struct {
	store            store.Store
	totalJobs        *prometheus.Desc
	totalByStatus    *prometheus.Desc
	totalByType      *prometheus.Desc
	queueDepthByType *prometheus.Desc
}

func NewJobStatsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_jobs_%s", radiocast, name)
	}

	return &jobStatsCollector{
		store: s,
		totalJobs: prometheus.NewDesc(
			fqName("total"),
			"Total number of jobs.",
			nil,
			prometheus.Labels{},
		),
		totalByStatus: prometheus.NewDesc(
			fqName("by_status_total"),
			"Total jobs by lifecycle state",
			[]string{"status"},
			prometheus.Labels{},
		),
		totalByType: prometheus.NewDesc(
			fqName("by_type_total"),
			"Total jobs by job type",
			[]string{"type"},
			prometheus.Labels{},
		),
		queueDepthByType: prometheus.NewDesc(
			fqName("queue_depth"),
			"Pending and processing jobs by job type",
			[]string{"type"},
			prometheus.Labels{},
		),
	}
}

func (c *jobStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalJobs
	ch <- c.totalByStatus
	ch <- c.totalByType
	ch <- c.queueDepthByType
}

// Collect implements Collector.
func (c *jobStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.Statistics(context.Background())
	if err != nil {
		zap.S().Named("job_collector").Errorf("failed to collect job statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalJobs, prometheus.GaugeValue, float64(stats.Total))

	for status, total := range stats.TotalByStatus {
		ch <- prometheus.MustNewConstMetric(c.totalByStatus, prometheus.GaugeValue, float64(total), status)
	}

	for jobType, total := range stats.TotalByType {
		ch <- prometheus.MustNewConstMetric(c.totalByType, prometheus.GaugeValue, float64(total), jobType)
	}

	for jobType, depth := range stats.QueueDepthByType {
		ch <- prometheus.MustNewConstMetric(c.queueDepthByType, prometheus.GaugeValue, float64(depth), jobType)
	}
}
