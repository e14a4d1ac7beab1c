package model

// JobStats aggregates the jobs table for the metrics collector.
type JobStats struct {
	// Total is the total number of jobs ever recorded.
	Total int
	// TotalByStatus is the number of jobs per lifecycle state.
	TotalByStatus map[string]int
	// TotalByType is the number of jobs per job type.
	TotalByType map[string]int
	// QueueDepthByType counts pending and processing jobs per type.
	QueueDepthByType map[string]int
}

func NewJobStats(jobs []Job) JobStats {
	stats := JobStats{
		Total:            len(jobs),
		TotalByStatus:    make(map[string]int),
		TotalByType:      make(map[string]int),
		QueueDepthByType: make(map[string]int),
	}

	for _, j := range jobs {
		stats.TotalByStatus[j.Status]++
		stats.TotalByType[j.Type]++
		if j.Status == JobStatusPending || j.Status == JobStatusProcessing {
			stats.QueueDepthByType[j.Type]++
		}
	}

	return stats
}
