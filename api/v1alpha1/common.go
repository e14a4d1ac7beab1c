package v1alpha1

func StringToJobStatus(s string) JobStatus {
	switch s {
	case string(JobStatusPending):
		return JobStatusPending
	case string(JobStatusProcessing):
		return JobStatusProcessing
	case string(JobStatusCompleted):
		return JobStatusCompleted
	case string(JobStatusFailed):
		return JobStatusFailed
	case string(JobStatusCancelled):
		return JobStatusCancelled
	default:
		return JobStatusPending
	}
}

func StringToJobType(s string) JobType {
	switch s {
	case string(JobTypeUrgentNewscast):
		return JobTypeUrgentNewscast
	case string(JobTypeFinalize):
		return JobTypeFinalize
	case string(JobTypeScraping):
		return JobTypeScraping
	default:
		return JobTypeNewscast
	}
}
