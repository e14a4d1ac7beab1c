package mappers

import (
	"encoding/json"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/store/model"
)

func JobToApi(j model.Job) api.Job {
	return api.Job{
		Id:              j.ID,
		Type:            api.JobType(j.Type),
		Status:          api.JobStatus(j.Status),
		Progress:        j.Progress,
		ProgressMessage: j.ProgressMessage,
		Error:           j.Error,
		ErrorKind:       j.ErrorKind,
		Result:          json.RawMessage(j.Result),
		CreatedAt:       j.CreatedAt,
		StartedAt:       j.StartedAt,
		CompletedAt:     j.CompletedAt,
	}
}

func JobListToApi(jobs model.JobList) api.JobList {
	jobList := make(api.JobList, 0, len(jobs))
	for _, j := range jobs {
		jobList = append(jobList, JobToApi(j))
	}
	return jobList
}

func NewscastToApi(n model.Newscast) api.Newscast {
	newscast := api.Newscast{
		Id:              n.ID,
		Title:           n.Title,
		Voice:           n.Voice,
		Script:          n.Script,
		DurationSeconds: n.DurationSeconds,
		SegmentCount:    n.SegmentCount,
		SkippedCount:    n.SkippedCount,
		FailedCount:     n.FailedCount,
		Status:          n.Status,
		CreatedAt:       n.CreatedAt,
	}
	if n.AudioURL != nil {
		newscast.AudioUrl = *n.AudioURL
	}
	return newscast
}

func NewsItemToApi(n model.NewsItem) api.NewsItem {
	return api.NewsItem{
		Id:          n.ID,
		Url:         n.URL,
		Title:       n.Title,
		Category:    n.Category,
		Urgency:     n.Urgency,
		Source:      n.Source,
		PublishedAt: n.PublishedAt,
	}
}

func NewsItemListToApi(items model.NewsItemList) []api.NewsItem {
	newsList := make([]api.NewsItem, 0, len(items))
	for _, n := range items {
		newsList = append(newsList, NewsItemToApi(n))
	}
	return newsList
}
