package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
)

// memStore is an in-memory stand-in for the persistence layer. Query
// filters are ignored; listing returns everything seeded.
type memStore struct {
	jobs      *memJobs
	newscasts *memNewscasts
	news      *memNews
	campaigns *memCampaigns
	usage     *memUsage
}

func newMemStore() *memStore {
	return &memStore{
		jobs:      &memJobs{jobs: make(map[uuid.UUID]*model.Job)},
		newscasts: &memNewscasts{newscasts: make(map[uuid.UUID]*model.Newscast)},
		news:      &memNews{},
		campaigns: &memCampaigns{},
		usage:     &memUsage{},
	}
}

func (s *memStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return ctx, nil
}
func (s *memStore) Job() store.Job               { return s.jobs }
func (s *memStore) Newscast() store.Newscast     { return s.newscasts }
func (s *memStore) NewsItem() store.NewsItem     { return s.news }
func (s *memStore) Campaign() store.Campaign     { return s.campaigns }
func (s *memStore) TokenUsage() store.TokenUsage { return s.usage }
func (s *memStore) Statistics(_ context.Context) (model.JobStats, error) {
	return model.JobStats{}, nil
}
func (s *memStore) Close() error { return nil }

type memJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*model.Job
}

func (f *memJobs) List(_ context.Context, _ *store.JobQueryFilter, _ *store.JobQueryOptions) (model.JobList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := model.JobList{}
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *memJobs) Get(_ context.Context, id uuid.UUID) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *memJobs) Create(_ context.Context, job model.Job) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[job.ID]; ok {
		return nil, store.ErrDuplicateKey
	}
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	f.jobs[job.ID] = &job
	copied := job
	return &copied, nil
}

func (f *memJobs) UpdateStatus(_ context.Context, id uuid.UUID, status string, errMsg, errKind *string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	if !job.CanTransitionTo(status) {
		if job.IsTerminal() {
			return nil, store.ErrJobAlreadyTerminated
		}
		return nil, store.ErrInvalidTransition
	}
	job.Status = status
	if errMsg != nil {
		job.Error = *errMsg
	}
	if errKind != nil {
		job.ErrorKind = *errKind
	}
	now := time.Now()
	if job.IsTerminal() {
		job.CompletedAt = &now
	}
	copied := *job
	return &copied, nil
}

func (f *memJobs) UpdateProgress(_ context.Context, id uuid.UUID, progress int, message string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	if !job.IsTerminal() {
		job.Progress = progress
		job.ProgressMessage = message
	}
	copied := *job
	return &copied, nil
}

func (f *memJobs) SetResult(_ context.Context, id uuid.UUID, result []byte) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	job.Result = result
	copied := *job
	return &copied, nil
}

func (f *memJobs) CountByStatus(_ context.Context, jobType string, statuses []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, j := range f.jobs {
		if j.Type != jobType {
			continue
		}
		for _, s := range statuses {
			if j.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *memJobs) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, id)
	return nil
}

type memNewscasts struct {
	mu        sync.Mutex
	newscasts map[uuid.UUID]*model.Newscast
}

func (f *memNewscasts) List(_ context.Context) (model.NewscastList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := model.NewscastList{}
	for _, n := range f.newscasts {
		out = append(out, *n)
	}
	return out, nil
}

func (f *memNewscasts) Get(_ context.Context, id uuid.UUID) (*model.Newscast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.newscasts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	copied := *n
	return &copied, nil
}

func (f *memNewscasts) GetByJobID(_ context.Context, jobID uuid.UUID) (*model.Newscast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.newscasts {
		if n.JobID != nil && *n.JobID == jobID {
			copied := *n
			return &copied, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (f *memNewscasts) Create(_ context.Context, newscast model.Newscast) (*model.Newscast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newscasts[newscast.ID] = &newscast
	copied := newscast
	return &copied, nil
}

func (f *memNewscasts) Update(_ context.Context, id uuid.UUID, script, audioURL, status *string, durationSeconds *float64, segmentCount, skippedCount, failedCount *int) (*model.Newscast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.newscasts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	if script != nil {
		n.Script = *script
	}
	if audioURL != nil {
		n.AudioURL = audioURL
	}
	if status != nil {
		n.Status = *status
	}
	if durationSeconds != nil {
		n.DurationSeconds = *durationSeconds
	}
	if segmentCount != nil {
		n.SegmentCount = *segmentCount
	}
	if skippedCount != nil {
		n.SkippedCount = *skippedCount
	}
	if failedCount != nil {
		n.FailedCount = *failedCount
	}
	copied := *n
	return &copied, nil
}

func (f *memNewscasts) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.newscasts, id)
	return nil
}

type memNews struct {
	mu    sync.Mutex
	items []model.NewsItem
}

func (f *memNews) List(_ context.Context, _ *store.NewsItemQueryFilter, _ *store.NewsItemQueryOptions) (model.NewsItemList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(model.NewsItemList, len(f.items))
	copy(out, f.items)
	sort.SliceStable(out, func(i, j int) bool {
		return model.UrgencyRank(out[i].Urgency) > model.UrgencyRank(out[j].Urgency)
	})
	return out, nil
}

func (f *memNews) Get(_ context.Context, id uuid.UUID) (*model.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == id {
			copied := item
			return &copied, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (f *memNews) Upsert(_ context.Context, item model.NewsItem) (*model.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].URL == item.URL {
			item.ID = f.items[i].ID
			f.items[i] = item
			copied := item
			return &copied, nil
		}
	}
	f.items = append(f.items, item)
	copied := item
	return &copied, nil
}

func (f *memNews) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type memCampaigns struct {
	mu        sync.Mutex
	campaigns []model.Campaign
	plays     []uuid.UUID
}

func (f *memCampaigns) ListActive(_ context.Context) (model.CampaignList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := model.CampaignList{}
	for _, c := range f.campaigns {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *memCampaigns) Get(_ context.Context, id uuid.UUID) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.campaigns {
		if c.ID == id {
			copied := c
			return &copied, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (f *memCampaigns) Create(_ context.Context, campaign model.Campaign) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns = append(f.campaigns, campaign)
	copied := campaign
	return &copied, nil
}

func (f *memCampaigns) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.campaigns {
		if f.campaigns[i].ID == id {
			f.campaigns[i].Active = active
			return nil
		}
	}
	return store.ErrRecordNotFound
}

func (f *memCampaigns) IncrementPlays(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, id)
	return nil
}

func (f *memCampaigns) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type memUsage struct {
	mu      sync.Mutex
	records []model.TokenUsage
}

func (f *memUsage) Record(_ context.Context, usage model.TokenUsage) (*model.TokenUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, usage)
	copied := usage
	return &copied, nil
}

func (f *memUsage) ListByJob(_ context.Context, jobID uuid.UUID) (model.TokenUsageList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := model.TokenUsageList{}
	for _, u := range f.records {
		if u.JobID != nil && *u.JobID == jobID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *memUsage) TotalCost(_ context.Context, operation string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, u := range f.records {
		if u.Operation == operation {
			total += u.CostUSD
		}
	}
	return total, nil
}

// recordingStrategy captures dispatched jobs instead of running them.
type recordingStrategy struct {
	mu         sync.Mutex
	dispatched []model.Job
	err        error
}

func (s *recordingStrategy) Dispatch(_ context.Context, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.dispatched = append(s.dispatched, job)
	return nil
}

func TestJobService_CreateNewscastJob(t *testing.T) {
	st := newMemStore()
	strategy := &recordingStrategy{}
	svc := NewJobService(st, strategy)

	job, err := svc.CreateNewscastJob(context.Background(), api.JobTypeNewscast, api.NewscastConfig{
		Region:                "Valparaíso",
		TargetDurationMinutes: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, api.JobTypeNewscast, job.Type)
	assert.Equal(t, api.JobStatusPending, job.Status)

	require.Len(t, strategy.dispatched, 1)
	assert.Equal(t, job.Id, strategy.dispatched[0].ID)

	var cfg api.NewscastConfig
	require.NoError(t, json.Unmarshal(strategy.dispatched[0].Config, &cfg))
	assert.Equal(t, "Valparaíso", cfg.Region)
}

func TestJobService_CreateNewscastJob_RejectsWrongType(t *testing.T) {
	svc := NewJobService(newMemStore(), &recordingStrategy{})

	_, err := svc.CreateNewscastJob(context.Background(), api.JobTypeScraping, api.NewscastConfig{Region: "Valparaíso"})
	var invalid *ErrInvalidRequest
	require.ErrorAs(t, err, &invalid)
}

func TestJobService_CreateNewscastJob_DispatchFailureMarksJobFailed(t *testing.T) {
	st := newMemStore()
	strategy := &recordingStrategy{err: errors.New("worker unavailable")}
	svc := NewJobService(st, strategy)

	_, err := svc.CreateNewscastJob(context.Background(), api.JobTypeNewscast, api.NewscastConfig{Region: "Valparaíso"})
	require.Error(t, err)

	jobs, listErr := st.jobs.List(context.Background(), nil, nil)
	require.NoError(t, listErr)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.JobStatusFailed, jobs[0].Status)
	assert.Equal(t, "worker unavailable", jobs[0].Error)
}

func TestJobService_CreateFinalizeJob_UnknownNewscast(t *testing.T) {
	svc := NewJobService(newMemStore(), &recordingStrategy{})

	_, err := svc.CreateFinalizeJob(context.Background(), api.FinalizeConfig{NewscastId: uuid.New()})
	var notFound *ErrResourceNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestJobService_CreateFinalizeJob(t *testing.T) {
	st := newMemStore()
	newscast, err := st.newscasts.Create(context.Background(), model.Newscast{
		ID:     uuid.New(),
		Title:  "Noticiero Valparaíso",
		Voice:  "es-US-Neural2-B",
		Status: model.NewscastStatusDraft,
	})
	require.NoError(t, err)

	strategy := &recordingStrategy{}
	svc := NewJobService(st, strategy)

	job, err := svc.CreateFinalizeJob(context.Background(), api.FinalizeConfig{NewscastId: newscast.ID})
	require.NoError(t, err)
	assert.Equal(t, api.JobTypeFinalize, job.Type)
	require.Len(t, strategy.dispatched, 1)
}

func TestJobService_GetJob_NotFound(t *testing.T) {
	svc := NewJobService(newMemStore(), &recordingStrategy{})

	_, err := svc.GetJob(context.Background(), uuid.New())
	var notFound *ErrResourceNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestJobService_CancelJob(t *testing.T) {
	st := newMemStore()
	svc := NewJobService(st, &recordingStrategy{})

	created, err := svc.CreateScrapingJob(context.Background(), api.CreateScrapingJobRequest{
		Urls: []string{"https://example.cl/portada"},
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelJob(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, api.JobStatusCancelled, cancelled.Status)

	// A settled job cannot be cancelled again.
	_, err = svc.CancelJob(context.Background(), created.Id)
	var notCancellable *ErrJobNotCancellable
	require.ErrorAs(t, err, &notCancellable)
}

func TestJobService_CancelJob_NotFound(t *testing.T) {
	svc := NewJobService(newMemStore(), &recordingStrategy{})

	_, err := svc.CancelJob(context.Background(), uuid.New())
	var notFound *ErrResourceNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestNewscastService_GetNewscast_NotFound(t *testing.T) {
	svc := NewNewscastService(newMemStore())

	_, err := svc.GetNewscast(context.Background(), uuid.New())
	var notFound *ErrResourceNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestNewscastService_ListVoices(t *testing.T) {
	svc := NewNewscastService(newMemStore())

	voices := svc.ListVoices(context.Background())
	require.NotEmpty(t, voices)
	for _, v := range voices {
		assert.NotEmpty(t, v.Id)
		assert.Greater(t, v.WordsPerMinute, 0.0)
	}
}
