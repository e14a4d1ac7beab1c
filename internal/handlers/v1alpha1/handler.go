package v1alpha1

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/service"
	"github.com/virafm/radiocast/pkg/requestid"
)

// JobService is the slice of the job layer the HTTP handlers consume.
type JobService interface {
	CreateNewscastJob(ctx context.Context, jobType api.JobType, cfg api.NewscastConfig) (*api.Job, error)
	CreateFinalizeJob(ctx context.Context, cfg api.FinalizeConfig) (*api.Job, error)
	CreateScrapingJob(ctx context.Context, req api.CreateScrapingJobRequest) (*api.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*api.Job, error)
	ListJobs(ctx context.Context, filter *service.JobFilter) (api.JobList, error)
	CancelJob(ctx context.Context, id uuid.UUID) (*api.Job, error)
}

// NewscastService is the read side the HTTP handlers consume.
type NewscastService interface {
	GetNewscast(ctx context.Context, id uuid.UUID) (*api.Newscast, error)
	ListNewscasts(ctx context.Context) ([]api.Newscast, error)
	ListNews(ctx context.Context, filter *service.NewsFilter) ([]api.NewsItem, error)
	ListVoices(ctx context.Context) api.VoiceList
}

type ServiceHandler struct {
	jobSrv      JobService
	newscastSrv NewscastService
}

func NewServiceHandler(jobService JobService, newscastService NewscastService) *ServiceHandler {
	return &ServiceHandler{
		jobSrv:      jobService,
		newscastSrv: newscastService,
	}
}

// Register mounts all v1alpha1 routes plus the health endpoint.
func (h *ServiceHandler) Register(router chi.Router) {
	router.Route("/api/v1alpha1", func(r chi.Router) {
		r.Post("/newscasts", h.CreateNewscastJob)
		r.Post("/newscasts/urgent", h.CreateUrgentNewscastJob)
		r.Get("/newscasts", h.ListNewscasts)
		r.Get("/newscasts/{id}", h.GetNewscast)
		r.Post("/newscasts/{id}/finalize", h.FinalizeNewscast)
		r.Post("/scraping", h.CreateScrapingJob)
		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/{id}", h.GetJob)
		r.Delete("/jobs/{id}", h.CancelJob)
		r.Get("/news", h.ListNews)
		r.Get("/voices", h.ListVoices)
	})
	router.Get("/health", h.Health)
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func errorStatus(err error) int {
	var notFound *service.ErrResourceNotFound
	var invalid *service.ErrInvalidRequest
	var conflict *service.ErrJobNotCancellable
	var dependency *service.ErrDependencyFailed

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &dependency):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	renderErrorStatus(w, r, errorStatus(err), err.Error())
}

func renderErrorStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	var reqID *string
	if id := requestid.FromContext(r.Context()); id != "" {
		reqID = &id
	}
	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: message, RequestId: reqID})
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		renderErrorStatus(w, r, http.StatusBadRequest, "invalid "+name+": must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}
