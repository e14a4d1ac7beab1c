package v1alpha1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/handlers/validator"
	"github.com/virafm/radiocast/internal/service"
	"github.com/virafm/radiocast/internal/store/model"
)

// (POST /api/v1alpha1/jobs)
func (h *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateJobRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderErrorStatus(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	var job *api.Job
	var err error

	switch req.Type {
	case api.JobTypeNewscast, api.JobTypeUrgentNewscast:
		var cfg api.NewscastConfig
		if uerr := json.Unmarshal(req.Config, &cfg); uerr != nil {
			renderErrorStatus(w, r, http.StatusBadRequest, "malformed newscast config")
			return
		}
		v := validator.NewValidator()
		v.Register(validator.NewNewscastValidationRules()...)
		if verr := v.Struct(cfg); verr != nil {
			renderErrorStatus(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		job, err = h.jobSrv.CreateNewscastJob(r.Context(), req.Type, cfg)
	case api.JobTypeFinalize:
		var cfg api.FinalizeConfig
		if uerr := json.Unmarshal(req.Config, &cfg); uerr != nil {
			renderErrorStatus(w, r, http.StatusBadRequest, "malformed finalize config")
			return
		}
		if verr := validator.NewValidator().Struct(cfg); verr != nil {
			renderErrorStatus(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		job, err = h.jobSrv.CreateFinalizeJob(r.Context(), cfg)
	case api.JobTypeScraping:
		var cfg api.CreateScrapingJobRequest
		if uerr := json.Unmarshal(req.Config, &cfg); uerr != nil {
			renderErrorStatus(w, r, http.StatusBadRequest, "malformed scraping config")
			return
		}
		if verr := validator.NewValidator().Struct(cfg); verr != nil {
			renderErrorStatus(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		job, err = h.jobSrv.CreateScrapingJob(r.Context(), cfg)
	default:
		renderErrorStatus(w, r, http.StatusBadRequest, "invalid job type "+string(req.Type))
		return
	}
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, job)
}

// (POST /api/v1alpha1/newscasts)
func (h *ServiceHandler) CreateNewscastJob(w http.ResponseWriter, r *http.Request) {
	h.createNewscastJob(w, r, api.JobTypeNewscast)
}

// (POST /api/v1alpha1/newscasts/urgent)
func (h *ServiceHandler) CreateUrgentNewscastJob(w http.ResponseWriter, r *http.Request) {
	h.createNewscastJob(w, r, api.JobTypeUrgentNewscast)
}

func (h *ServiceHandler) createNewscastJob(w http.ResponseWriter, r *http.Request, jobType api.JobType) {
	var req api.CreateNewscastJobRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderErrorStatus(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	v := validator.NewValidator()
	v.Register(validator.NewNewscastValidationRules()...)
	if err := v.Struct(req.Config); err != nil {
		renderErrorStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.jobSrv.CreateNewscastJob(r.Context(), jobType, req.Config)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, job)
}

// (POST /api/v1alpha1/newscasts/{id}/finalize)
func (h *ServiceHandler) FinalizeNewscast(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.jobSrv.CreateFinalizeJob(r.Context(), api.FinalizeConfig{NewscastId: id})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, job)
}

// (POST /api/v1alpha1/scraping)
func (h *ServiceHandler) CreateScrapingJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateScrapingJobRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderErrorStatus(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := validator.NewValidator().Struct(req); err != nil {
		renderErrorStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.jobSrv.CreateScrapingJob(r.Context(), req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, job)
}

// (GET /api/v1alpha1/jobs)
func (h *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := &service.JobFilter{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}
	if filter.Status != "" && !validJobStatus(filter.Status) {
		renderErrorStatus(w, r, http.StatusBadRequest, "invalid status filter")
		return
	}

	jobs, err := h.jobSrv.ListJobs(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, jobs)
}

// (GET /api/v1alpha1/jobs/{id})
func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.jobSrv.GetJob(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	// A type-qualified lookup must not reveal jobs of other types.
	if jobType := r.URL.Query().Get("type"); jobType != "" && job.Type != api.JobType(jobType) {
		renderErrorStatus(w, r, http.StatusNotFound, "job "+id.String()+" of type "+jobType+" not found")
		return
	}

	render.JSON(w, r, job)
}

// (DELETE /api/v1alpha1/jobs/{id})
func (h *ServiceHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.jobSrv.CancelJob(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, job)
}

func validJobStatus(status string) bool {
	switch status {
	case model.JobStatusPending, model.JobStatusProcessing, model.JobStatusCompleted,
		model.JobStatusFailed, model.JobStatusCancelled:
		return true
	}
	return false
}
