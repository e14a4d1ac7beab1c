package v1alpha1

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/virafm/radiocast/internal/service"
	"github.com/virafm/radiocast/internal/store/model"
)

// (GET /api/v1alpha1/newscasts)
func (h *ServiceHandler) ListNewscasts(w http.ResponseWriter, r *http.Request) {
	newscasts, err := h.newscastSrv.ListNewscasts(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, newscasts)
}

// (GET /api/v1alpha1/newscasts/{id})
func (h *ServiceHandler) GetNewscast(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	newscast, err := h.newscastSrv.GetNewscast(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, newscast)
}

// (GET /api/v1alpha1/news)
func (h *ServiceHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := &service.NewsFilter{
		Categories: query["category"],
		Urgency:    query.Get("urgency"),
	}
	if filter.Urgency != "" && !validUrgency(filter.Urgency) {
		renderErrorStatus(w, r, http.StatusBadRequest, "invalid urgency filter")
		return
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			renderErrorStatus(w, r, http.StatusBadRequest, "invalid limit: must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	news, err := h.newscastSrv.ListNews(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, news)
}

// (GET /api/v1alpha1/voices)
func (h *ServiceHandler) ListVoices(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.newscastSrv.ListVoices(r.Context()))
}

func validUrgency(urgency string) bool {
	switch urgency {
	case model.UrgencyHigh, model.UrgencyMedium, model.UrgencyLow:
		return true
	}
	return false
}
