package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/config"
	"github.com/virafm/radiocast/internal/dispatch"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/pkg/metrics"
	"github.com/virafm/radiocast/pkg/middleware"
)

// WorkerServer accepts job hand-offs from an API deployment running in
// remote dispatch mode. The hand-off is acknowledged immediately; the
// job body runs detached and settles the shared job record.
type WorkerServer struct {
	cfg      *config.Config
	store    store.Store
	runner   *dispatch.Runner
	listener net.Listener
}

func NewWorkerServer(cfg *config.Config, s store.Store, listener net.Listener) (*WorkerServer, error) {
	registry, err := NewExecutorRegistry(cfg, s)
	if err != nil {
		return nil, err
	}

	return &WorkerServer{
		cfg:      cfg,
		store:    s,
		runner:   dispatch.NewRunner(s.Job(), registry),
		listener: listener,
	}, nil
}

func (s *WorkerServer) Run(ctx context.Context) error {
	zap.S().Named("worker_server").Info("Initializing worker server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("worker_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Post("/execute", s.handleExecute)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("worker_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("worker_server").Info("worker server terminated")
	}()

	zap.S().Named("worker_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

func (s *WorkerServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req dispatch.ExecuteRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"message": "malformed execute request"})
		return
	}

	// The job record is authoritative; the posted config is only a
	// hint. A hand-off for an unknown job is rejected.
	job, err := s.store.Job().Get(r.Context(), req.JobId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"message": "unknown job " + req.JobId.String()})
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"message": err.Error()})
		return
	}

	go func() {
		if err := s.runner.Run(context.Background(), *job); err != nil {
			zap.S().Named("worker_server").Debugw("job finished with error", "job", job.ID, "error", err)
		}
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "accepted"})
}
