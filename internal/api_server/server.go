// Package apiserver wires the HTTP surface of the service: routing,
// middleware, the service layer and the execution strategy background
// jobs run under.
package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/assets"
	"github.com/virafm/radiocast/internal/audio"
	"github.com/virafm/radiocast/internal/config"
	"github.com/virafm/radiocast/internal/dispatch"
	handlers "github.com/virafm/radiocast/internal/handlers/v1alpha1"
	"github.com/virafm/radiocast/internal/humanize"
	"github.com/virafm/radiocast/internal/scraper"
	"github.com/virafm/radiocast/internal/service"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
	"github.com/virafm/radiocast/internal/timeline"
	"github.com/virafm/radiocast/internal/tts"
	"github.com/virafm/radiocast/pkg/metrics"
	"github.com/virafm/radiocast/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of a radiocast API server.
func New(cfg *config.Config, store store.Store, listener net.Listener) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

// NewExecutorRegistry builds the registry with every production job
// executor wired in. Shared by the API server (local dispatch) and the
// worker binary.
func NewExecutorRegistry(cfg *config.Config, s store.Store) (*dispatch.Registry, error) {
	humanizer := humanize.NewHTTPClient(
		cfg.Service.Humanizer.Endpoint,
		cfg.Service.Humanizer.ApiKey,
		cfg.Service.Humanizer.Model,
	)
	synthesizer := tts.NewGoogleClient(cfg.Service.TTS.Endpoint, cfg.Service.TTS.ApiKey)

	assetStore, err := assets.NewMinioStore(
		assets.WithEndpoint(cfg.Service.Assets.Endpoint),
		assets.WithBucket(cfg.Service.Assets.Bucket),
		assets.WithAccessKey(cfg.Service.Assets.AccessKey),
		assets.WithSecretKey(cfg.Service.Assets.SecretKey),
		assets.WithSSL(cfg.Service.Assets.UseSSL),
		assets.WithPublicURLPrefix(cfg.Service.Assets.PublicUrlPrefix),
	)
	if err != nil {
		return nil, err
	}

	assembler := timeline.NewAssembler(humanizer, s.TokenUsage(), s.Campaign())
	concat := audio.NewConcatenator(audio.NewHTTPFetcher(cfg.Service.BaseUrl))

	newscastExecutor := service.NewNewscastExecutor(s, assembler, cfg.Service.Voice.DefaultVoice)

	var scraperOpts []scraper.Option
	if cfg.Service.Scraper.BatchSize > 0 {
		scraperOpts = append(scraperOpts, scraper.WithBatchSize(cfg.Service.Scraper.BatchSize))
	}
	if cfg.Service.Scraper.BatchDelayMs > 0 {
		scraperOpts = append(scraperOpts, scraper.WithBatchDelay(time.Duration(cfg.Service.Scraper.BatchDelayMs)*time.Millisecond))
	}
	if cfg.Service.Scraper.RequestTimeoutSec > 0 {
		scraperOpts = append(scraperOpts, scraper.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Service.Scraper.RequestTimeoutSec) * time.Second,
		}))
	}

	registry := dispatch.NewRegistry()
	registry.Register(model.JobTypeNewscast, newscastExecutor)
	registry.Register(model.JobTypeUrgentNewscast, newscastExecutor)
	registry.Register(model.JobTypeFinalize, service.NewFinalizeExecutor(s, synthesizer, concat, assetStore))
	registry.Register(model.JobTypeScraping, service.NewScrapingExecutor(s, cfg.Service.Region, scraperOpts...))

	return registry, nil
}

func newExecutionStrategy(cfg *config.Config, s store.Store) (dispatch.ExecutionStrategy, error) {
	if cfg.Service.Dispatch.Mode == "remote" {
		return dispatch.NewRemoteStrategy(cfg.Service.Dispatch.WorkerUrl), nil
	}

	registry, err := NewExecutorRegistry(cfg, s)
	if err != nil {
		return nil, err
	}
	return dispatch.NewLocalStrategy(dispatch.NewRunner(s.Job(), registry)), nil
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	strategy, err := newExecutionStrategy(s.cfg, s.store)
	if err != nil {
		return err
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	h := handlers.NewServiceHandler(
		service.NewJobService(s.store, strategy),
		service.NewNewscastService(s.store),
	)
	h.Register(router)

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
