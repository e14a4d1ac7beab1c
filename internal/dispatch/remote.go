package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/store/model"
)

// defaultAckTimeout bounds how long we wait for the worker to accept a
// job. Only the hand-off is awaited, never the work.
const defaultAckTimeout = 10 * time.Second

// ExecuteRequest is the payload posted to the worker's execute
// endpoint.
type ExecuteRequest struct {
	JobId  uuid.UUID       `json:"jobId"`
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// RemoteStrategy forwards jobs to a separately running worker with a
// fire-and-forget POST. An acknowledgement failure is logged but not
// fatal: the job record is already persisted and can be retried or
// inspected.
type RemoteStrategy struct {
	workerURL  string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// Make sure we conform to ExecutionStrategy interface
var _ ExecutionStrategy = (*RemoteStrategy)(nil)

func NewRemoteStrategy(workerURL string) *RemoteStrategy {
	return &RemoteStrategy{
		workerURL:  strings.TrimSuffix(workerURL, "/"),
		httpClient: &http.Client{Timeout: defaultAckTimeout},
		log:        zap.S().Named("dispatch"),
	}
}

func (s *RemoteStrategy) Dispatch(ctx context.Context, job model.Job) error {
	body, err := json.Marshal(ExecuteRequest{
		JobId:  job.ID,
		Type:   job.Type,
		Config: json.RawMessage(job.Config),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.workerURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warnw("worker did not acknowledge job", "job", job.ID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warnw("worker rejected job hand-off", "job", job.ID, "status", resp.StatusCode)
	}
	return nil
}
