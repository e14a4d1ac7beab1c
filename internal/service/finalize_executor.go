package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/assets"
	"github.com/virafm/radiocast/internal/audio"
	"github.com/virafm/radiocast/internal/dispatch"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
	"github.com/virafm/radiocast/internal/timeline"
	"github.com/virafm/radiocast/internal/tts"
	"github.com/virafm/radiocast/pkg/metrics"
)

// FinalizeExecutor renders a draft newscast into a single audio asset:
// it synthesizes every spoken segment, concatenates the results with
// any pre-produced audio the timeline references, and publishes the
// merged file.
type FinalizeExecutor struct {
	store       store.Store
	synthesizer tts.Client
	concat      *audio.Concatenator
	assets      assets.Store
	log         *zap.SugaredLogger
}

var _ dispatch.Executor = (*FinalizeExecutor)(nil)

func NewFinalizeExecutor(store store.Store, synthesizer tts.Client, concat *audio.Concatenator, assetStore assets.Store) *FinalizeExecutor {
	return &FinalizeExecutor{
		store:       store,
		synthesizer: synthesizer,
		concat:      concat,
		assets:      assetStore,
		log:         zap.S().Named("finalize_executor"),
	}
}

func (e *FinalizeExecutor) Execute(ctx context.Context, job model.Job) error {
	var cfg api.FinalizeConfig
	if err := json.Unmarshal(job.Config, &cfg); err != nil {
		return NewErrInvalidRequest(fmt.Sprintf("malformed finalize config: %v", err))
	}

	newscast, err := e.store.Newscast().Get(ctx, cfg.NewscastId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrNewscastNotFound(cfg.NewscastId)
		}
		return err
	}
	if len(newscast.Timeline) == 0 {
		return NewErrInvalidRequest(fmt.Sprintf("newscast %s has no timeline to render", newscast.ID))
	}

	var tl timeline.Timeline
	if err := json.Unmarshal(newscast.Timeline, &tl); err != nil {
		return fmt.Errorf("failed to decode stored timeline: %w", err)
	}
	if len(tl.Segments) == 0 {
		return NewErrInvalidRequest(fmt.Sprintf("newscast %s has an empty timeline", newscast.ID))
	}

	rendering := model.NewscastStatusRendering
	if _, err := e.store.Newscast().Update(ctx, newscast.ID, nil, nil, &rendering, nil, nil, nil, nil); err != nil {
		return err
	}

	descriptors, synthStats := e.synthesizeSegments(ctx, job, newscast, tl)
	if len(descriptors) == 0 {
		return NewErrDependencyFailed("synthesis", audio.ErrNoValidAudio)
	}

	reportProgress(ctx, e.store.Job(), e.log, job.ID, 85, "Concatenando audio")

	merged, err := e.concat.Concatenate(ctx, descriptors)
	if err != nil {
		return NewErrDependencyFailed("audio concatenation", err)
	}

	reportProgress(ctx, e.store.Job(), e.log, job.ID, 92, "Publicando audio")

	audioURL, err := e.assets.PutNewscastAudio(ctx, newscast.ID, merged.WAV)
	if err != nil {
		return NewErrDependencyFailed("asset upload", err)
	}

	e.recordSynthesisUsage(ctx, job.ID, synthStats)

	ready := model.NewscastStatusReady
	durationSeconds := merged.DurationSeconds
	failedCount := synthStats.failed + merged.SkippedCount
	if _, err := e.store.Newscast().Update(ctx, newscast.ID, nil, &audioURL, &ready, &durationSeconds, nil, nil, &failedCount); err != nil {
		return err
	}

	if failedCount > 0 {
		metrics.IncreaseSegmentsSkippedMetric(job.Type, failedCount)
	}

	result, err := json.Marshal(api.FinalizeJobResult{
		NewscastId:      newscast.ID,
		AudioUrl:        audioURL,
		DurationSeconds: merged.DurationSeconds,
		SegmentCount:    merged.SegmentCount,
		SkippedCount:    failedCount,
	})
	if err != nil {
		return err
	}

	_, err = e.store.Job().SetResult(ctx, job.ID, result)
	return err
}

type synthesisStats struct {
	chars  int64
	cost   float64
	failed int
}

// synthesizeSegments produces one audio descriptor per renderable
// segment. Segments that already carry produced audio pass through
// untouched; segments whose synthesis fails are dropped so one bad
// segment cannot sink the whole newscast. The timeline's speed
// adjustment applies to every synthesized segment, keeping the spoken
// rate in step with the durations the assembler planned.
func (e *FinalizeExecutor) synthesizeSegments(ctx context.Context, job model.Job, newscast *model.Newscast, tl timeline.Timeline) ([]audio.SegmentDescriptor, synthesisStats) {
	segments := tl.Segments
	descriptors := make([]audio.SegmentDescriptor, 0, len(segments))
	stats := synthesisStats{}

	total := len(segments)
	for i, seg := range segments {
		// Synthesis occupies the 5..80 band of the overall progress.
		reportProgress(ctx, e.store.Job(), e.log, job.ID, 5+(75*(i+1))/total,
			fmt.Sprintf("Sintetizando segmento %d/%d", i+1, total))

		if seg.AudioUrl != "" {
			descriptors = append(descriptors, audio.SegmentDescriptor{
				URL:                     seg.AudioUrl,
				Title:                   seg.Title,
				ExpectedDurationSeconds: seg.DurationSeconds,
			})
			continue
		}
		if strings.TrimSpace(seg.Content) == "" {
			continue
		}

		voice := seg.VoiceId
		if voice == "" {
			voice = newscast.Voice
		}

		res, err := e.synthesizer.Synthesize(ctx, tts.Request{
			Text:            seg.Content,
			VoiceID:         voice,
			SpeedAdjustment: tl.Metadata.SpeedAdjustmentPct,
			Highlighted:     seg.Urgency == model.UrgencyHigh,
			Encoding:        tts.EncodingLinear16,
		})
		if err != nil {
			e.log.Warnw("skipping segment, synthesis failed",
				"job_id", job.ID, "segment", seg.Title, "error", err)
			stats.failed++
			continue
		}

		stats.chars += int64(len(seg.Content))
		stats.cost += res.Cost
		descriptors = append(descriptors, audio.SegmentDescriptor{
			URL:                     wavDataURI(res.Audio),
			Title:                   seg.Title,
			ExpectedDurationSeconds: res.DurationSeconds,
		})
	}

	return descriptors, stats
}

func (e *FinalizeExecutor) recordSynthesisUsage(ctx context.Context, jobID uuid.UUID, stats synthesisStats) {
	if stats.chars == 0 {
		return
	}
	usage := model.TokenUsage{
		ID:        uuid.New(),
		JobID:     &jobID,
		Operation: model.UsageOperationTTS,
		Provider:  "google-tts",
		Units:     stats.chars,
		CostUSD:   stats.cost,
	}
	if _, err := e.store.TokenUsage().Record(ctx, usage); err != nil {
		e.log.Warnw("failed to record synthesis usage", "job_id", jobID, "error", err)
	}
}

func wavDataURI(wav []byte) string {
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav)
}
