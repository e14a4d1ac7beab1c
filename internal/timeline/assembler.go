package timeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/duration"
	"github.com/virafm/radiocast/internal/humanize"
	"github.com/virafm/radiocast/internal/store/model"
)

var (
	// ErrNoNewsItems rejects assembly before any state is created.
	ErrNoNewsItems = errors.New("newscast requires at least one news item")

	// ErrAllItemsFailed means every news item was skipped, leaving an
	// intro/outro-only timeline, which is not a valid newscast.
	ErrAllItemsFailed = errors.New("humanization failed for every news item")
)

const (
	// DefaultMaxItems caps how many news items one newscast carries.
	DefaultMaxItems = 10

	// DefaultAdCount is how many advertisement breaks are interleaved
	// when ads are enabled and campaigns exist.
	DefaultAdCount = 2

	// extendedClosingThresholdSeconds triggers the headline-recap
	// closing when the assembled timeline runs this far short of
	// target.
	extendedClosingThresholdSeconds = 30
)

// UsageRecorder appends one token-usage ledger entry. Satisfied by the
// token usage store.
type UsageRecorder interface {
	Record(ctx context.Context, usage model.TokenUsage) (*model.TokenUsage, error)
}

// AdSource provides the active ad campaigns and tracks their plays.
// Satisfied by the campaign store.
type AdSource interface {
	ListActive(ctx context.Context) (model.CampaignList, error)
	IncrementPlays(ctx context.Context, id uuid.UUID) error
}

// WeatherProvider supplies an optional weather line for the intro.
type WeatherProvider interface {
	Current(ctx context.Context, region string) (string, error)
}

// NoopWeather is the default provider; it contributes nothing.
type NoopWeather struct{}

func (NoopWeather) Current(ctx context.Context, region string) (string, error) {
	return "", nil
}

// Params drives one assembly run.
type Params struct {
	Items                 []model.NewsItem
	TargetDurationMinutes int
	Region                string
	RadioName             string
	Voice                 string
	RequesterID           string
	JobID                 *uuid.UUID
	MaxItems              int
	Humanize              bool
	IncludeAds            bool
	AdCount               int
	SpeedAdjustmentPct    float64

	// Progress, when set, is called once per processed news item.
	Progress func(current, total int, message string)
}

// Result is the assembled timeline plus its aggregate cost footprint.
type Result struct {
	Timeline     Timeline
	TokensUsed   int64
	Cost         float64
	SkippedCount int
}

// Assembler builds newscast timelines. Item processing is strictly
// sequential: each humanization call carries the previous item's
// category as transition context.
type Assembler struct {
	humanizer humanize.Client
	usage     UsageRecorder
	ads       AdSource
	weather   WeatherProvider
	log       *zap.SugaredLogger
	now       func() time.Time
}

// AssemblerOption configures optional collaborators.
type AssemblerOption func(*Assembler)

func WithWeather(w WeatherProvider) AssemblerOption {
	return func(a *Assembler) {
		a.weather = w
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

func NewAssembler(humanizer humanize.Client, usage UsageRecorder, ads AdSource, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		humanizer: humanizer,
		usage:     usage,
		ads:       ads,
		weather:   NoopWeather{},
		log:       zap.S().Named("timeline"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble converts news items plus generation parameters into a
// Timeline. Items whose humanization fails are skipped; the run fails
// only when no item survives.
func (a *Assembler) Assemble(ctx context.Context, p Params) (*Result, error) {
	if len(p.Items) == 0 {
		return nil, ErrNoNewsItems
	}

	items := sortByUrgency(p.Items)

	maxItems := p.MaxItems
	if maxItems <= 0 || maxItems > DefaultMaxItems {
		maxItems = DefaultMaxItems
	}
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	radioName := p.RadioName
	if radioName == "" {
		radioName = "Radio " + p.Region
	}

	res := &Result{
		Timeline: Timeline{
			Metadata: Metadata{
				TargetDurationSeconds: float64(p.TargetDurationMinutes) * 60,
				Region:                p.Region,
				SpeedAdjustmentPct:    p.SpeedAdjustmentPct,
				GeneratedAt:           a.now(),
			},
		},
	}

	a.appendIntro(ctx, res, p, radioName)

	campaigns := a.activeCampaigns(ctx, p)
	newsPerAd := len(items)
	adCount := p.AdCount
	if adCount <= 0 {
		adCount = DefaultAdCount
	}
	if len(campaigns) > 0 && adCount > 0 {
		newsPerAd = int(math.Ceil(float64(len(items)) / float64(adCount+1)))
	}

	adIndex := 0
	appended := 0
	for i, item := range items {
		if p.Progress != nil {
			p.Progress(i+1, len(items), fmt.Sprintf("Procesando noticia %d de %d", i+1, len(items)))
		}

		previousCategory := ""
		if i > 0 {
			previousCategory = items[i-1].Category
		}

		segment, err := a.newsSegment(ctx, p, item, humanize.TransitionContext{
			Index:            i,
			Total:            len(items),
			Category:         item.Category,
			PreviousCategory: previousCategory,
		}, res)
		if err != nil {
			a.log.Warnw("skipping news item", "title", item.Title, "error", err)
			res.SkippedCount++
			continue
		}

		res.Timeline.Segments = append(res.Timeline.Segments, *segment)
		appended++

		if len(campaigns) > 0 && adIndex < adCount && appended%newsPerAd == 0 {
			a.appendAd(ctx, res, campaigns[adIndex%len(campaigns)])
			adIndex++
		}
	}

	if appended == 0 {
		return nil, ErrAllItemsFailed
	}
	res.Timeline.Metadata.NewsCount = appended

	a.appendClosing(res, p, items, radioName)

	var total float64
	for _, s := range res.Timeline.Segments {
		total += s.DurationSeconds
	}
	res.Timeline.TotalDurationSeconds = total

	return res, nil
}

func (a *Assembler) appendIntro(ctx context.Context, res *Result, p Params, radioName string) {
	weather := ""
	if line, err := a.weather.Current(ctx, p.Region); err != nil {
		a.log.Warnw("weather lookup failed", "region", p.Region, "error", err)
	} else if line != "" {
		weather = fmt.Sprintf("El clima en %s, %s.", p.Region, line)
	}

	content := introText(a.now(), radioName, weather)
	res.Timeline.Segments = append(res.Timeline.Segments, Segment{
		Id:              uuid.New(),
		Kind:            SegmentIntro,
		Title:           "Intro",
		Content:         content,
		DurationSeconds: a.estimate(content, p),
		VoiceId:         p.Voice,
	})
}

func (a *Assembler) newsSegment(ctx context.Context, p Params, item model.NewsItem, transition humanize.TransitionContext, res *Result) (*Segment, error) {
	raw := item.Title + ". " + item.Content

	var content string
	if p.Humanize {
		result, err := a.humanizer.Humanize(ctx, humanize.Request{
			RawText:     raw,
			Region:      p.Region,
			RequesterID: p.RequesterID,
			TargetWords: duration.WordsPerNews,
			Context:     transition,
		})
		if err != nil {
			return nil, err
		}
		content = result.Content
		res.TokensUsed += result.TokensUsed
		res.Cost += result.Cost
		a.recordUsage(ctx, p, result)
	} else {
		content = humanize.PrepareContent(raw, humanize.DefaultMaxContentChars)
	}

	return &Segment{
		Id:              uuid.New(),
		Kind:            SegmentNews,
		Title:           item.Title,
		Content:         content,
		OriginalContent: item.Content,
		DurationSeconds: a.estimate(content, p),
		VoiceId:         p.Voice,
		Category:        item.Category,
		Source:          item.Source,
		Urgency:         item.Urgency,
	}, nil
}

func (a *Assembler) appendAd(ctx context.Context, res *Result, campaign model.Campaign) {
	segment := Segment{
		Id:              uuid.New(),
		Kind:            SegmentAd,
		Title:           campaign.Name,
		Content:         campaign.Script,
		DurationSeconds: duration.AdSeconds,
	}
	if campaign.AudioURL != nil {
		segment.AudioUrl = *campaign.AudioURL
	}
	res.Timeline.Segments = append(res.Timeline.Segments, segment)

	if err := a.ads.IncrementPlays(ctx, campaign.ID); err != nil {
		a.log.Warnw("failed to count campaign play", "campaign", campaign.Name, "error", err)
	}
}

// appendClosing emits the outro, preceded by an extended headline-recap
// closing when the assembled timeline runs well short of target.
func (a *Assembler) appendClosing(res *Result, p Params, items []model.NewsItem, radioName string) {
	var current float64
	for _, s := range res.Timeline.Segments {
		current += s.DurationSeconds
	}

	target := float64(p.TargetDurationMinutes) * 60
	missing := target - current - duration.OutroSeconds

	outro := outroText(radioName)
	if target > 0 && missing > extendedClosingThresholdSeconds {
		headlines := make([]string, 0, 5)
		for _, item := range items {
			if len(headlines) == 5 {
				break
			}
			headlines = append(headlines, item.Title)
		}
		content := extendedClosingText(p.Region, radioName, headlines)
		res.Timeline.Segments = append(res.Timeline.Segments, Segment{
			Id:              uuid.New(),
			Kind:            SegmentClosing,
			Title:           "Cierre extendido",
			Content:         content,
			DurationSeconds: a.estimate(content, p),
			VoiceId:         p.Voice,
		})
		outro = shortOutroText()
	}

	res.Timeline.Segments = append(res.Timeline.Segments, Segment{
		Id:              uuid.New(),
		Kind:            SegmentOutro,
		Title:           "Cierre",
		Content:         outro,
		DurationSeconds: a.estimate(outro, p),
		VoiceId:         p.Voice,
	})
}

func (a *Assembler) activeCampaigns(ctx context.Context, p Params) model.CampaignList {
	if !p.IncludeAds || a.ads == nil {
		return nil
	}
	campaigns, err := a.ads.ListActive(ctx)
	if err != nil {
		a.log.Warnw("failed to list campaigns, skipping ads", "error", err)
		return nil
	}
	return campaigns
}

func (a *Assembler) recordUsage(ctx context.Context, p Params, result *humanize.Result) {
	if a.usage == nil || result.TokensUsed == 0 {
		return
	}
	_, err := a.usage.Record(ctx, model.TokenUsage{
		JobID:     p.JobID,
		Operation: model.UsageOperationHumanize,
		Provider:  "chat-completions",
		Units:     result.TokensUsed,
		CostUSD:   result.Cost,
	})
	if err != nil {
		a.log.Warnw("failed to record token usage", "error", err)
	}
}

func (a *Assembler) estimate(text string, p Params) float64 {
	return duration.Estimate(text, duration.Profile(p.Voice), p.SpeedAdjustmentPct, duration.CorrectionFactor)
}

// sortByUrgency orders items high before medium before low, stable on
// ties so the caller's curation order survives.
func sortByUrgency(items []model.NewsItem) []model.NewsItem {
	sorted := make([]model.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return model.UrgencyRank(sorted[i].Urgency) > model.UrgencyRank(sorted[j].Urgency)
	})
	return sorted
}
