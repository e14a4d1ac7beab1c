// Package scraper fetches news article pages and stores them as news
// items, processing source URLs in bounded-concurrency batches.
package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/store/model"
)

const (
	// DefaultBatchSize bounds how many pages are fetched concurrently.
	DefaultBatchSize = 5

	// DefaultBatchDelay paces consecutive batches so sources are not
	// hammered.
	DefaultBatchDelay = 1 * time.Second

	defaultRequestTimeout = 15 * time.Second

	userAgent = "radiocast/1.0"
)

// Sink receives scraped articles. Satisfied by the news item store.
type Sink interface {
	Upsert(ctx context.Context, item model.NewsItem) (*model.NewsItem, error)
}

// Outcome aggregates a scraping run. A single page failure never fails
// the run; both counts are reported.
type Outcome struct {
	Processed int
	Failed    int
}

// Scraper drives bounded-concurrency article scraping.
type Scraper struct {
	client     *http.Client
	sink       Sink
	batchSize  int
	batchDelay time.Duration
	log        *zap.SugaredLogger
}

// Option configures a Scraper.
type Option func(*Scraper)

func WithBatchSize(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithBatchDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.batchDelay = d
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		s.client = client
	}
}

func New(sink Sink, opts ...Option) *Scraper {
	s := &Scraper{
		client:     &http.Client{Timeout: defaultRequestTimeout},
		sink:       sink,
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
		log:        zap.S().Named("scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scrapes the given article URLs in batches. Duplicate URLs are
// collapsed first. The progress callback, when set, is invoked after
// each completed batch.
func (s *Scraper) Run(ctx context.Context, urls []string, region string, progress func(done, total int)) (*Outcome, error) {
	unique := funk.UniqString(urls)
	if len(unique) == 0 {
		return &Outcome{}, nil
	}

	// Jittered pacing between batches; sources rate-limit uniform
	// request trains faster than irregular ones.
	ticker := jitterbug.New(s.batchDelay, &jitterbug.Norm{Stdev: s.batchDelay / 10})
	defer ticker.Stop()

	outcome := &Outcome{}
	for start := 0; start < len(unique); start += s.batchSize {
		end := start + s.batchSize
		if end > len(unique) {
			end = len(unique)
		}

		s.runBatch(ctx, unique[start:end], region, outcome)

		if progress != nil {
			progress(end, len(unique))
		}

		if end < len(unique) {
			select {
			case <-ctx.Done():
				return outcome, ctx.Err()
			case <-ticker.C:
			}
		}
	}

	s.log.Infow("scraping run finished", "processed", outcome.Processed, "failed", outcome.Failed)
	return outcome, nil
}

func (s *Scraper) runBatch(ctx context.Context, urls []string, region string, outcome *Outcome) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, pageURL := range urls {
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			err := s.scrapeOne(ctx, pageURL, region)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warnw("failed to scrape article", "url", pageURL, "error", err)
				outcome.Failed++
				return
			}
			outcome.Processed++
		}(pageURL)
	}
	wg.Wait()
}

func (s *Scraper) scrapeOne(ctx context.Context, pageURL, region string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("source returned status %d", resp.StatusCode)
	}

	article, err := ExtractArticle(resp.Body)
	if err != nil {
		return err
	}

	content := article.Content
	if content == "" {
		content = article.Summary
	}

	_, err = s.sink.Upsert(ctx, model.NewsItem{
		ID:       uuid.New(),
		URL:      pageURL,
		Title:    article.Title,
		Content:  content,
		Category: Categorize(article.Title, content),
		Urgency:  CalculateUrgency(article.Title, content),
		Source:   sourceName(pageURL, region),
	})
	return errors.Wrap(err, "failed to store article")
}

func sourceName(pageURL, region string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Hostname() == "" {
		return region
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
