package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/duration"
	"github.com/virafm/radiocast/internal/service/mappers"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/tts"
)

// NewsFilter narrows news listings.
type NewsFilter struct {
	Categories []string
	Urgency    string
	Limit      int
}

// NewscastService reads finished newscasts and the news inventory
// behind them.
type NewscastService struct {
	store store.Store
}

func NewNewscastService(store store.Store) *NewscastService {
	return &NewscastService{store: store}
}

func (s *NewscastService) GetNewscast(ctx context.Context, id uuid.UUID) (*api.Newscast, error) {
	newscast, err := s.store.Newscast().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNewscastNotFound(id)
		}
		return nil, err
	}

	mapped := mappers.NewscastToApi(*newscast)
	return &mapped, nil
}

func (s *NewscastService) ListNewscasts(ctx context.Context) ([]api.Newscast, error) {
	newscasts, err := s.store.Newscast().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]api.Newscast, 0, len(newscasts))
	for _, n := range newscasts {
		out = append(out, mappers.NewscastToApi(n))
	}
	return out, nil
}

func (s *NewscastService) ListNews(ctx context.Context, filter *NewsFilter) ([]api.NewsItem, error) {
	storeFilter := store.NewNewsItemQueryFilter()
	opts := store.NewNewsItemQueryOptions().WithSortOrder(store.SortByUrgency)
	if filter != nil {
		if len(filter.Categories) > 0 {
			storeFilter = storeFilter.ByCategories(filter.Categories)
		}
		if filter.Urgency != "" {
			storeFilter = storeFilter.ByUrgency(filter.Urgency)
		}
		if filter.Limit > 0 {
			opts = opts.WithLimit(filter.Limit)
		}
	}

	items, err := s.store.NewsItem().List(ctx, storeFilter, opts)
	if err != nil {
		return nil, err
	}

	return mappers.NewsItemListToApi(items), nil
}

// ListVoices exposes the synthesis voice catalog together with the
// calibrated speaking speed the duration estimator uses for each one.
func (s *NewscastService) ListVoices(_ context.Context) api.VoiceList {
	voices := tts.Voices()
	out := make(api.VoiceList, 0, len(voices))
	for _, v := range voices {
		out = append(out, api.Voice{
			Id:             v.ID,
			Gender:         v.Gender,
			WordsPerMinute: duration.Profile(v.ID).WordsPerMinute,
		})
	}
	return out
}
