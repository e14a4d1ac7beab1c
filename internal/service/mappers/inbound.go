package mappers

import (
	api "github.com/virafm/radiocast/api/v1alpha1"
	"github.com/virafm/radiocast/internal/timeline"
)

// NewscastConfigToParams carries the request knobs into assembly
// parameters. News items and job identity are attached by the caller.
func NewscastConfigToParams(cfg api.NewscastConfig) timeline.Params {
	return timeline.Params{
		TargetDurationMinutes: cfg.TargetDurationMinutes,
		Region:                cfg.Region,
		RadioName:             cfg.RadioName,
		Voice:                 cfg.Voice,
		MaxItems:              cfg.MaxItems,
		Humanize:              cfg.Humanize,
		IncludeAds:            cfg.IncludeAds,
		SpeedAdjustmentPct:    cfg.SpeakingRateAdjust,
	}
}
