// Package duration predicts how long synthesized speech will run for a
// given script. Estimates are for pre-generation planning only; the
// synthesizer's measured duration supersedes them once audio exists.
package duration

import (
	"math"
	"strings"
)

// Estimate predicts the spoken duration of text in seconds.
//
// The base is the word count divided by the voice's effective speed,
// refined by a punctuation-aware pause model matching the breaks the
// SSML builder inserts: 0.6s per sentence terminator, 0.7s per question
// or exclamation mark, 0.25s per comma. The total carries a 3% safety
// margin. Empty text estimates to zero.
func Estimate(text string, profile VoiceProfile, speedAdjustmentPercent, correctionFactor float64) float64 {
	words := countWords(text)
	if words == 0 {
		return 0
	}

	effectiveWpm := profile.WordsPerMinute * (1 + speedAdjustmentPercent/100) * correctionFactor
	if effectiveWpm <= 0 {
		return 0
	}

	base := float64(words) / effectiveWpm * 60

	var pauses float64
	for _, r := range text {
		switch r {
		case '.':
			pauses += sentencePauseSeconds
		case '?', '!':
			pauses += exclamationPauseSeconds
		case ',':
			pauses += commaPauseSeconds
		}
	}

	return (base + pauses) * safetyMargin
}

// EstimateDefault estimates with the global correction factor and no
// speed adjustment.
func EstimateDefault(text string, voice string) float64 {
	return Estimate(text, Profile(voice), 0, CorrectionFactor)
}

// MaxItemsForDuration computes how many news items fit into a target
// duration once the fixed overhead (intro, outro, ads) is subtracted.
// Each item costs its average duration plus one inter-item gap; the
// final gap is credited back. The result rounds to the nearest whole
// item, so an overrun of up to half an item-plus-gap slot still counts
// as a fit.
func MaxItemsForDuration(targetMinutes int, fixedOverheadSeconds, perItemAverageSeconds, interItemGapSeconds float64) int {
	if perItemAverageSeconds+interItemGapSeconds <= 0 {
		return 0
	}

	available := float64(targetMinutes)*60 - fixedOverheadSeconds + interItemGapSeconds
	if available <= 0 {
		return 0
	}

	return int(math.Round(available / (perItemAverageSeconds + interItemGapSeconds)))
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
