package duration

// VoiceProfile carries the calibrated speaking speed of one TTS voice.
type VoiceProfile struct {
	Name           string  `yaml:"name"`
	WordsPerMinute float64 `yaml:"wpm"`
}

// Fixed segment durations in seconds, measured against produced audio.
const (
	IntroSeconds      = 12.0
	OutroSeconds      = 8.0
	AdSeconds         = 25.0
	CortinaSeconds    = 5.0
	SilenceGapSeconds = 1.5
)

const (
	// WordsPerNews is the average word count of a humanized news segment.
	WordsPerNews = 100

	// DefaultWPM applies when a voice has no calibration entry.
	DefaultWPM = 175.0

	// CorrectionFactor is the global speed correction. The calibrated
	// per-voice WPM values already match measured audio, so no extra
	// correction is applied.
	CorrectionFactor = 1.0

	// BufferPercentage is the tolerance applied to duration targets.
	BufferPercentage = 0.05
)

// Pause weights in seconds, matching the break times the SSML builder
// emits for each punctuation class.
const (
	sentencePauseSeconds    = 0.6
	exclamationPauseSeconds = 0.7
	commaPauseSeconds       = 0.25
)

// safetyMargin stretches every estimate by 3% to absorb synthesis
// variations.
const safetyMargin = 1.03
