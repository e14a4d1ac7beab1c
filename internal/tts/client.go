// Package tts synthesizes newscast scripts through a Google Cloud style
// text-to-speech HTTP API.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// CostPerMillionChars is the Neural2 voice price in USD.
	CostPerMillionChars = 16.0

	// mp3BytesPerSecond converts MP3 payload size to playback time.
	// Calibrated against produced audio at 24kHz.
	mp3BytesPerSecond = 8000

	// baseSpeakingRate is slightly slower than the synthesizer default,
	// which reads better for news delivery.
	baseSpeakingRate = 0.9

	minSpeakingRate = 0.25
	maxSpeakingRate = 4.0

	sampleRateHertz = 24000

	// linear16BytesPerSecond is 16-bit mono PCM at sampleRateHertz.
	linear16BytesPerSecond = sampleRateHertz * 2

	wavHeaderBytes = 44

	defaultRequestTimeout = 2 * time.Minute
)

// Supported output encodings. LINEAR16 comes back as a WAV payload and
// allows lossless concatenation downstream.
const (
	EncodingMP3      = "MP3"
	EncodingLinear16 = "LINEAR16"
)

type voiceConfig struct {
	ID     string
	Gender string
}

// voiceCatalog maps the supported production voices.
var voiceCatalog = map[string]voiceConfig{
	"es-US-Neural2-A": {ID: "es-US-Neural2-A", Gender: "FEMALE"},
	"es-US-Neural2-B": {ID: "es-US-Neural2-B", Gender: "MALE"},
	"es-US-Neural2-C": {ID: "es-US-Neural2-C", Gender: "MALE"},
}

const fallbackVoice = "es-US-Neural2-B"

// DefaultVoice is used when a request does not pin a voice.
const DefaultVoice = fallbackVoice

// Voice is one selectable production voice.
type Voice struct {
	ID     string
	Gender string
}

// Voices lists the supported production voices in stable order.
func Voices() []Voice {
	ids := make([]string, 0, len(voiceCatalog))
	for id := range voiceCatalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Voice, 0, len(ids))
	for _, id := range ids {
		out = append(out, Voice{ID: id, Gender: voiceCatalog[id].Gender})
	}
	return out
}

// Request describes one synthesis call.
type Request struct {
	Text            string
	VoiceID         string
	SpeedAdjustment float64
	PitchAdjustment *float64
	Highlighted     bool

	// Encoding selects the output container. Empty means EncodingMP3.
	Encoding string
}

// Result is the synthesized audio plus duration and billing data. The
// measured duration supersedes any estimator prediction.
type Result struct {
	Audio           []byte
	DurationSeconds float64
	Cost            float64
}

// Client converts text into audio.
type Client interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
}

// GoogleClient calls the Google Cloud text:synthesize endpoint.
type GoogleClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// Make sure we conform to Client interface
var _ Client = (*GoogleClient)(nil)

func NewGoogleClient(endpoint, apiKey string) *GoogleClient {
	return &GoogleClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

type synthesizeRequest struct {
	Input struct {
		SSML string `json:"ssml"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SSMLGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding    string   `json:"audioEncoding"`
		SampleRateHertz  int      `json:"sampleRateHertz"`
		SpeakingRate     float64  `json:"speakingRate"`
		Pitch            float64  `json:"pitch"`
		EffectsProfileID []string `json:"effectsProfileId"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

func (c *GoogleClient) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("empty text")
	}

	voice, ok := voiceCatalog[req.VoiceID]
	if !ok {
		voice = voiceCatalog[fallbackVoice]
	}

	// male voices drop to -2.0 for authority, female to -1.0 to keep
	// warmth without shrillness
	pitch := -2.0
	if voice.Gender == "FEMALE" {
		pitch = -1.0
	}
	if req.PitchAdjustment != nil {
		pitch = *req.PitchAdjustment
	}

	encoding := req.Encoding
	if encoding == "" {
		encoding = EncodingMP3
	}

	payload := synthesizeRequest{}
	payload.Input.SSML = TextToSSML(req.Text, req.Highlighted)
	payload.Voice.LanguageCode = "es-US"
	payload.Voice.Name = voice.ID
	payload.Voice.SSMLGender = voice.Gender
	payload.AudioConfig.AudioEncoding = encoding
	payload.AudioConfig.SampleRateHertz = sampleRateHertz
	payload.AudioConfig.SpeakingRate = SpeakingRate(req.SpeedAdjustment)
	payload.AudioConfig.Pitch = pitch
	payload.AudioConfig.EffectsProfileID = []string{"medium-bluetooth-speaker-class-device"}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal synthesize request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create synthesize request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "synthesize request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("synthesizer returned status %d", resp.StatusCode)
	}

	var decoded synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "failed to decode synthesize response")
	}

	if decoded.AudioContent == "" {
		return nil, errors.New("synthesizer returned no audio content")
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode audio content")
	}

	duration := float64(len(audio)) / mp3BytesPerSecond
	if encoding == EncodingLinear16 {
		payloadBytes := len(audio) - wavHeaderBytes
		if payloadBytes < 0 {
			payloadBytes = 0
		}
		duration = float64(payloadBytes) / linear16BytesPerSecond
	}
	zap.S().Named("tts").Debugf("synthesized %d bytes, ~%.1fs, voice %s", len(audio), duration, voice.ID)

	return &Result{
		Audio:           audio,
		DurationSeconds: duration,
		Cost:            SynthesisCost(len(req.Text)),
	}, nil
}

// SpeakingRate converts a user speed adjustment in percent into the
// synthesizer's rate parameter, clamped to its accepted range.
func SpeakingRate(userAdjustPercent float64) float64 {
	rate := baseSpeakingRate + userAdjustPercent/100
	if rate < minSpeakingRate {
		return minSpeakingRate
	}
	if rate > maxSpeakingRate {
		return maxSpeakingRate
	}
	return rate
}

// SynthesisCost converts a character count into USD.
func SynthesisCost(chars int) float64 {
	return float64(chars) / 1_000_000 * CostPerMillionChars
}
