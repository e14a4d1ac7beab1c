package audio

import (
	"context"
	"encoding/base64"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned payloads keyed by URL.
type fakeFetcher struct {
	payloads map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if data, ok := f.payloads[url]; ok {
		return data, nil
	}
	return nil, errors.New("not found")
}

// toneBuffer builds a mono test buffer of the given duration.
func toneBuffer(sampleRate int, seconds float64) *Buffer {
	n := int(seconds * float64(sampleRate))
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(1000 * math.Sin(float64(i)/50))
	}
	return &Buffer{SampleRate: sampleRate, Channels: [][]int16{samples}}
}

func TestValidURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url   string
		valid bool
	}{
		{"data:audio/wav;base64,AAAA", true},
		{"http://cdn.example.com/a.wav", true},
		{"https://cdn.example.com/a.wav", true},
		{"/api/audio/proxy?id=1", true},
		{"/tmp/audio/a.wav", false},
		{"C:\\audio\\a.wav", false},
		{"file:///tmp/a.wav", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidURL(tt.url), "url %q", tt.url)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	original := toneBuffer(22050, 0.5)

	decoded, err := DecodeWAV(EncodeWAV(original))

	require.NoError(t, err)
	assert.Equal(t, original.SampleRate, decoded.SampleRate)
	require.Equal(t, original.NumChannels(), decoded.NumChannels())
	assert.Equal(t, original.Channels[0], decoded.Channels[0])
}

func TestDecodeWAV_Malformed(t *testing.T) {
	t.Parallel()
	_, err := DecodeWAV([]byte("definitely not audio"))
	require.Error(t, err)

	_, err = DecodeWAV(nil)
	require.Error(t, err)
}

func TestConcatenate_SkipsInvalidPathAndKeepsDuration(t *testing.T) {
	t.Parallel()
	a := toneBuffer(22050, 12.0)
	b := toneBuffer(22050, 30.5)

	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn.example.com/a.wav": EncodeWAV(a),
		"https://cdn.example.com/b.wav": EncodeWAV(b),
	}}

	result, err := NewConcatenator(fetcher).Concatenate(context.Background(), []SegmentDescriptor{
		{URL: "https://cdn.example.com/a.wav", Title: "A", ExpectedDurationSeconds: 12.0},
		{URL: "/tmp/local/audio.wav", Title: "local"},
		{URL: "https://cdn.example.com/b.wav", Title: "B", ExpectedDurationSeconds: 30.5},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 2, result.SegmentCount)
	assert.InDelta(t, 42.5, result.DurationSeconds, 1.0/22050)

	decoded, err := DecodeWAV(result.WAV)
	require.NoError(t, err)
	assert.Equal(t, a.NumSamples()+b.NumSamples(), decoded.NumSamples())
}

func TestConcatenate_SkipsFailedDownload(t *testing.T) {
	t.Parallel()
	a := toneBuffer(22050, 1.0)
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn.example.com/a.wav": EncodeWAV(a),
	}}

	result, err := NewConcatenator(fetcher).Concatenate(context.Background(), []SegmentDescriptor{
		{URL: "https://cdn.example.com/a.wav"},
		{URL: "https://cdn.example.com/missing.wav"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 1, result.SegmentCount)
}

func TestConcatenate_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := NewConcatenator(&fakeFetcher{}).Concatenate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoValidAudio)
}

func TestConcatenate_InvalidOnly(t *testing.T) {
	t.Parallel()
	_, err := NewConcatenator(&fakeFetcher{}).Concatenate(context.Background(), []SegmentDescriptor{
		{URL: "/var/tmp/one.wav"},
		{URL: "./relative/two.wav"},
	})
	assert.ErrorIs(t, err, ErrNoValidAudio)
}

func TestConcatenate_ChannelUpmix(t *testing.T) {
	t.Parallel()
	mono := toneBuffer(22050, 0.25)
	stereo := &Buffer{
		SampleRate: 22050,
		Channels: [][]int16{
			make([]int16, 100),
			make([]int16, 100),
		},
	}

	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn.example.com/mono.wav":   EncodeWAV(mono),
		"https://cdn.example.com/stereo.wav": EncodeWAV(stereo),
	}}

	result, err := NewConcatenator(fetcher).Concatenate(context.Background(), []SegmentDescriptor{
		{URL: "https://cdn.example.com/mono.wav"},
		{URL: "https://cdn.example.com/stereo.wav"},
	})

	require.NoError(t, err)
	decoded, err := DecodeWAV(result.WAV)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.NumChannels())
	// the mono section replicates its only channel on both outputs
	assert.Equal(t, decoded.Channels[0][:mono.NumSamples()], decoded.Channels[1][:mono.NumSamples()])
}

func TestFetch_DataURI(t *testing.T) {
	t.Parallel()
	buf := toneBuffer(8000, 0.01)
	wav := EncodeWAV(buf)

	uri := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav)
	fetched, err := NewHTTPFetcher("").Fetch(context.Background(), uri)

	require.NoError(t, err)
	assert.Equal(t, wav, fetched)
}
