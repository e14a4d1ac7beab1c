// Package audio merges synthesized newscast segments into one
// continuous uncompressed asset.
package audio

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoValidAudio signals that no segment survived validation and
// decoding, so there is nothing to merge.
var ErrNoValidAudio = errors.New("no valid audio segments to concatenate")

// SegmentDescriptor addresses one synthesized segment.
type SegmentDescriptor struct {
	URL                     string
	Title                   string
	ExpectedDurationSeconds float64
}

// Result is the merged asset plus the degradation the caller needs to
// judge it by.
type Result struct {
	WAV             []byte
	DurationSeconds float64
	SegmentCount    int
	SkippedCount    int
}

// Concatenator merges segments in input order.
type Concatenator struct {
	fetcher Fetcher
}

func NewConcatenator(fetcher Fetcher) *Concatenator {
	return &Concatenator{fetcher: fetcher}
}

// Concatenate downloads, decodes and merges the given segments.
//
// Segments with unfetchable addresses, failed downloads or undecodable
// payloads are skipped with a warning; the job only fails when nothing
// survives. The output carries the channel count of the widest input
// and the sample rate of the first surviving input; inputs narrower
// than the target replicate their last channel.
func (c *Concatenator) Concatenate(ctx context.Context, segments []SegmentDescriptor) (*Result, error) {
	logger := zap.S().Named("audio_concat")

	skipped := 0
	buffers := make([]*Buffer, 0, len(segments))

	for i, seg := range segments {
		if !ValidURL(seg.URL) {
			logger.Warnf("skipping segment %d (%s): unsupported address", i, seg.Title)
			skipped++
			continue
		}

		data, err := c.fetcher.Fetch(ctx, seg.URL)
		if err != nil {
			logger.Warnf("skipping segment %d (%s): %v", i, seg.Title, err)
			skipped++
			continue
		}

		buf, err := DecodeWAV(data)
		if err != nil {
			logger.Warnf("skipping segment %d (%s): %v", i, seg.Title, err)
			skipped++
			continue
		}

		buffers = append(buffers, buf)
	}

	if len(buffers) == 0 {
		return nil, ErrNoValidAudio
	}

	merged := mergeBuffers(buffers)

	return &Result{
		WAV:             EncodeWAV(merged),
		DurationSeconds: merged.DurationSeconds(),
		SegmentCount:    len(buffers),
		SkippedCount:    skipped,
	}, nil
}

// mergeBuffers lays the inputs end to end. The first input dictates the
// sample rate; inputs at other rates are stitched in untouched, which
// shifts their pitch and duration.
func mergeBuffers(buffers []*Buffer) *Buffer {
	targetChannels := 0
	totalSamples := 0
	for _, b := range buffers {
		if b.NumChannels() > targetChannels {
			targetChannels = b.NumChannels()
		}
		totalSamples += b.NumSamples()
	}

	sampleRate := buffers[0].SampleRate
	for _, b := range buffers[1:] {
		if b.SampleRate != sampleRate {
			zap.S().Named("audio_concat").Warnf("sample rate mismatch: %d vs %d, output keeps %d",
				b.SampleRate, sampleRate, sampleRate)
		}
	}

	out := &Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]int16, targetChannels),
	}
	for ch := range out.Channels {
		out.Channels[ch] = make([]int16, totalSamples)
	}

	offset := 0
	for _, b := range buffers {
		for ch := 0; ch < targetChannels; ch++ {
			src := ch
			if src >= b.NumChannels() {
				src = b.NumChannels() - 1
			}
			copy(out.Channels[ch][offset:], b.Channels[src])
		}
		offset += b.NumSamples()
	}

	return out
}
