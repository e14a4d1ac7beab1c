// Package timeline assembles the ordered script of one newscast: an
// intro, humanized news segments with interleaved advertisements, and a
// closing, each carrying a predicted spoken duration.
package timeline

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SegmentKind identifies the role of one timeline entry.
type SegmentKind string

const (
	SegmentIntro   SegmentKind = "intro"
	SegmentNews    SegmentKind = "news"
	SegmentAd      SegmentKind = "ad"
	SegmentCortina SegmentKind = "cortina"
	SegmentClosing SegmentKind = "closing"
	SegmentOutro   SegmentKind = "outro"
)

// Segment is one atomic timeline unit. Segments are immutable once
// appended; the assembler never rewrites an earlier entry.
type Segment struct {
	Id              uuid.UUID   `json:"id"`
	Kind            SegmentKind `json:"kind"`
	Title           string      `json:"title"`
	Content         string      `json:"content,omitempty"`
	OriginalContent string      `json:"originalContent,omitempty"`
	DurationSeconds float64     `json:"durationSeconds"`
	AudioUrl        string      `json:"audioUrl,omitempty"`
	VoiceId         string      `json:"voiceId,omitempty"`
	Category        string      `json:"category,omitempty"`
	Source          string      `json:"source,omitempty"`
	Urgency         string      `json:"urgency,omitempty"`
}

// Metadata describes the generation run that produced a timeline.
// SpeedAdjustmentPct is carried through to finalization so synthesis
// speaks at the same rate the duration estimates were planned with.
type Metadata struct {
	TargetDurationSeconds float64   `json:"targetDurationSeconds"`
	NewsCount             int       `json:"newsCount"`
	Region                string    `json:"region"`
	SpeedAdjustmentPct    float64   `json:"speedAdjustmentPct,omitempty"`
	GeneratedAt           time.Time `json:"generatedAt"`
}

// Timeline is the ordered script of one newscast. TotalDurationSeconds
// is the sum of segment durations; inter-segment silence gaps are
// accounted for separately by playback scheduling.
type Timeline struct {
	Segments             []Segment `json:"segments"`
	TotalDurationSeconds float64   `json:"totalDurationSeconds"`
	Metadata             Metadata  `json:"metadata"`
}

// NewsSegments returns only the news entries, in timeline order.
func (t *Timeline) NewsSegments() []Segment {
	var news []Segment
	for _, s := range t.Segments {
		if s.Kind == SegmentNews {
			news = append(news, s)
		}
	}
	return news
}

// Script joins all spoken content into one readable transcript.
func (t *Timeline) Script() string {
	var parts []string
	for _, s := range t.Segments {
		if s.Content != "" {
			parts = append(parts, s.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
