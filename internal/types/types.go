package types

import "time"

// CaptionEntry is a single timed line of transcript text. Entries are not
// guaranteed sorted by the source; the segmenter sorts before windowing.
type CaptionEntry struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is a bounded time window of the source media paired with the
// transcript text spoken during it. Artifact fields stay empty until
// extraction completes.
type Segment struct {
	ID            string  `json:"id"`
	StartTime     float64 `json:"startTime"`
	EndTime       float64 `json:"endTime"`
	Text          string  `json:"text"`
	Translation   string  `json:"translation,omitempty"`
	AudioArtifact string  `json:"audioArtifact,omitempty"`
	VideoArtifact string  `json:"videoArtifact,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.EndTime - s.StartTime }

// SegmentationOptions tunes the windowing algorithm. Read-only during a run.
// Overlap must stay below SegmentDuration; pipeline.Config validates this
// before any windowing happens.
type SegmentationOptions struct {
	SegmentDuration          float64
	Overlap                  float64
	MinSegmentDuration       float64
	MaxSegmentDuration       float64
	PreferSentenceBoundaries bool
	MaxWordsPerSegment       int
}

// DefaultSegmentationOptions returns the standard practice-clip tuning.
func DefaultSegmentationOptions() SegmentationOptions {
	return SegmentationOptions{
		SegmentDuration:          8,
		Overlap:                  1,
		MinSegmentDuration:       3,
		MaxSegmentDuration:       15,
		PreferSentenceBoundaries: true,
		MaxWordsPerSegment:       20,
	}
}

// Status is the lifecycle state of one processing job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProcessingProgress is the per-video record published by the extraction
// orchestrator. Writers replace the whole record on every update so readers
// always observe a consistent snapshot.
type ProcessingProgress struct {
	VideoID        string     `json:"videoId"`
	Status         Status     `json:"status"`
	Progress       int        `json:"progress"`
	CurrentSegment int        `json:"currentSegment,omitempty"`
	TotalSegments  int        `json:"totalSegments,omitempty"`
	Error          string     `json:"error,omitempty"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
}

// VideoMetadata is what the caption provider reports about a source video.
type VideoMetadata struct {
	Title        string  `json:"title"`
	Duration     float64 `json:"duration"`
	ThumbnailURL string  `json:"thumbnail"`
}

// Result is the persisted outcome of one processVideo job.
type Result struct {
	Success        bool      `json:"success"`
	VideoID        string    `json:"videoId"`
	Title          string    `json:"title,omitempty"`
	Duration       float64   `json:"duration,omitempty"`
	Thumbnail      string    `json:"thumbnail,omitempty"`
	Segments       []Segment `json:"segments,omitempty"`
	CaptionsConcat string    `json:"captions,omitempty"`
	Error          string    `json:"error,omitempty"`
}
