package ports

import (
	"context"

	"github.com/lingotools/lingoclip/internal/types"
)

// CaptionProvider fetches metadata and raw caption payloads for a resolved
// source id. Failure of either call is fatal to the pipeline request.
type CaptionProvider interface {
	Metadata(ctx context.Context, sourceID string) (types.VideoMetadata, error)
	RawCaptions(ctx context.Context, sourceID, languageHint string) (string, error)
	// StreamURL resolves a direct media locator the extraction tool can read.
	StreamURL(ctx context.Context, sourceID string) (string, error)
}

// Translator produces a target-language rendering of one segment's text.
// Failures are recovered per call by the caller, never propagated.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// MediaExtractor cuts one clip bounded by [start, end) seconds out of the
// input media, writing it to outPath. Any non-success is retryable.
type MediaExtractor interface {
	ExtractAudio(ctx context.Context, input string, start, end float64, outPath string) error
	ExtractVideo(ctx context.Context, input string, start, end float64, outPath string) error
}
