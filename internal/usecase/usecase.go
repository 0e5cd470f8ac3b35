package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lingotools/lingoclip/internal/domain/captions"
	"github.com/lingotools/lingoclip/internal/domain/quality"
	"github.com/lingotools/lingoclip/internal/domain/segmenter"
	"github.com/lingotools/lingoclip/internal/extract"
	"github.com/lingotools/lingoclip/internal/ports"
	"github.com/lingotools/lingoclip/internal/types"
)

// ErrInvalidSource means the request URL cannot be resolved to a video id.
var ErrInvalidSource = errors.New("invalid source")

// ErrMetadataFetch wraps provider failures; they abort the whole request.
var ErrMetadataFetch = errors.New("metadata fetch failed")

// TranslationFailedMarker replaces a translation whose provider call
// failed. Distinct from the placeholder for never-requested translations.
const TranslationFailedMarker = "[translation failed]"

// Extractor is the orchestration surface the usecase drives per job.
type Extractor interface {
	Run(ctx context.Context, videoID, input string, segs []types.Segment) ([]types.Segment, error)
}

type Deps struct {
	Provider   ports.CaptionProvider
	Translator ports.Translator
	Extract    Extractor
	Logf       func(format string, args ...any)
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logf == nil {
		d.Logf = func(string, ...any) {}
	}
	return Usecase{d: d}
}

type Input struct {
	SourceURL          string
	SegmentDuration    float64
	IncludeTranslation bool
	SourceLang         string
	TargetLang         string

	// BaseURL prefixes generated artifact URLs; empty keeps local paths.
	BaseURL string
}

// Process runs the whole pipeline for one video: resolve, fetch, parse,
// window, repair, translate, extract. Translation failures degrade to a
// marker per segment; everything else unrecoverable aborts the request.
func (u Usecase) Process(ctx context.Context, in Input) (types.Result, error) {
	videoID, err := ResolveSourceID(in.SourceURL)
	if err != nil {
		return types.Result{}, err
	}

	meta, err := u.d.Provider.Metadata(ctx, videoID)
	if err != nil {
		return types.Result{}, fmt.Errorf("%w: %v", ErrMetadataFetch, err)
	}

	raw, err := u.d.Provider.RawCaptions(ctx, videoID, in.SourceLang)
	if err != nil {
		return types.Result{}, fmt.Errorf("%w: captions: %v", ErrMetadataFetch, err)
	}

	entries := captions.Parse(raw)
	u.d.Logf("parsed %d caption entries", len(entries))

	opts := types.DefaultSegmentationOptions()
	if in.SegmentDuration > 0 {
		opts.SegmentDuration = in.SegmentDuration
	}
	segs := quality.MergeAdjacent(segmenter.Build(entries, opts))
	u.d.Logf("built %d segments", len(segs))

	if in.IncludeTranslation {
		u.translateAll(ctx, segs, in.SourceLang, in.TargetLang)
	}

	accepted := segs[:0]
	for _, seg := range segs {
		seg = quality.Optimize(seg)
		if quality.Validate(seg) {
			accepted = append(accepted, seg)
		}
	}
	segs = accepted

	input, err := u.d.Provider.StreamURL(ctx, videoID)
	if err != nil {
		return types.Result{}, fmt.Errorf("%w: stream: %v", ErrMetadataFetch, err)
	}

	extracted, err := u.d.Extract.Run(ctx, videoID, input, segs)
	if err != nil {
		return types.Result{}, err
	}

	if in.BaseURL != "" {
		attachArtifactURLs(extracted, in.BaseURL, videoID)
	}

	return types.Result{
		Success:        true,
		VideoID:        videoID,
		Title:          meta.Title,
		Duration:       meta.Duration,
		Thumbnail:      meta.ThumbnailURL,
		Segments:       extracted,
		CaptionsConcat: concatCaptions(entries),
	}, nil
}

func (u Usecase) translateAll(ctx context.Context, segs []types.Segment, sourceLang, targetLang string) {
	for i := range segs {
		tr, err := u.d.Translator.Translate(ctx, segs[i].Text, sourceLang, targetLang)
		if err != nil {
			u.d.Logf("translation failed for segment %s: %v", segs[i].ID, err)
			segs[i].Translation = TranslationFailedMarker
			continue
		}
		segs[i].Translation = tr
	}
}

func attachArtifactURLs(segs []types.Segment, baseURL, videoID string) {
	baseURL = strings.TrimRight(baseURL, "/")
	for i := range segs {
		name := extract.ArtifactBase(videoID, segs[i].StartTime, segs[i].EndTime)
		segs[i].AudioArtifact = baseURL + "/processed/audio/" + name + ".mp3"
		segs[i].VideoArtifact = baseURL + "/processed/video/" + name + ".mp4"
	}
}

func concatCaptions(entries []types.CaptionEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Text)
	}
	return strings.Join(parts, " ")
}

var (
	reWatchURL = regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`)
	reShortURL = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`)
	reEmbedURL = regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`)
	reBareID   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ResolveSourceID extracts a video id from a watch/short/embed URL or
// accepts a bare 11-character id.
func ResolveSourceID(sourceURL string) (string, error) {
	s := strings.TrimSpace(sourceURL)
	for _, re := range []*regexp.Regexp{reWatchURL, reShortURL, reEmbedURL} {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], nil
		}
	}
	if reBareID.MatchString(s) {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, sourceURL)
}
