// Package pipeline wires the adapters together and runs processing jobs in
// the background, one goroutine per job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lingotools/lingoclip/internal/extract"
	"github.com/lingotools/lingoclip/internal/ports"
	"github.com/lingotools/lingoclip/internal/ports/adapters/ffmpeg"
	"github.com/lingotools/lingoclip/internal/ports/adapters/libretranslate"
	"github.com/lingotools/lingoclip/internal/ports/adapters/ytdlp"
	"github.com/lingotools/lingoclip/internal/progress"
	"github.com/lingotools/lingoclip/internal/types"
	"github.com/lingotools/lingoclip/internal/usecase"
)

type Config struct {
	OutDir   string
	BaseURL  string
	CacheDir string
	Logf     func(format string, args ...any)

	SegmentDuration    float64
	IncludeTranslation bool
	SourceLang         string
	TargetLang         string

	FFmpegPath string
	YtdlpPath  string

	TranslateBaseURL string
	TranslateAPIKey  string

	// Retry tuning for extraction; zero values take the defaults.
	MaxAttempts int
	RetryDelay  time.Duration

	// JobTimeout bounds one background job; defaults to an hour.
	JobTimeout time.Duration
}

func (c Config) Validate() error {
	opts := c.segmentationOptions()
	if opts.SegmentDuration <= 0 {
		return errors.New("segment duration must be > 0")
	}
	if opts.Overlap < 0 {
		return errors.New("overlap must be >= 0")
	}
	if opts.Overlap >= opts.SegmentDuration {
		return fmt.Errorf("overlap %v must be below segment duration %v", opts.Overlap, opts.SegmentDuration)
	}
	if opts.MinSegmentDuration <= 0 {
		return errors.New("min segment duration must be > 0")
	}
	if opts.MinSegmentDuration > opts.MaxSegmentDuration {
		return errors.New("min segment duration must be <= max segment duration")
	}
	if c.MaxAttempts < 0 {
		return errors.New("max attempts must be >= 0")
	}
	return nil
}

func (c Config) segmentationOptions() types.SegmentationOptions {
	opts := types.DefaultSegmentationOptions()
	if c.SegmentDuration > 0 {
		opts.SegmentDuration = c.SegmentDuration
	}
	return opts
}

// Service owns the progress store and launches one goroutine per job.
type Service struct {
	cfg   Config
	store *progress.Store
	uc    usecase.Usecase
	logf  func(format string, args ...any)
}

// NewService validates the config, prepares directories, and wires the
// production adapters. Deps overrides individual collaborators for tests.
func NewService(cfg Config, deps ...func(*usecase.Deps)) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	if cfg.OutDir == "" {
		cfg.OutDir = "out"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = ".cache"
	}
	captionCache := filepath.Join(cfg.CacheDir, "captions")
	if err := os.MkdirAll(captionCache, 0o755); err != nil {
		return nil, fmt.Errorf("preparing cache dir: %w", err)
	}

	store := progress.NewStore()
	orch := extract.New(extract.Config{
		Extractor:   ffmpeg.New(cfg.FFmpegPath),
		Store:       store,
		AudioDir:    filepath.Join(cfg.OutDir, "processed", "audio"),
		VideoDir:    filepath.Join(cfg.OutDir, "processed", "video"),
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryDelay,
		Logf:        logf,
	})

	d := usecase.Deps{
		Provider:   ytdlp.New(cfg.YtdlpPath, captionCache),
		Translator: libretranslate.New(cfg.TranslateBaseURL, cfg.TranslateAPIKey),
		Extract:    orch,
		Logf:       logf,
	}
	for _, override := range deps {
		override(&d)
	}

	return &Service{cfg: cfg, store: store, uc: usecase.New(d), logf: logf}, nil
}

// Ack is returned immediately when a job is accepted; the pipeline itself
// runs in the background.
type Ack struct {
	VideoID   string `json:"videoId"`
	JobID     string `json:"jobId"`
	RequestID string `json:"requestId"`
}

// Start resolves the source synchronously, then launches the job. The
// caller observes completion only through Progress and Result.
func (s *Service) Start(sourceURL string) (Ack, error) {
	videoID, err := usecase.ResolveSourceID(sourceURL)
	if err != nil {
		return Ack{}, err
	}

	ack := Ack{
		VideoID:   videoID,
		JobID:     fmt.Sprintf("%s_%d", videoID, time.Now().Unix()),
		RequestID: uuid.NewString(),
	}

	timeout := s.cfg.JobTimeout
	if timeout <= 0 {
		timeout = time.Hour
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.runJob(ctx, ack, sourceURL)
	}()

	return ack, nil
}

func (s *Service) runJob(ctx context.Context, ack Ack, sourceURL string) {
	s.logf("job %s (req %s): started", ack.JobID, ack.RequestID)

	res, err := s.uc.Process(ctx, usecase.Input{
		SourceURL:          sourceURL,
		SegmentDuration:    s.cfg.SegmentDuration,
		IncludeTranslation: s.cfg.IncludeTranslation,
		SourceLang:         s.cfg.SourceLang,
		TargetLang:         s.cfg.TargetLang,
		BaseURL:            s.cfg.BaseURL,
	})
	if err != nil {
		s.logf("job %s: failed: %v", ack.JobID, err)
		s.markFailed(ack.VideoID, err)
		s.store.PutResult(ack.VideoID, types.Result{
			Success: false,
			VideoID: ack.VideoID,
			Error:   err.Error(),
		})
		return
	}

	s.store.PutResult(ack.VideoID, res)
	s.logf("job %s: completed with %d segments", ack.JobID, len(res.Segments))
}

// markFailed covers failures that happen before the orchestrator registers
// a progress record (source resolution inside the job, metadata fetch).
// A record the orchestrator already moved to a terminal state stays as is.
func (s *Service) markFailed(videoID string, err error) {
	rec, ok := s.store.Get(videoID)
	if ok && rec.Status.Terminal() {
		return
	}
	if !ok {
		rec = types.ProcessingProgress{VideoID: videoID, StartTime: time.Now().UTC()}
	}
	now := time.Now().UTC()
	rec.Status = types.StatusFailed
	rec.Error = err.Error()
	rec.EndTime = &now
	s.store.Put(videoID, rec)
}

// Progress returns the latest progress snapshot for a video id.
func (s *Service) Progress(videoID string) (types.ProcessingProgress, bool) {
	return s.store.Get(videoID)
}

// Result returns the persisted outcome for a video id once the job ends.
func (s *Service) Result(videoID string) (types.Result, bool) {
	return s.store.Result(videoID)
}

// ensure adapters satisfy the ports they are wired into
var _ ports.MediaExtractor = (*ffmpeg.Adapter)(nil)
var _ ports.CaptionProvider = (*ytdlp.Adapter)(nil)
var _ ports.Translator = (*libretranslate.Adapter)(nil)
