// Package extract drives per-segment media extraction with bounded retries
// and publishes job progress.
package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/lingotools/lingoclip/internal/ports"
	"github.com/lingotools/lingoclip/internal/progress"
	"github.com/lingotools/lingoclip/internal/types"
)

// ErrExtraction marks a segment whose retries were exhausted. The job halts
// at the first such segment; missing media is never silently substituted.
var ErrExtraction = errors.New("extraction failed")

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

type Config struct {
	Extractor ports.MediaExtractor
	Store     *progress.Store
	AudioDir  string
	VideoDir  string

	// MaxAttempts and BaseDelay tune the retry loop; zero values take the
	// defaults (3 attempts, 2s linear backoff).
	MaxAttempts int
	BaseDelay   time.Duration

	Logf func(format string, args ...any)
}

type Orchestrator struct {
	cfg Config
}

func New(cfg Config) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay < 0 {
		cfg.BaseDelay = 0
	} else if cfg.BaseDelay == 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}
	return &Orchestrator{cfg: cfg}
}

// Run extracts audio and video clips for every segment in ascending
// StartTime order, one external invocation in flight at a time. The
// returned segments carry artifact file paths. The progress record for
// videoID moves pending -> processing -> completed|failed; every update
// replaces the whole record so concurrent readers see consistent snapshots.
func (o *Orchestrator) Run(ctx context.Context, videoID, input string, segs []types.Segment) ([]types.Segment, error) {
	ordered := make([]types.Segment, len(segs))
	copy(ordered, segs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartTime < ordered[j].StartTime })

	rec := types.ProcessingProgress{
		VideoID:       videoID,
		Status:        types.StatusPending,
		TotalSegments: len(ordered),
		StartTime:     time.Now().UTC(),
	}
	o.publish(&rec)

	if err := o.makeDirs(); err != nil {
		return nil, o.fail(&rec, err)
	}

	rec.Status = types.StatusProcessing
	o.publish(&rec)

	for i := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(&rec, err)
		}

		rec.CurrentSegment = i + 1
		o.publish(&rec)

		seg := &ordered[i]
		base := ArtifactBase(videoID, seg.StartTime, seg.EndTime)
		audioPath := filepath.Join(o.cfg.AudioDir, base+".mp3")
		videoPath := filepath.Join(o.cfg.VideoDir, base+".mp4")

		if err := o.extractWithRetry(ctx, input, *seg, audioPath, videoPath); err != nil {
			return nil, o.fail(&rec, err)
		}
		seg.AudioArtifact = audioPath
		seg.VideoArtifact = videoPath

		rec.Progress = percent(i+1, len(ordered))
		o.publish(&rec)
		o.cfg.Logf("segment %s extracted (%d/%d)", seg.ID, i+1, len(ordered))
	}

	now := time.Now().UTC()
	rec.Status = types.StatusCompleted
	rec.Progress = 100
	rec.EndTime = &now
	o.publish(&rec)
	return ordered, nil
}

func (o *Orchestrator) extractWithRetry(ctx context.Context, input string, seg types.Segment, audioPath, videoPath string) error {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		err := o.extractOne(ctx, input, seg, audioPath, videoPath)
		if err == nil {
			return nil
		}
		lastErr = err
		o.cfg.Logf("segment %s attempt %d/%d failed: %v", seg.ID, attempt, o.cfg.MaxAttempts, err)
		if attempt < o.cfg.MaxAttempts {
			if err := sleepCtx(ctx, time.Duration(attempt)*o.cfg.BaseDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: segment %s after %d attempts: %v", ErrExtraction, seg.ID, o.cfg.MaxAttempts, lastErr)
}

func (o *Orchestrator) extractOne(ctx context.Context, input string, seg types.Segment, audioPath, videoPath string) error {
	if err := o.cfg.Extractor.ExtractAudio(ctx, input, seg.StartTime, seg.EndTime, audioPath); err != nil {
		return err
	}
	return o.cfg.Extractor.ExtractVideo(ctx, input, seg.StartTime, seg.EndTime, videoPath)
}

func (o *Orchestrator) makeDirs() error {
	for _, dir := range []string{o.cfg.AudioDir, o.cfg.VideoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating artifact directory: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) publish(rec *types.ProcessingProgress) {
	o.cfg.Store.Put(rec.VideoID, *rec)
}

func (o *Orchestrator) fail(rec *types.ProcessingProgress, err error) error {
	now := time.Now().UTC()
	rec.Status = types.StatusFailed
	rec.Error = err.Error()
	rec.EndTime = &now
	o.publish(rec)
	return err
}

// ArtifactBase is the stable artifact naming scheme shared with URL
// generation: {videoId}_{startTime}_{endTime}.
func ArtifactBase(videoID string, start, end float64) string {
	return videoID + "_" + fmtSec(start) + "_" + fmtSec(end)
}

func fmtSec(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64)
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
