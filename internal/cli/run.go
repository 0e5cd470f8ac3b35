package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lingotools/lingoclip/internal/pipeline"
	"github.com/lingotools/lingoclip/internal/types"
	"github.com/spf13/cobra"
)

func run(cmd *cobra.Command, url string) error {
	outDir, _ := cmd.Flags().GetString("out")
	duration, _ := cmd.Flags().GetFloat64("duration")
	translate, _ := cmd.Flags().GetBool("translate")
	sourceLang, _ := cmd.Flags().GetString("source-lang")
	targetLang, _ := cmd.Flags().GetString("target-lang")
	attempts, _ := cmd.Flags().GetInt("attempts")

	logf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}

	cfg := pipeline.Config{
		OutDir:   outDir,
		BaseURL:  getenvDefault("LINGOCLIP_BASE_URL", ""),
		CacheDir: getenvDefault("LINGOCLIP_CACHE_DIR", ".cache"),
		Logf:     logf,

		SegmentDuration:    duration,
		IncludeTranslation: translate,
		SourceLang:         sourceLang,
		TargetLang:         targetLang,

		FFmpegPath: getenvDefault("FFMPEG_PATH", "ffmpeg"),
		YtdlpPath:  getenvDefault("YTDLP_PATH", "yt-dlp"),

		TranslateBaseURL: os.Getenv("TRANSLATE_BASE_URL"),
		TranslateAPIKey:  os.Getenv("TRANSLATE_API_KEY"),

		MaxAttempts: attempts,
	}

	svc, err := pipeline.NewService(cfg)
	if err != nil {
		return err
	}

	ack, err := svc.Start(url)
	if err != nil {
		return err
	}
	logf("job %s accepted", ack.JobID)

	res, err := poll(svc, ack.VideoID, logf)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("processing failed: %s", res.Error)
	}

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

// poll watches the progress store until the job persists its result,
// echoing segment-level progress as it advances.
func poll(svc *pipeline.Service, videoID string, logf func(string, ...any)) (types.Result, error) {
	deadline := time.After(2 * time.Hour)
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	lastProgress := -1
	for {
		select {
		case <-deadline:
			return types.Result{}, errors.New("timed out waiting for job")
		case <-tick.C:
		}

		if p, ok := svc.Progress(videoID); ok && p.Progress != lastProgress {
			lastProgress = p.Progress
			logf("%s: %s %d%% (segment %d/%d)", videoID, p.Status, p.Progress, p.CurrentSegment, p.TotalSegments)
		}
		if res, ok := svc.Result(videoID); ok {
			return res, nil
		}
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
