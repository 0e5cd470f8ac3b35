// Package ytdlp wraps the yt-dlp binary as the metadata/caption provider.
package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lingotools/lingoclip/internal/types"
)

type Adapter struct {
	bin      string
	cacheDir string
}

func New(binPath, cacheDir string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, cacheDir: cacheDir}
}

type dumpJSON struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

func (a *Adapter) Metadata(ctx context.Context, sourceID string) (types.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, a.bin,
		"--dump-json",
		"--skip-download",
		watchURL(sourceID),
	)
	b, err := cmd.Output()
	if err != nil {
		return types.VideoMetadata{}, fmt.Errorf("yt-dlp metadata: %w", err)
	}
	var d dumpJSON
	if err := json.Unmarshal(b, &d); err != nil {
		return types.VideoMetadata{}, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return types.VideoMetadata{
		Title:        d.Title,
		Duration:     d.Duration,
		ThumbnailURL: d.Thumbnail,
	}, nil
}

// RawCaptions downloads manual subtitles when present, falling back to
// auto-generated ones, and returns the raw payload for the parser to sniff.
func (a *Adapter) RawCaptions(ctx context.Context, sourceID, languageHint string) (string, error) {
	if languageHint == "" {
		languageHint = "en"
	}
	outPrefix := filepath.Join(a.cacheDir, sourceID)
	cmd := exec.CommandContext(ctx, a.bin,
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", languageHint,
		"--sub-format", "vtt/srt/best",
		"-o", outPrefix,
		watchURL(sourceID),
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp captions: %w\n%s", err, string(b))
	}

	matches, err := filepath.Glob(outPrefix + ".*")
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		switch filepath.Ext(m) {
		case ".vtt", ".srt", ".srv3", ".xml":
			payload, err := os.ReadFile(m)
			if err != nil {
				return "", err
			}
			return string(payload), nil
		}
	}
	return "", fmt.Errorf("no caption track for %s (lang %s)", sourceID, languageHint)
}

func (a *Adapter) StreamURL(ctx context.Context, sourceID string) (string, error) {
	cmd := exec.CommandContext(ctx, a.bin,
		"-f", "best[ext=mp4]/best",
		"-g",
		watchURL(sourceID),
	)
	b, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp stream url: %w", err)
	}
	u := strings.TrimSpace(string(b))
	if u == "" {
		return "", fmt.Errorf("yt-dlp returned no stream url for %s", sourceID)
	}
	return u, nil
}

func watchURL(sourceID string) string {
	return "https://www.youtube.com/watch?v=" + sourceID
}
