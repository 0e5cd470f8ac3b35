// Package segmenter turns timed caption entries into bounded, possibly
// overlapping practice segments.
package segmenter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lingotools/lingoclip/internal/domain/captions"
	"github.com/lingotools/lingoclip/internal/types"
)

// Build slides a clock over the sorted entries and emits one segment per
// window that collects enough speech. Windows advance by
// SegmentDuration-Overlap, so a positive overlap re-examines the tail of
// the previous window. Overlap >= SegmentDuration is a caller-side
// precondition; Build does not validate it.
func Build(entries []types.CaptionEntry, opts types.SegmentationOptions) []types.Segment {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]types.CaptionEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	tMax := 0.0
	for _, e := range sorted {
		if e.End > tMax {
			tMax = e.End
		}
	}

	var out []types.Segment
	for t := 0.0; t < tMax; {
		w := t + opts.SegmentDuration
		if w > tMax {
			w = tMax
		}

		window := overlapping(sorted, t, w)
		if len(window) == 0 {
			// dead air: skip a full window without emitting
			t += opts.SegmentDuration
			continue
		}

		text := joinTexts(window)
		if opts.PreferSentenceBoundaries && wordCount(text) > opts.MaxWordsPerSegment {
			if trimmed := trimToSentences(text, opts.MaxWordsPerSegment); trimmed != "" {
				text = trimmed
			}
		}

		start := t
		if first := window[0].Start; first > start {
			start = first
		}
		end := w
		if last := window[len(window)-1].End; last < end {
			end = last
		}

		if end-start >= opts.MinSegmentDuration {
			out = append(out, types.Segment{
				ID:        strconv.Itoa(len(out) + 1),
				StartTime: start,
				EndTime:   end,
				Text:      text,
			})
		}

		t += opts.SegmentDuration - opts.Overlap
	}
	return out
}

// overlapping selects entries intersecting [t, w). Entries are already
// sorted by start, so the selection stays in time order.
func overlapping(entries []types.CaptionEntry, t, w float64) []types.CaptionEntry {
	var out []types.CaptionEntry
	for _, e := range entries {
		if e.Start < w && e.End > t {
			out = append(out, e)
		}
	}
	return out
}

func joinTexts(entries []types.CaptionEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if s := strings.TrimSpace(e.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return captions.Clean(strings.Join(parts, " "))
}

// trimToSentences greedily keeps whole leading sentences while the running
// word count stays within limit. Returns "" when not even the first
// sentence fits, signalling the caller to keep the over-length text as is.
func trimToSentences(text string, limit int) string {
	var (
		kept  []string
		words int
	)
	for _, sentence := range captions.SplitSentences(text) {
		n := wordCount(sentence)
		if words+n > limit {
			break
		}
		kept = append(kept, sentence)
		words += n
	}
	return strings.Join(kept, " ")
}

func wordCount(s string) int { return len(strings.Fields(s)) }
