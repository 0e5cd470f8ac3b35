// Package quality scores generated segments against duration, length, and
// formatting heuristics, and repairs the ones that fall short.
package quality

import (
	"strconv"
	"strings"

	"github.com/lingotools/lingoclip/internal/domain/captions"
	"github.com/lingotools/lingoclip/internal/types"
)

// MissingTranslationPlaceholder marks segments whose translation was never
// produced; it is distinct from the marker used when a translation call
// actually failed.
const MissingTranslationPlaceholder = "[translation unavailable]"

// mergeGapSeconds is the maximum silence between two segments that still
// merges them into one.
const mergeGapSeconds = 2.0

const optimizeThreshold = 0.8

// Report is the outcome of assessing one segment.
type Report struct {
	Score       float64
	Issues      []string
	Suggestions []string
}

// Assess scores a segment in [0,1]. Deductions accumulate; the score never
// goes below zero.
func Assess(seg types.Segment) Report {
	r := Report{Score: 1.0}
	deduct := func(amount float64, issue, suggestion string) {
		r.Score -= amount
		r.Issues = append(r.Issues, issue)
		if suggestion != "" {
			r.Suggestions = append(r.Suggestions, suggestion)
		}
	}

	switch d := seg.Duration(); {
	case d < 3:
		deduct(0.2, "segment too short", "")
	case d > 15:
		deduct(0.1, "segment too long", "split the segment into shorter clips")
	}

	switch n := len(strings.Fields(seg.Text)); {
	case n < 3:
		deduct(0.3, "text too short", "")
	case n > 25:
		deduct(0.1, "text too long", "split on sentence boundaries")
	}

	if strings.TrimSpace(seg.Translation) == "" {
		deduct(0.2, "missing translation", "")
	}

	if strings.ContainsAny(seg.Text, "[]{}<>") {
		deduct(0.1, "formatting characters in text", "strip markup and annotations")
	}

	if r.Score < 0 {
		r.Score = 0
	}
	return r
}

// Optimize repairs a low-scoring segment in place: formatting characters
// are stripped with the parser's cleanup and a missing translation gets an
// explicit placeholder. Segments are never dropped here. Re-running
// Optimize on its own output never lowers the score.
func Optimize(seg types.Segment) types.Segment {
	if Assess(seg).Score >= optimizeThreshold {
		return seg
	}
	seg.Text = captions.Clean(seg.Text)
	if strings.TrimSpace(seg.Translation) == "" {
		seg.Translation = MissingTranslationPlaceholder
	}
	return seg
}

// MergeAdjacent collapses segments separated by at most two seconds into
// one, extending the accumulator's end and joining the texts. Input order
// is preserved; ids are reassigned ordinally after merging. Idempotent.
func MergeAdjacent(segs []types.Segment) []types.Segment {
	if len(segs) == 0 {
		return nil
	}

	var out []types.Segment
	acc := segs[0]
	for _, next := range segs[1:] {
		if next.StartTime-acc.EndTime <= mergeGapSeconds {
			if next.EndTime > acc.EndTime {
				acc.EndTime = next.EndTime
			}
			acc.Text = captions.Clean(acc.Text + " " + next.Text)
			continue
		}
		out = append(out, acc)
		acc = next
	}
	out = append(out, acc)

	for i := range out {
		out[i].ID = strconv.Itoa(i + 1)
	}
	return out
}

// Validate is the final acceptance gate before extraction.
func Validate(seg types.Segment) bool {
	return seg.ID != "" &&
		seg.StartTime >= 0 &&
		seg.EndTime > seg.StartTime &&
		strings.TrimSpace(seg.Text) != ""
}
