// Package captions converts raw caption payloads into timed entries.
// Dispatch tries a small ordered set of format recognizers (timedtext XML
// tag dialects, arrow-style cue blocks) and falls back to synthesizing
// timings for untimed prose.
package captions

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/lingotools/lingoclip/internal/types"
)

// plainTextSlotSeconds is the synthetic duration assigned to each sentence
// when the payload carries no timing information at all.
const plainTextSlotSeconds = 3.0

var (
	// <text start="1.3" dur="2.4">...</text> — YouTube timedtext.
	reTextTag = regexp.MustCompile(`(?s)<text\b[^>]*\bstart="([0-9.]+)"[^>]*>(.*?)</text>`)
	reTextDur = regexp.MustCompile(`\bdur="([0-9.]+)"`)

	// <p t="1234" d="2000">...</p> — srv3 paragraph timing, milliseconds.
	rePTag = regexp.MustCompile(`(?s)<p\b[^>]*\bt="(\d+)"[^>]*>(.*?)</p>`)
	rePDur = regexp.MustCompile(`\bd="(\d+)"`)

	// 00:00:01,230 --> 00:00:03.450 — SRT/VTT cue timing line.
	reCueTiming = regexp.MustCompile(`(?:\d{1,2}:)?\d{1,2}:\d{1,2}[,.]\d{1,3}\s*-->\s*(?:\d{1,2}:)?\d{1,2}:\d{1,2}[,.]\d{1,3}`)

	reMarkup     = regexp.MustCompile(`<[^>]+>`)
	reAnnotation = regexp.MustCompile(`\[[^\]]*\]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reCueHeader  = regexp.MustCompile(`^(WEBVTT|NOTE|Kind:|Language:)`)
	reSentence   = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Parse converts a raw caption payload into ordered entries. Malformed
// blocks are skipped, never surfaced; a structurally empty payload yields
// an empty slice.
func Parse(raw string) []types.CaptionEntry {
	switch {
	case looksLikeTimedTextXML(raw):
		return parseTimedTextXML(raw)
	case looksLikeCueBlocks(raw):
		return parseCueBlocks(raw)
	default:
		return synthesizeFromProse(raw)
	}
}

func looksLikeTimedTextXML(raw string) bool {
	return reTextTag.MatchString(raw) || rePTag.MatchString(raw)
}

func looksLikeCueBlocks(raw string) bool {
	return reCueTiming.MatchString(raw)
}

func parseTimedTextXML(raw string) []types.CaptionEntry {
	var out []types.CaptionEntry
	for _, m := range reTextTag.FindAllStringSubmatch(raw, -1) {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		end := start
		if d := reTextDur.FindStringSubmatch(m[0]); d != nil {
			if dur, err := strconv.ParseFloat(d[1], 64); err == nil {
				end = start + dur
			}
		}
		out = appendEntry(out, start, end, m[2])
	}
	if len(out) > 0 {
		return out
	}
	for _, m := range rePTag.FindAllStringSubmatch(raw, -1) {
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		start := t / 1000
		end := start
		if d := rePDur.FindStringSubmatch(m[0]); d != nil {
			if dur, err := strconv.ParseFloat(d[1], 64); err == nil {
				end = start + dur/1000
			}
		}
		out = appendEntry(out, start, end, m[2])
	}
	return out
}

// parseCueBlocks scans index/timing/text blocks line by line. A broken
// timing line invalidates only its own block; later blocks still parse.
func parseCueBlocks(raw string) []types.CaptionEntry {
	var (
		out        []types.CaptionEntry
		start, end float64
		haveRange  bool
		text       []string
	)
	flush := func() {
		if haveRange && len(text) > 0 {
			out = appendEntry(out, start, end, strings.Join(text, " "))
		}
		text = nil
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case reCueTiming.MatchString(line):
			flush()
			parts := strings.SplitN(line, "-->", 2)
			s, errS := ParseTimestamp(parts[0])
			// trailing cue settings (position, align) follow the second
			// timestamp in VTT; take the first field only
			e, errE := ParseTimestamp(strings.Fields(strings.TrimSpace(parts[1]))[0])
			haveRange = errS == nil && errE == nil
			start, end = s, e
		case strings.Contains(line, "-->"):
			// arrow present but timestamps unparseable: poison the block
			flush()
			haveRange = false
		case isDigitsOnly(line), reCueHeader.MatchString(line):
			// bare cue index or header metadata
		default:
			if haveRange {
				text = append(text, line)
			}
		}
	}
	flush()
	return out
}

func synthesizeFromProse(raw string) []types.CaptionEntry {
	var out []types.CaptionEntry
	t := 0.0
	for _, sentence := range SplitSentences(Clean(raw)) {
		out = append(out, types.CaptionEntry{
			Start: t,
			End:   t + plainTextSlotSeconds,
			Text:  sentence,
		})
		t += plainTextSlotSeconds
	}
	return out
}

func appendEntry(out []types.CaptionEntry, start, end float64, text string) []types.CaptionEntry {
	cleaned := Clean(text)
	if start < 0 || end <= start || cleaned == "" {
		return out
	}
	return append(out, types.CaptionEntry{Start: start, End: end, Text: cleaned})
}

// ParseTimestamp accepts "HH:MM:SS[,.]mmm" (hours and minutes optional,
// zero-filled), a "123.45s" float-with-suffix, or a bare float in seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		return parseClock(s)
	}
	s = strings.TrimSuffix(s, "s")
	return strconv.ParseFloat(s, 64)
}

func parseClock(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, err
		}
		total = total*60 + v
	}
	return total, nil
}

// Clean strips markup tags, entity escapes, and [bracketed] non-speech
// annotations, then collapses whitespace. Shared with the quality pass.
func Clean(s string) string {
	s = reMarkup.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = reAnnotation.ReplaceAllString(s, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// SplitSentences cuts text on sentence punctuation (. ! ?), keeping the
// terminator with its sentence. Deliberately naive about abbreviations.
func SplitSentences(s string) []string {
	var out []string
	for _, m := range reSentence.FindAllString(s, -1) {
		if t := strings.TrimSpace(m); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isDigitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
