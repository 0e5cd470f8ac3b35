package quality

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/lingotools/lingoclip/internal/types"
)

func goodSegment() types.Segment {
	return types.Segment{
		ID:          "1",
		StartTime:   0,
		EndTime:     8,
		Text:        "Sono molto felice di vederti oggi amico mio.",
		Translation: "I am very happy to see you today my friend.",
	}
}

func TestAssess_Table(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*types.Segment)
		wantScore float64
		wantIssue string
	}{
		{"perfect", func(s *types.Segment) {}, 1.0, ""},
		{"too short duration", func(s *types.Segment) { s.EndTime = s.StartTime + 2 }, 0.8, "segment too short"},
		{"too long duration", func(s *types.Segment) { s.EndTime = s.StartTime + 20 }, 0.9, "segment too long"},
		{"text too short", func(s *types.Segment) { s.Text = "ciao ciao" }, 0.7, "text too short"},
		{"missing translation", func(s *types.Segment) { s.Translation = "" }, 0.8, "missing translation"},
		{"formatting chars", func(s *types.Segment) { s.Text += " [Music]" }, 0.9, "formatting characters in text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := goodSegment()
			tt.mutate(&seg)
			r := Assess(seg)
			if math.Abs(r.Score-tt.wantScore) > 1e-9 {
				t.Fatalf("score = %v, want %v (issues: %v)", r.Score, tt.wantScore, r.Issues)
			}
			if tt.wantIssue == "" {
				if len(r.Issues) != 0 {
					t.Fatalf("expected no issues, got %v", r.Issues)
				}
				return
			}
			found := false
			for _, is := range r.Issues {
				if is == tt.wantIssue {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected issue %q in %v", tt.wantIssue, r.Issues)
			}
		})
	}
}

func TestAssess_ScoreFloor(t *testing.T) {
	seg := types.Segment{ID: "1", StartTime: 0, EndTime: 1, Text: "[x]"}
	if r := Assess(seg); r.Score < 0 {
		t.Fatalf("score went below zero: %v", r.Score)
	}
}

func TestAssess_LongTextSuggestsSplit(t *testing.T) {
	seg := goodSegment()
	seg.Text = strings.Repeat("parola ", 30)
	r := Assess(seg)
	if len(r.Suggestions) == 0 {
		t.Fatalf("expected a split suggestion, got none (issues: %v)", r.Issues)
	}
}

func TestOptimize_RepairsWithoutDropping(t *testing.T) {
	seg := goodSegment()
	seg.Text = "[Music] Sono <i>molto</i> felice di vederti"
	seg.Translation = ""
	got := Optimize(seg)
	if strings.ContainsAny(got.Text, "[]<>") {
		t.Fatalf("formatting characters survived: %q", got.Text)
	}
	if got.Translation != MissingTranslationPlaceholder {
		t.Fatalf("expected placeholder translation, got %q", got.Translation)
	}
}

func TestOptimize_HighScorePassthrough(t *testing.T) {
	seg := goodSegment()
	if got := Optimize(seg); !reflect.DeepEqual(got, seg) {
		t.Fatalf("high-scoring segment was modified: %+v", got)
	}
}

func TestOptimize_NeverDecreasesScore(t *testing.T) {
	segs := []types.Segment{
		goodSegment(),
		{ID: "1", StartTime: 0, EndTime: 2, Text: "[x] ciao", Translation: ""},
		{ID: "2", StartTime: 0, EndTime: 8, Text: "testo privo di traduzione adeguata qui"},
	}
	for _, seg := range segs {
		once := Optimize(seg)
		twice := Optimize(once)
		if Assess(twice).Score < Assess(once).Score {
			t.Fatalf("re-optimizing lowered score: %+v", seg)
		}
	}
}

func TestMergeAdjacent_GapThreshold(t *testing.T) {
	segs := []types.Segment{
		{ID: "1", StartTime: 0, EndTime: 5, Text: "prima parte"},
		{ID: "2", StartTime: 6.5, EndTime: 10, Text: "seconda parte"},
		{ID: "3", StartTime: 15, EndTime: 20, Text: "terza parte"},
	}
	got := MergeAdjacent(segs)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments after merge, got %d", len(got))
	}
	if got[0].StartTime != 0 || got[0].EndTime != 10 {
		t.Fatalf("merged bounds [%v,%v]", got[0].StartTime, got[0].EndTime)
	}
	if got[0].Text != "prima parte seconda parte" {
		t.Fatalf("merged text %q", got[0].Text)
	}
	if got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("ids not reassigned ordinally: %q, %q", got[0].ID, got[1].ID)
	}
}

func TestMergeAdjacent_Idempotent(t *testing.T) {
	segs := []types.Segment{
		{ID: "1", StartTime: 0, EndTime: 5, Text: "uno"},
		{ID: "2", StartTime: 5.5, EndTime: 9, Text: "due"},
		{ID: "3", StartTime: 30, EndTime: 34, Text: "tre"},
		{ID: "4", StartTime: 60, EndTime: 63, Text: "quattro"},
	}
	once := MergeAdjacent(segs)
	twice := MergeAdjacent(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeAdjacent_Empty(t *testing.T) {
	if got := MergeAdjacent(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		seg  types.Segment
		want bool
	}{
		{"valid", goodSegment(), true},
		{"empty id", types.Segment{StartTime: 0, EndTime: 5, Text: "x y z"}, false},
		{"negative start", types.Segment{ID: "1", StartTime: -1, EndTime: 5, Text: "x"}, false},
		{"end before start", types.Segment{ID: "1", StartTime: 5, EndTime: 5, Text: "x"}, false},
		{"blank text", types.Segment{ID: "1", StartTime: 0, EndTime: 5, Text: "   "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.seg); got != tt.want {
				t.Fatalf("Validate = %v, want %v", got, tt.want)
			}
		})
	}
}
