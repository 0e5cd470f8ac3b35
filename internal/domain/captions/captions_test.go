package captions

import (
	"math"
	"testing"
)

func TestParse_TimedTextXML(t *testing.T) {
	raw := `<transcript>
<text start="0.5" dur="2.0">Ciao a tutti</text>
<text start="2.5" dur="3.1">Benvenuti &amp; buongiorno</text>
<text start="6.0" dur="1.5">[Music]</text>
</transcript>`
	entries := Parse(raw)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (annotation-only cue dropped), got %d", len(entries))
	}
	if entries[0].Start != 0.5 || entries[0].End != 2.5 {
		t.Fatalf("unexpected bounds: %+v", entries[0])
	}
	if entries[1].Text != "Benvenuti & buongiorno" {
		t.Fatalf("entity not unescaped: %q", entries[1].Text)
	}
}

func TestParse_ParagraphMillisDialect(t *testing.T) {
	raw := `<timedtext><body>
<p t="1000" d="2000">Primo</p>
<p t="3000" d="1500">Secondo</p>
</body></timedtext>`
	entries := Parse(raw)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Start != 1.0 || entries[0].End != 3.0 {
		t.Fatalf("millis not converted: %+v", entries[0])
	}
}

func TestParse_CueBlocks(t *testing.T) {
	raw := `1
00:00:00,000 --> 00:00:01,830
I'm happy to
have you here today.

2
00:00:01,910 --> 00:00:03,610
As I'm sure you're all aware
`
	entries := Parse(raw)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "I'm happy to have you here today." {
		t.Fatalf("lines not joined: %q", entries[0].Text)
	}
	if entries[1].Start < 1.9 || entries[1].Start > 1.92 {
		t.Fatalf("unexpected start: %v", entries[1].Start)
	}
}

func TestParse_CueBlocks_SkipsInvalidRange(t *testing.T) {
	raw := `1
00:00:00,000 --> 00:00:02,000
valid one

2
00:00:xx,000 --> 00:00:04,000
broken block

3
00:00:04,000 --> 00:00:06,000
valid two
`
	entries := Parse(raw)
	if len(entries) != 2 {
		t.Fatalf("expected only the valid blocks, got %d", len(entries))
	}
	if entries[1].Text != "valid two" {
		t.Fatalf("unexpected survivor: %q", entries[1].Text)
	}
}

func TestParse_CueBlocks_RejectsReversedRange(t *testing.T) {
	raw := `1
00:00:05,000 --> 00:00:03,000
end before start
`
	if entries := Parse(raw); len(entries) != 0 {
		t.Fatalf("expected reversed range to be dropped, got %d", len(entries))
	}
}

func TestParse_PlainTextFallback(t *testing.T) {
	entries := Parse("Ciao, come stai? Sto bene. Grazie mille!")
	if len(entries) != 3 {
		t.Fatalf("expected 3 synthesized entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Start != float64(i)*3 || e.End != float64(i)*3+3 {
			t.Fatalf("slot %d has bounds [%v,%v]", i, e.Start, e.End)
		}
	}
	if entries[0].Text != "Ciao, come stai?" {
		t.Fatalf("unexpected first sentence: %q", entries[0].Text)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
	if got := Parse("   \n\n  "); len(got) != 0 {
		t.Fatalf("expected empty result for whitespace, got %d entries", len(got))
	}
}

func TestParseTimestamp_Table(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:01:02,500", 62.5, false},
		{"01:02.500", 62.5, false},
		{"1:02:03.250", 3723.25, false},
		{"123.45s", 123.45, false},
		{"7.5", 7.5, false},
		{"00:00:xx,000", 0, true},
		{"nonsense", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"  <i>hello</i>   world ":        "hello world",
		"tra&amp;la":                     "tra&la",
		"[Applause] real   speech [sic]": "real speech",
		"<c.color>styled</c> text":       "styled text",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Fatalf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("One two. Three four! Five six? trailing bit")
	want := []string{"One two.", "Three four!", "Five six?", "trailing bit"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}
