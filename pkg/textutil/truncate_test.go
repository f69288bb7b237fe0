package textutil

import (
	"strings"
	"testing"
)

func TestTruncateWithinBudget(t *testing.T) {
	text := "short text"
	if got := Truncate(text, 100); got != text {
		t.Errorf("Truncate() = %q, want unchanged input", got)
	}
}

func TestTruncateIdempotent(t *testing.T) {
	budgets := []int{100, 500, 1000, 50000}
	text := strings.Repeat("All work and no play makes Jack a dull boy. ", 2000)

	for _, budget := range budgets {
		once := Truncate(text, budget)
		twice := Truncate(once, budget)
		if once != twice {
			t.Errorf("budget %d: Truncate(Truncate(x)) != Truncate(x)", budget)
		}
		if len(once) > budget {
			t.Errorf("budget %d: result length %d exceeds budget", budget, len(once))
		}
	}
}

func TestTruncatePrefersParagraphBoundary(t *testing.T) {
	// Paragraph break placed inside the last 20% of the effective budget.
	budget := 1000
	limit := budget - len(TruncationMarker)
	breakAt := limit - 50

	text := strings.Repeat("a", breakAt) + "\n\n" + strings.Repeat("b", 5000)

	got := Truncate(text, budget)
	want := strings.Repeat("a", breakAt) + TruncationMarker
	if got != want {
		t.Errorf("Truncate() did not cut at paragraph break (len=%d, want %d)", len(got), len(want))
	}
}

func TestTruncateFallsBackToSentenceBoundary(t *testing.T) {
	budget := 1000
	limit := budget - len(TruncationMarker)
	breakAt := limit - 50

	text := strings.Repeat("a", breakAt) + ". " + strings.Repeat("b", 5000)

	got := Truncate(text, budget)
	if !strings.HasSuffix(strings.TrimSuffix(got, TruncationMarker), ".") {
		t.Errorf("Truncate() should end at sentence boundary, got tail %q", got[len(got)-40:])
	}
}

func TestTruncateHardCut(t *testing.T) {
	// No boundaries anywhere: hard cut at the limit.
	budget := 200
	text := strings.Repeat("x", 1000)

	got := Truncate(text, budget)
	if len(got) != budget {
		t.Errorf("len(Truncate()) = %d, want %d", len(got), budget)
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Error("truncated output missing marker")
	}
}

func TestTruncateRuneSafety(t *testing.T) {
	text := strings.Repeat("日本語のテキスト", 500)
	got := Truncate(text, 300)
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Error("truncated output missing marker")
	}
	for _, r := range got {
		if r == '�' {
			t.Fatal("truncation split a multi-byte rune")
		}
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "fits in one chunk",
			text:       "hello world",
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "splits with overlap",
			text:       strings.Repeat("a", 3000),
			chunkSize:  1500,
			overlap:    200,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Errorf("len(chunks) = %d, want %d", len(chunks), tt.wantChunks)
			}
			for i, c := range chunks {
				if len(c) > tt.chunkSize {
					t.Errorf("chunk %d length %d exceeds chunkSize", i, len(c))
				}
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  one two   three "); got != 3 {
		t.Errorf("WordCount() = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(empty) = %d, want 0", got)
	}
}
