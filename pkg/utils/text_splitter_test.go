package utils

import (
	"strings"
	"testing"
)

func TestSplitSemanticShortText(t *testing.T) {
	chunks := SplitSemantic("A short note.", 200, 1500)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0] != "A short note." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestSplitSemanticEmpty(t *testing.T) {
	if chunks := SplitSemantic("   \n  ", 200, 1500); chunks != nil {
		t.Errorf("chunks = %v, want nil", chunks)
	}
}

func TestSplitSemanticRespectsMax(t *testing.T) {
	para := strings.Repeat("Lectures cover goroutines and channels. ", 20)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := SplitSemantic(text, 200, 1500)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 1500 {
			t.Errorf("chunk %d is %d chars, exceeds max", i, len(c))
		}
	}
}

func TestSplitSemanticOversizedSentence(t *testing.T) {
	// A single "sentence" with no terminator longer than max must be
	// hard-sliced, never dropped.
	text := strings.Repeat("word ", 800)

	chunks := SplitSemantic(text, 200, 1500)
	if len(chunks) == 0 {
		t.Fatal("expected chunks for oversized sentence")
	}
	var total int
	for _, c := range chunks {
		if len(c) > 1500 {
			t.Errorf("chunk is %d chars, exceeds max", len(c))
		}
		total += len(c)
	}
	if total < len(strings.TrimSpace(text))-len(chunks)*2 {
		t.Errorf("content lost during slicing: %d of %d chars kept", total, len(text))
	}
}

func TestSplitSemanticKeepsParagraphsTogether(t *testing.T) {
	text := "First paragraph about slices.\n\nSecond paragraph about maps."
	chunks := SplitSemantic(text, 20, 40)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2 (min reached after each paragraph)", len(chunks))
	}
}
