package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"notes.txt", TypeText},
		{"README.md", TypeMarkdown},
		{"slides.PPTX", TypeSlides},
		{"book.pdf", TypePDF},
		{"essay.docx", TypeDocument},
		{"lecture.mp3", TypeAudio},
		{"noextension", TypeText},
		{"weird.xyz", TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := DetectType(tt.filename); got != tt.want {
				t.Errorf("DetectType(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(TypeText, NewTextExtractor())

	if _, err := r.For(TypeText); err != nil {
		t.Errorf("For(text) error = %v", err)
	}
	if _, err := r.For(TypeAudio); err == nil {
		t.Error("For(audio) should fail when unregistered")
	}
}

func TestTextExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("  Go has goroutines.  "), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := NewTextExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Text != "Go has goroutines." {
		t.Errorf("text = %q", result.Text)
	}
	if result.Pages != 1 {
		t.Errorf("pages = %d", result.Pages)
	}
}

func TestTextExtractorEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("   "), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewTextExtractor().Extract(context.Background(), path); err == nil {
		t.Error("empty file should be an explicit failure")
	}
}
