package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextExtractor reads plain-text and markdown files from disk.
type TextExtractor struct{}

var _ Extractor = TextExtractor{}

func NewTextExtractor() TextExtractor { return TextExtractor{} }

func (TextExtractor) Extract(_ context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("extract: %s is empty", path)
	}
	return &Result{Text: text, Pages: 1}, nil
}
