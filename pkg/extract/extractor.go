// Package extract wraps the external file-content extractors and the
// transcription service behind one contract. Parsing binary formats is
// third-party capability; this package only moves bytes and reports
// explicit failures.
package extract

import (
	"context"
	"fmt"
	"strings"
)

// File types the ingestion pipeline recognizes.
const (
	TypeText     = "text"
	TypeMarkdown = "markdown"
	TypePDF      = "pdf"
	TypeSlides   = "slides"
	TypeDocument = "document"
	TypeAudio    = "audio"
)

// Result is the extractor output contract.
type Result struct {
	Text     string            `json:"text"`
	Pages    int               `json:"pages"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Extractor turns one file into plain text or an explicit failure.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Result, error)
}

// Registry maps detected file types to extractors.
type Registry struct {
	byType map[string]Extractor
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Extractor)}
}

func (r *Registry) Register(fileType string, ex Extractor) {
	r.byType[fileType] = ex
}

func (r *Registry) For(fileType string) (Extractor, error) {
	ex, ok := r.byType[fileType]
	if !ok {
		return nil, fmt.Errorf("extract: no extractor for file type %q", fileType)
	}
	return ex, nil
}

// DetectType maps a filename extension to a file type. Unknown
// extensions are treated as plain text so ingestion can still try.
func DetectType(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return TypeText
	}
	switch strings.ToLower(filename[idx+1:]) {
	case "txt":
		return TypeText
	case "md", "markdown":
		return TypeMarkdown
	case "pdf":
		return TypePDF
	case "ppt", "pptx":
		return TypeSlides
	case "doc", "docx":
		return TypeDocument
	case "mp3", "wav", "m4a", "ogg":
		return TypeAudio
	default:
		return TypeText
	}
}
