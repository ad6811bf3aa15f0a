package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DocumentExtractor posts PDF/slide/word files to an external
// extraction service and returns its plain-text result.
type DocumentExtractor struct {
	BaseURL string
	Client  *http.Client
}

var _ Extractor = &DocumentExtractor{}

func NewDocumentExtractor(baseURL string) *DocumentExtractor {
	return &DocumentExtractor{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type documentResponse struct {
	Text     string            `json:"text"`
	Pages    int               `json:"pages"`
	Metadata map[string]string `json:"metadata"`
	Error    string            `json:"error,omitempty"`
}

func (d *DocumentExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("extract: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("extract: copy %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("extract: close form: %w", err)
	}

	url := d.BaseURL + "/v1/extract"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("extract: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("extract: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extract: service error: status %d, body: %s", resp.StatusCode, string(data))
	}

	var docResp documentResponse
	if err := json.Unmarshal(data, &docResp); err != nil {
		return nil, fmt.Errorf("extract: unmarshal response: %w", err)
	}
	if docResp.Error != "" {
		return nil, fmt.Errorf("extract: service reported: %s", docResp.Error)
	}
	if docResp.Text == "" {
		return nil, fmt.Errorf("extract: service returned no text for %s", filepath.Base(path))
	}

	return &Result{Text: docResp.Text, Pages: docResp.Pages, Metadata: docResp.Metadata}, nil
}
