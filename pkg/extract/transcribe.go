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

// TranscribeExtractor sends audio files to an external transcription
// service. Long recordings take a while, hence the generous timeout.
type TranscribeExtractor struct {
	BaseURL string
	Client  *http.Client
}

var _ Extractor = &TranscribeExtractor{}

func NewTranscribeExtractor(baseURL string) *TranscribeExtractor {
	return &TranscribeExtractor{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

type transcribeResponse struct {
	Transcript string  `json:"transcript"`
	Duration   float64 `json:"duration_seconds"`
	Error      string  `json:"error,omitempty"`
}

func (t *TranscribeExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcribe: open %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("transcribe: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("transcribe: copy %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("transcribe: close form: %w", err)
	}

	url := t.BaseURL + "/v1/transcribe"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcribe: service error: status %d, body: %s", resp.StatusCode, string(data))
	}

	var trResp transcribeResponse
	if err := json.Unmarshal(data, &trResp); err != nil {
		return nil, fmt.Errorf("transcribe: unmarshal response: %w", err)
	}
	if trResp.Error != "" {
		return nil, fmt.Errorf("transcribe: service reported: %s", trResp.Error)
	}
	if trResp.Transcript == "" {
		return nil, fmt.Errorf("transcribe: empty transcript for %s", filepath.Base(path))
	}

	return &Result{
		Text:  trResp.Transcript,
		Pages: 1,
		Metadata: map[string]string{
			"duration_seconds": fmt.Sprintf("%.0f", trResp.Duration),
		},
	}, nil
}
