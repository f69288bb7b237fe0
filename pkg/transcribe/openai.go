package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"ai-studynotes-be/pkg/llm"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
)

// Transcriber converts an audio stream into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// OpenAITranscriber calls the hosted audio/transcriptions endpoint. Same failure
// contract as the text providers: no retry, credentials checked before I/O.
type OpenAITranscriber struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ Transcriber = &OpenAITranscriber{}

func NewOpenAITranscriber(apiKey, baseURL, model string) *OpenAITranscriber {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAITranscriber{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 300 * time.Second, // long recordings take a while
		},
	}
}

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if t.apiKey == "" {
		return "", llm.ErrMissingAPIKey
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/audio/transcriptions", t.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.apiKey))

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(bodyBytes, &tr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if tr.Error != nil {
		return "", fmt.Errorf("transcription api returned error: %s", tr.Error.Message)
	}

	return tr.Text, nil
}
