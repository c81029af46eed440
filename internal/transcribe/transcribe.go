// Package transcribe turns captured audio into text via the OpenAI
// transcription API.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/whisapp/whis-desktop/internal/audio"
)

const defaultEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// ErrNoAPIKey is returned when no transcription API key has been configured.
var ErrNoAPIKey = errors.New("no API key configured")

// Client uploads recordings to the transcription API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	language   string
}

// Option tweaks a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLanguage pins the transcription language (ISO 639-1). Empty means
// auto-detect.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// New creates a transcription client.
func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		model:      model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	Text string `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe uploads a single recording and returns its text. Long takes are
// split into chunks that upload concurrently; their transcripts concatenate
// in take order.
func (c *Client) Transcribe(ctx context.Context, rec *audio.Recording) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	chunks := rec.Chunks()
	if len(chunks) == 1 {
		return c.transcribeOne(ctx, chunks[0])
	}

	log.Printf("Transcribing %d chunks in parallel (take length %s)", len(chunks), rec.Duration())
	texts := make([]string, len(chunks))
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk *audio.Recording) {
			defer wg.Done()
			texts[i], errs[i] = c.transcribeOne(ctx, chunk)
		}(i, chunk)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return "", fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}
	return strings.Join(texts, " "), nil
}

func (c *Client) transcribeOne(ctx context.Context, rec *audio.Recording) (string, error) {
	wavData, err := rec.EncodeWAV()
	if err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "recording.wav")
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if c.language != "" {
		if err := writer.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("transcription API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("transcription API error (status %d)", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}
