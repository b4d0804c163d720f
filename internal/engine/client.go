// Package engine provides the HTTP client for the standalone Kokoro
// inference sidecar and adapts it to the core.Pipeline interface.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// API endpoints and paths.
const (
	apiGenerateSpeech = "/v1/generate/speech"
	apiHealth         = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypeWAV    = "audio/wav"
)

// Default values.
const (
	defaultLangCode = "a"
	defaultSpeed    = 1.0
)

// Static errors.
var (
	ErrTextEmpty          = errors.New("text cannot be empty")
	ErrEmptyAudioResponse = errors.New("received empty audio data")
)

// Request defines the JSON payload for a single-sentence generation call.
type Request struct {
	// Text is the sentence to synthesize. Must be non-empty.
	Text string `json:"text"`

	// VoicePath is the server-side path to the voice tensor to condition
	// the generation on.
	VoicePath string `json:"voice_path"`

	// LangCode selects the grapheme-to-phoneme language ("a" is American
	// English in the Kokoro convention).
	LangCode string `json:"lang_code"`

	// Speed is the playback speed multiplier.
	Speed float64 `json:"speed"`
}

// ErrorResponse represents a structured JSON error from the sidecar.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// HTTPClient is a client for the inference sidecar.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPClient creates a client for the sidecar at baseURL. The timeout
// applies to every request made by this client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateSpeech sends one generation request and returns the raw WAV bytes.
func (c *HTTPClient) GenerateSpeech(ctx context.Context, req Request) ([]byte, error) {
	if req.Text == "" {
		return nil, ErrTextEmpty
	}

	if req.LangCode == "" {
		req.LangCode = defaultLangCode
	}

	if req.Speed == 0 {
		req.Speed = defaultSpeed
	}

	requestBody, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", marshalErr)
	}

	url := c.baseURL + apiGenerateSpeech

	httpReq, requestErr := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if requestErr != nil {
		return nil, fmt.Errorf("failed to create request: %w", requestErr)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeWAV)

	resp, doErr := c.httpClient.Do(httpReq)
	if doErr != nil {
		return nil, fmt.Errorf(
			"failed to send request to inference engine at %s: %w",
			c.baseURL,
			doErr,
		)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	contentType := resp.Header.Get(headerContentType)
	if contentType != contentTypeWAV {
		return nil, fmt.Errorf(
			"unexpected content type: expected %s, got %s",
			contentTypeWAV,
			contentType,
		)
	}

	audioData, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", readErr)
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudioResponse
	}

	return audioData, nil
}

// HealthCheck verifies that the inference sidecar is reachable and healthy.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	url := c.baseURL + apiHealth

	req, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if requestErr != nil {
		return fmt.Errorf("failed to create health check request: %w", requestErr)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return fmt.Errorf(
			"health check failed for engine at %s: %w",
			c.baseURL,
			doErr,
		)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// sidecar, falling back to the raw body so diagnostics are never lost.
func (c *HTTPClient) parseErrorResponse(resp *http.Response) error {
	var errorResp ErrorResponse

	decodeErr := json.NewDecoder(resp.Body).Decode(&errorResp)
	if decodeErr == nil {
		return fmt.Errorf(
			"inference engine error (%s): %s (code: %s)",
			resp.Status,
			errorResp.Detail,
			errorResp.ErrorCode,
		)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		"inference engine returned non-OK status: %s, body: %s",
		resp.Status,
		string(body),
	)
}
