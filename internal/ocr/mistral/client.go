// Package mistral implements the OCR client against the Mistral document
// API. It is a thin transport shim: upload the file, request OCR, decode
// the returned element collection. All failures surface as the typed
// errors in internal/ocr.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"intakedoc/internal/config"
	"intakedoc/internal/domain"
	"intakedoc/internal/ocr"
	"intakedoc/internal/port"
)

const apiURL = "https://api.mistral.ai"

// Client implements port.OCRClient using the Mistral OCR endpoints.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a Mistral OCR client from configuration.
func NewClient(cfg *config.OCRConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newClient(cfg, endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint
// (for testing).
func NewClientWithEndpoint(cfg *config.OCRConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.OCRConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "mistral-ocr-latest"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Extract uploads the file and fetches the ordered element collection.
func (c *Client) Extract(ctx context.Context, input port.ExtractInput) ([]domain.Element, error) {
	if c.apiKey == "" {
		return nil, &ocr.AuthError{Err: errors.New("no API key configured, set MISTRAL_API_KEY or INTAKE_OCR_API_KEY")}
	}

	fileID, err := c.upload(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.fetchElements(ctx, fileID)
}

func (c *Client) upload(ctx context.Context, input port.ExtractInput) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("purpose", "ocr"); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	part, err := mw.CreateFormFile("file", filepath.Base(input.Path))
	if err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(input.Bytes); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/files", &body)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ocr.TransientError{Err: fmt.Errorf("reading upload response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp, respBody, "upload")
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return "", &ocr.MalformedResponseError{Err: fmt.Errorf("decoding upload response: %w", err)}
	}
	if uploaded.ID == "" {
		return "", &ocr.MalformedResponseError{Err: errors.New("upload response has no file id")}
	}
	return uploaded.ID, nil
}

func (c *Client) fetchElements(ctx context.Context, fileID string) ([]domain.Element, error) {
	reqBody, err := json.Marshal(map[string]interface{}{
		"model":   c.model,
		"file_id": fileID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/ocr", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ocr.TransientError{Err: fmt.Errorf("reading ocr response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp, respBody, "ocr")
	}

	var result struct {
		Model    string            `json:"model"`
		Elements []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ocr.MalformedResponseError{Err: fmt.Errorf("decoding ocr response: %w", err)}
	}
	if len(result.Elements) == 0 {
		return nil, &ocr.MalformedResponseError{Err: errors.New("ocr response has no elements")}
	}

	elements := make([]domain.Element, 0, len(result.Elements))
	for _, msg := range result.Elements {
		el, err := domain.UnmarshalElement(msg)
		if err != nil {
			return nil, &ocr.MalformedResponseError{Err: err}
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// classifyStatus maps a non-200 API answer to the typed error taxonomy.
func classifyStatus(resp *http.Response, body []byte, op string) error {
	baseErr := fmt.Errorf("mistral %s error (status %d): %s", op, resp.StatusCode, string(body))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &ocr.AuthError{Err: baseErr}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := ocr.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return ocr.NewQuotaError(baseErr, retryAfter)
	case resp.StatusCode == http.StatusRequestTimeout:
		return &ocr.TimeoutError{Err: baseErr}
	case resp.StatusCode >= 500:
		return &ocr.TransientError{Err: baseErr}
	default:
		return &ocr.MalformedResponseError{Err: baseErr}
	}
}

// classifyTransport maps a client-side round-trip failure to the typed
// error taxonomy.
func classifyTransport(err error) error {
	// A cancelled context is the caller giving up, not a service failure;
	// surface it as-is so the retry loop stops immediately.
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ocr.TimeoutError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ocr.TimeoutError{Err: err}
	}
	return &ocr.TransientError{Err: err}
}
