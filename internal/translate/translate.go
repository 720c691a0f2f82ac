// Package translate exposes machine translation as a pass-through
// collaborator. The backend forwards (text, source, dest) to an external
// HTTP service and returns its answer verbatim; no translation state or
// quality logic lives in this codebase.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Translator converts text between two language tags.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, destLang string) (string, error)
}

// Unconfigured is the Translator used when no endpoint is set. It mirrors
// the classic "service not configured" placeholder answer instead of
// failing the request.
type Unconfigured struct{}

// Translate returns a fixed placeholder string and no error.
func (Unconfigured) Translate(_ context.Context, _, _, _ string) (string, error) {
	return "Error: the translation service is not configured.", nil
}

// HTTPClient calls a JSON translation endpoint:
//
//	POST {Endpoint}  {"text": ..., "source_language": ..., "dest_language": ...}
//	200              {"text": ...}
//
// Any non-200 response or transport failure is surfaced to the caller; the
// handler decides how to present it.
type HTTPClient struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPClient returns a client with a bounded request timeout.
func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_language"`
	DestLang   string `json:"dest_language"`
}

type translateResponse struct {
	Text string `json:"text"`
}

// Translate performs the round trip to the configured endpoint.
func (c *HTTPClient) Translate(ctx context.Context, text, sourceLang, destLang string) (string, error) {
	body, err := json.Marshal(translateRequest{Text: text, SourceLang: sourceLang, DestLang: destLang})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpClient := c.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}
	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Text, nil
}
