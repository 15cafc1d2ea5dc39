// Package gemini is a minimal client for the Gemini generateContent REST
// endpoint. Requests can go to Google directly or through a routing proxy
// that speaks the same request/response shape; the caller never chooses, the
// client is constructed one way or the other from config.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// temperature biases the model toward deterministic structured output.
const temperature = 0.5

// ErrNotConfigured is returned when no API key is set. Fatal to the parse
// request; surfaced verbatim to the operator.
var ErrNotConfigured = errors.New("GEMINI_API_KEY not configured")

// UpstreamError is a non-success response from the completion provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai api error: %d - %s", e.Status, e.Body)
}

type Client struct {
	apiKey   string
	model    string
	proxyURL string
	baseURL  string
	client   *http.Client
}

// NewClient builds a client. A non-empty proxyURL routes every request
// through the proxy instead of the direct endpoint.
func NewClient(apiKey, model, proxyURL string) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		proxyURL: proxyURL,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// SetTestTransport points the direct endpoint at a test server.
func (c *Client) SetTestTransport(baseURL string) {
	c.baseURL = baseURL
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends prompt and raw text as a single instruction block and
// returns the first text segment of the response. An unexpected envelope
// shape yields an empty string rather than an error; the extractor downstream
// reports it as a failed extraction either way.
func (c *Client) Complete(ctx context.Context, prompt, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	reqBody := request{
		Contents:         []content{{Parts: []part{{Text: prompt + "\n\n" + text}}}},
		GenerationConfig: generationConfig{Temperature: temperature},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) endpoint() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	if c.proxyURL != "" {
		q.Set("model", c.model)
		return c.proxyURL + "?" + q.Encode()
	}
	return fmt.Sprintf("%s/models/%s:generateContent?%s", c.baseURL, c.model, q.Encode())
}
