// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the inference client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeInvalidResponse
	ErrTypeEmptyResponse
)

// ErrEmptyResponse is returned when the API answers 2xx but the reply
// path is missing or blank. The pipeline treats it as a failure.
var ErrEmptyResponse = &ClientError{Type: ErrTypeEmptyResponse, Message: "no response received"}

// Is lets errors.Is match client errors by type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the inference client.
type ClientConfig struct {
	// Endpoint is the API base URL.
	Endpoint string

	// Model is the model name used in the request path.
	Model string

	// APIKey is passed as the key query parameter.
	APIKey string

	// Timeout for the whole request (default: 30s).
	Timeout time.Duration

	// RequestsPerMinute caps outbound request rate (default: 15,
	// the free-tier quota). 0 keeps the default; negative disables
	// limiting.
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint:          "https://generativelanguage.googleapis.com",
		Model:             "gemini-1.5-flash",
		Timeout:           30 * time.Second,
		RequestsPerMinute: 15,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the generateContent endpoint. Safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client, filling defaults for zero values.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Endpoint == "" {
		config.Endpoint = "https://generativelanguage.googleapis.com"
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 15
	}

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
	}
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateCandidate struct {
	Content generateContent `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

type generateResponse struct {
	Candidates []generateCandidate `json:"candidates"`
	Error      *apiError           `json:"error"`
}

// =============================================================================
// GENERATE
// =============================================================================

// Generate sends one inference request carrying text and returns the
// trimmed reply. Exactly one attempt is made.
func (c *Client) Generate(ctx context.Context, text string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
		}
	}

	reqBody := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: text}}}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL(), bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "inference request failed", Cause: err}
	}
	defer resp.Body.Close()

	var result generateResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "inference request failed: " + resp.Status
		if decodeErr == nil && result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", &ClientError{Type: ErrTypeStatus, Message: msg}
	}
	if decodeErr != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: decodeErr}
	}

	reply := strings.TrimSpace(replyText(result))
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

// replyText walks the candidates[0].content.parts[0].text path,
// tolerating missing pieces.
func replyText(r generateResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// generateURL builds the model endpoint with the API key attached.
func (c *Client) generateURL() string {
	return c.config.Endpoint + "/v1beta/models/" + url.PathEscape(c.config.Model) +
		":generateContent?key=" + url.QueryEscape(c.config.APIKey)
}
