package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	opEncode  = "encode request body"
	opRequest = "send request"
	opRead    = "read response body"
	opDecode  = "decode response body"

	headerRequestID = "X-Request-ID"
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Get() (string, bool)
}

// RequestOptions describes one gateway call. A nil Body sends no body.
type RequestOptions struct {
	Method       string
	Body         any
	RequiresAuth bool
}

// Requester is the request function the typed API is built on.
type Requester interface {
	Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error)
}

// GatewayConfig holds configuration for creating a Gateway.
type GatewayConfig struct {
	// BaseURL is the service root, e.g. "http://localhost:4000".
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Tokens supplies the bearer token. If nil, no Authorization header is sent.
	Tokens TokenSource
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Gateway is the request/response boundary to the contacts service.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

func NewGateway(config GatewayConfig) (*Gateway, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("remote: BaseURL %q must use http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     config.Tokens,
		logger:     logger,
	}, nil
}

// Request performs one call and returns the response body as JSON. A
// response without a body yields a nil result. Requests are never retried.
func (g *Gateway) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, NewTransportError(opEncode, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return nil, NewTransportError(opRequest, err)
	}

	requestID := uuid.NewString()
	request.Header.Set(headerRequestID, requestID)
	request.Header.Set("Accept", "application/json")
	if opts.Body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if opts.RequiresAuth && g.tokens != nil {
		if token, ok := g.tokens.Get(); ok {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	response, err := g.httpClient.Do(request)
	if err != nil {
		g.logger.Debug("request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err,
		)
		return nil, NewTransportError(opRequest, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, NewTransportError(opRead, err)
	}

	g.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"request_id", requestID,
	)

	parsed, parseErr := parseBody(responseBody)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, NewRemoteError(response.StatusCode, errorMessage(parsed))
	}
	if parseErr != nil {
		return nil, NewTransportError(opDecode, parseErr)
	}
	return parsed, nil
}

// parseBody validates the body as JSON. Empty bodies parse to nil.
func parseBody(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	return json.RawMessage(trimmed), nil
}

// errorMessage pulls the "message" or "error" string out of an error payload.
func errorMessage(payload json.RawMessage) string {
	if payload == nil {
		return ""
	}
	var fields struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return ""
	}
	if message, ok := fields.Message.(string); ok && message != "" {
		return message
	}
	if message, ok := fields.Error.(string); ok && message != "" {
		return message
	}
	return ""
}
