// Package iss is a client for the Moscow Exchange Information & Statistical
// Server (ISS) public HTTP/JSON API.
package iss

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"moex-iss/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://iss.moex.com/iss"
	DefaultTimeout = 30 * time.Second
)

// HTTPClient implements Client over the ISS HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	transport  Transport
	logger     *log.Logger
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the ISS root, e.g. for a mirror or a test server.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = u
	}
}

// WithTimeout sets the net/http client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithTransport replaces the net/http transport entirely.
func WithTransport(t Transport) ClientOption {
	return func(c *HTTPClient) {
		c.transport = t
	}
}

// WithLogger sets the logger used for failed queries.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

// NewHTTPClient creates a new ISS client.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log.New(os.Stdout, "[iss] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = &netTransport{client: c.httpClient}
	}
	return c
}

// Query performs GET <base>/<method>.json?<params> and returns the decoded
// document. On failure the document is nil, the failure is logged, and the
// error is a *TransportError, a *DecodeError or ErrEmptyResult.
func (c *HTTPClient) Query(ctx context.Context, method string, params url.Values) (Document, error) {
	start := time.Now()
	doc, err := c.query(ctx, method, params)
	observability.RecordISSRequest(endpointLabel(method), outcomeLabel(err), time.Since(start).Seconds())
	if err != nil {
		c.logger.Printf("query %s failed: %v", method, err)
		return nil, err
	}
	return doc, nil
}

func (c *HTTPClient) query(ctx context.Context, method string, params url.Values) (Document, error) {
	u := BuildURL(c.baseURL, method, params)

	status, body, err := c.transport.Get(ctx, u)
	if err != nil {
		return nil, &TransportError{URL: u, StatusCode: 0, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{URL: u, StatusCode: status}
	}

	if len(body) == 0 {
		return nil, ErrEmptyResult
	}
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{URL: u, Err: errInvalidJSON}
	}

	return Document(body), nil
}

// endpointLabel collapses the ticker segment of a method path so that
// metric cardinality stays bounded.
func endpointLabel(method string) string {
	parts := strings.Split(strings.Trim(method, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "securities" {
			parts[i+1] = ":secid"
			break
		}
	}
	return strings.Join(parts, "/")
}

func outcomeLabel(err error) string {
	var te *TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &te) && te.StatusCode != 0:
		return "status"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEmptyResult):
		return "empty"
	default:
		return "error"
	}
}
