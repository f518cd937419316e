package iss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// Transport performs a single GET and returns the status code and body.
// A non-nil error means no usable response was received.
type Transport interface {
	Get(ctx context.Context, url string) (int, []byte, error)
}

// netTransport is the default Transport backed by net/http.
type netTransport struct {
	client *http.Client
}

func (t *netTransport) Get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// FastHTTPTransport implements Transport on top of fasthttp.
type FastHTTPTransport struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewFastHTTPTransport creates a fasthttp-backed transport. A zero timeout
// means DefaultTimeout.
func NewFastHTTPTransport(timeout time.Duration) *FastHTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FastHTTPTransport{
		client:  &fasthttp.Client{},
		timeout: timeout,
	}
}

// Get performs the request, honouring the earlier of ctx's deadline and the
// transport timeout.
func (t *FastHTTPTransport) Get(ctx context.Context, url string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, fmt.Errorf("fasthttp request: %w", err)
	}

	// resp is released on return; the body must be copied out.
	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}
