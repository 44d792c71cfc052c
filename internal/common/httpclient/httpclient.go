package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/rs/zerolog/log"
)

// Configurator supplies server location and credentials.
type Configurator interface {
	GetServerURL() string
	GetSessionCredential() string
	GetTimeout() time.Duration
}

// HTTPError is returned for responses with a status code of 400 or above.
type HTTPError struct {
	StatusCode int    // HTTP status code of the response
	Message    string // status text or body excerpt
	Body       []byte // raw response body
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// HTTPClient makes requests against the configured server.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// NewClient creates a client for the server described by config.
func NewClient(config Configurator) *HTTPClient {
	d := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           d.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
		},
	}
}

// RequestOptions describes one request. Method and Path are required.
type RequestOptions struct {
	Method      string            // HTTP method
	Path        string            // path relative to the server URL
	QueryParams map[string]string // optional query parameters
	Headers     map[string]string // optional extra headers
	Body        []byte            // optional request body
}

// DoRequest sends the request described by opts. The session credential is attached as
// the Cookie header and the configured timeout bounds the whole exchange.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	if timeout := c.config.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := newRequest(ctx, c.config, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Str("method", opts.Method).
		Str("path", opts.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	return checkStatus(resp.StatusCode, body)
}

func newRequest(ctx context.Context, config Configurator, opts RequestOptions) (*http.Request, error) {
	u, err := url.Parse(config.GetServerURL())
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), bytes.NewReader(opts.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if cookie := config.GetSessionCredential(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return req, nil
}

func checkStatus(status int, body []byte) ([]byte, error) {
	if status < http.StatusBadRequest {
		return body, nil
	}
	msg := http.StatusText(status)
	if status == http.StatusNotFound {
		msg = "server doesn't implement this endpoint"
	}
	return nil, &HTTPError{
		StatusCode: status,
		Message:    msg,
		Body:       body,
	}
}
