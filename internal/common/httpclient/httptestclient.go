package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
)

// TestHTTPClient serves requests with an in-process http.Handler through
// httptest.NewRecorder, without touching the network.
type TestHTTPClient struct {
	config  Configurator
	handler http.Handler
}

// NewTestClient returns a client that dispatches every request to handler.
func NewTestClient(config Configurator, handler http.Handler) *TestHTTPClient {
	return &TestHTTPClient{
		config:  config,
		handler: handler,
	}
}

// DoRequest builds the request exactly like HTTPClient and records the handler's response.
// A context that is already done fails the request the way a real transport would.
func (c *TestHTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	req, err := newRequest(ctx, c.config, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	return checkStatus(rr.Code, rr.Body.Bytes())
}
