// Package httpclient provides the HTTP plumbing used to talk to the alias service.
// Server location, session credential and timeout come from a Configurator. Responses
// with a status of 400 or above are reported as *HTTPError carrying the raw body.
package httpclient

import "context"

// HTTPClientInterface is implemented by the network client and by the handler-backed
// test client.
type HTTPClientInterface interface {
	// DoRequest sends a request and returns the response body.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error)
}

var _ HTTPClientInterface = &HTTPClient{}
var _ HTTPClientInterface = &TestHTTPClient{}
