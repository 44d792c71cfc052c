package hme

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hmegen/hmegen/internal/common/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/sjson"
)

const (
	generatePath = "v1/hme/generate"
	reservePath  = "v1/hme/reserve"
	listPath     = "v2/hme/list"

	clientBuildNumber     = "2413Project44"
	clientMasteringNumber = "2413B20"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
)

// ClientOptions holds the values sent along with generate and reserve requests.
type ClientOptions struct {
	Label    string // label stored with every reserved alias
	Note     string // note stored with every reserved alias
	LangCode string // language of generated aliases
	DSID     string // account directory id, optional
}

// Client implements API on top of an httpclient. It holds no mutable state and may be
// shared by concurrent callers.
type Client struct {
	http    httpclient.HTTPClientInterface
	opts    ClientOptions
	query   map[string]string
	headers map[string]string
}

var _ API = (*Client)(nil)

// NewClient creates a client. Empty options fall back to defaults.
func NewClient(transport httpclient.HTTPClientInterface, opts ClientOptions) *Client {
	if opts.Label == "" {
		opts.Label = "hmegen"
	}
	if opts.LangCode == "" {
		opts.LangCode = "en-us"
	}
	return &Client{
		http: transport,
		opts: opts,
		query: map[string]string{
			"clientBuildNumber":     clientBuildNumber,
			"clientMasteringNumber": clientMasteringNumber,
			"clientId":              uuid.NewString(),
			"dsid":                  opts.DSID,
		},
		headers: map[string]string{
			"Content-Type":    "text/plain",
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
			"Origin":          "https://www.icloud.com",
			"Referer":         "https://www.icloud.com/",
			"User-Agent":      userAgent,
		},
	}
}

// ValidateCredential rejects an empty session credential.
func ValidateCredential(credential string) error {
	if strings.TrimSpace(credential) == "" {
		return ErrConfiguration.Msg("session credential is empty")
	}
	return nil
}

// GenerateAlias asks the service for a new, not yet reserved, alias.
func (c *Client) GenerateAlias(ctx context.Context) (*Envelope, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "langCode", c.opts.LangCode)
	if err != nil {
		return nil, fmt.Errorf("building generate request: %w", err)
	}
	return c.call(ctx, http.MethodPost, generatePath, body)
}

// ReserveAlias commits a generated alias under the configured label and note.
func (c *Client) ReserveAlias(ctx context.Context, address string) (*Envelope, error) {
	body := []byte(`{}`)
	var err error
	for _, kv := range [][2]string{
		{"hme", address},
		{"label", c.opts.Label},
		{"note", c.opts.Note},
	} {
		if body, err = sjson.SetBytes(body, kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("building reserve request: %w", err)
		}
	}
	return c.call(ctx, http.MethodPost, reservePath, body)
}

// ListAliases fetches every alias of the account.
func (c *Client) ListAliases(ctx context.Context) (*Envelope, error) {
	return c.call(ctx, http.MethodGet, listPath, nil)
}

// call performs a single attempt. A failure status whose body is still a JSON object is
// handed back as an envelope so the caller can read the service's own reason.
func (c *Client) call(ctx context.Context, method, path string, body []byte) (*Envelope, error) {
	raw, err := c.http.DoRequest(ctx, httpclient.RequestOptions{
		Method:      method,
		Path:        path,
		QueryParams: c.query,
		Headers:     c.headers,
		Body:        body,
	})
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if env, perr := ParseEnvelope(httpErr.Body); perr == nil {
				log.Debug().Str("path", path).Int("status", httpErr.StatusCode).Msg("failure status with JSON body")
				return env, nil
			}
			return nil, ErrProtocol.MsgErr(httpErr.Error(), err).SetStatusCode(httpErr.StatusCode)
		}
		return nil, ErrTransport.MsgErr(transportReason(err), err)
	}

	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// transportReason turns a failed exchange into a short, readable reason. The full error
// stays attached as a cause.
func transportReason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	default:
		return "service unreachable"
	}
}
