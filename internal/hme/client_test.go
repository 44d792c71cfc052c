package hme

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hmegen/hmegen/internal/common/apperrors"
	"github.com/hmegen/hmegen/internal/common/httpclient"
	"github.com/hmegen/hmegen/internal/hme/hmetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testCookie = "X-APPLE-WEBAUTH-TOKEN=abc; X-APPLE-WEBAUTH-USER=def"

type testConfig struct {
	serverURL string
	cookie    string
	timeout   time.Duration
}

func (c testConfig) GetServerURL() string         { return c.serverURL }
func (c testConfig) GetSessionCredential() string { return c.cookie }
func (c testConfig) GetTimeout() time.Duration {
	if c.timeout == 0 {
		return time.Second
	}
	return c.timeout
}

func newTestClient(t *testing.T, svc http.Handler, opts ClientOptions) *Client {
	t.Helper()
	cfg := testConfig{serverURL: "https://p68-maildomainws.icloud.com", cookie: testCookie}
	return NewClient(httpclient.NewTestClient(cfg, svc), opts)
}

func TestClient_GenerateReserveList(t *testing.T) {
	svc := hmetest.NewService()
	svc.Cookie = testCookie
	c := newTestClient(t, svc, ClientOptions{Label: "shopping", Note: "made in test", DSID: "123"})
	ctx := context.Background()

	env, err := c.GenerateAlias(ctx)
	require.NoError(t, err)
	require.True(t, env.IsSuccess())
	address, ok := env.GeneratedAddress()
	require.True(t, ok)
	assert.Equal(t, "alias001@privaterelay.appleid.com", address)

	env, err = c.ReserveAlias(ctx, address)
	require.NoError(t, err)
	assert.True(t, env.IsSuccess())

	env, err = c.ListAliases(ctx)
	require.NoError(t, err)
	require.True(t, env.IsSuccess())
	entries, skipped := env.ListingEntries()
	assert.Empty(t, skipped)
	require.Len(t, entries, 1)
	assert.Equal(t, address, entries[0].Address)
	assert.Equal(t, "shopping", entries[0].Label)
	assert.Equal(t, "made in test", entries[0].Note)
	assert.True(t, entries[0].IsActive)

	reqs := svc.Requests()
	require.Len(t, reqs, 3)

	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/v1/hme/generate", reqs[0].Path)
	assert.Equal(t, "en-us", gjson.Get(reqs[0].Body, "langCode").String())

	assert.Equal(t, "/v1/hme/reserve", reqs[1].Path)
	assert.Equal(t, address, gjson.Get(reqs[1].Body, "hme").String())
	assert.Equal(t, "shopping", gjson.Get(reqs[1].Body, "label").String())
	assert.Equal(t, "made in test", gjson.Get(reqs[1].Body, "note").String())

	assert.Equal(t, http.MethodGet, reqs[2].Method)
	assert.Equal(t, "/v2/hme/list", reqs[2].Path)

	for _, r := range reqs {
		assert.Equal(t, testCookie, r.Header.Get("Cookie"))
		assert.Equal(t, "https://www.icloud.com", r.Header.Get("Origin"))
		assert.Equal(t, "123", r.Query["dsid"])
		assert.Equal(t, clientBuildNumber, r.Query["clientBuildNumber"])
		_, err := uuid.Parse(r.Query["clientId"])
		assert.NoError(t, err)
	}
	assert.Equal(t, reqs[0].Query["clientId"], reqs[2].Query["clientId"])
}

func TestClient_Defaults(t *testing.T) {
	svc := hmetest.NewService()
	c := newTestClient(t, svc, ClientOptions{})

	env, err := c.GenerateAlias(context.Background())
	require.NoError(t, err)
	address, _ := env.GeneratedAddress()
	_, err = c.ReserveAlias(context.Background(), address)
	require.NoError(t, err)

	reqs := svc.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "hmegen", gjson.Get(reqs[1].Body, "label").String())
	assert.True(t, gjson.Get(reqs[1].Body, "note").Exists())
}

func TestClient_FailureStatusWithJSONBody(t *testing.T) {
	svc := hmetest.NewService()
	svc.Cookie = "something else"
	c := newTestClient(t, svc, ClientOptions{})

	env, err := c.GenerateAlias(context.Background())
	require.NoError(t, err)
	assert.False(t, env.IsSuccess())
	assert.Equal(t, "Missing X-APPLE-WEBAUTH-TOKEN cookie", env.ErrorMessage())
}

func TestClient_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "html on success status", status: http.StatusOK, body: "<html></html>"},
		{name: "array on success status", status: http.StatusOK, body: "[]"},
		{name: "html on failure status", status: http.StatusBadGateway, body: "<html>bad gateway</html>", wantStatus: http.StatusBadGateway},
		{name: "empty body on failure status", status: http.StatusForbidden, body: "", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			c := newTestClient(t, handler, ClientOptions{})

			env, err := c.ListAliases(context.Background())
			assert.Nil(t, env)
			require.ErrorIs(t, err, ErrProtocol)
			assert.NotErrorIs(t, err, ErrTransport)

			var appErr apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode())
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := testConfig{serverURL: url, cookie: testCookie}
	c := NewClient(httpclient.NewClient(cfg), ClientOptions{})

	env, err := c.ReserveAlias(context.Background(), "a@icloud.com")
	assert.Nil(t, env)
	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "service unreachable", err.Error())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig{serverURL: srv.URL, cookie: testCookie, timeout: 50 * time.Millisecond}
	c := NewClient(httpclient.NewClient(cfg), ClientOptions{})

	_, err := c.GenerateAlias(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "request timed out", err.Error())
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, hmetest.NewService(), ClientOptions{})
	_, err := c.GenerateAlias(ctx)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "request cancelled", err.Error())
}

func TestValidateCredential(t *testing.T) {
	assert.NoError(t, ValidateCredential(testCookie))
	assert.ErrorIs(t, ValidateCredential(""), ErrConfiguration)
	assert.ErrorIs(t, ValidateCredential("  \t"), ErrConfiguration)
}
