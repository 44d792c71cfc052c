package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hmegen/hmegen/internal/common/httpclient"
	"github.com/hmegen/hmegen/internal/hme/hmetest"
	"github.com/stretchr/testify/require"
)

const testCookie = "X-APPLE-WEBAUTH-TOKEN=v=2:t=abc; X-APPLE-WEBAUTH-USER=v=1:s=0"

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// testEnv is a temporary config, cookie file and output file wired to a fake service.
type testEnv struct {
	dir        string
	configFile string
	cookieFile string
	outputFile string
	svc        *hmetest.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	e := &testEnv{
		dir:        dir,
		configFile: filepath.Join(dir, "config.yaml"),
		cookieFile: filepath.Join(dir, "cookie.txt"),
		outputFile: filepath.Join(dir, "out", "emails.txt"),
		svc:        hmetest.NewService(),
	}
	e.svc.Cookie = testCookie

	for _, k := range []string{"HME_SERVER_URL", "HME_COOKIE", "HME_COOKIE_FILE", "HME_OUTPUT_FILE",
		"HME_LABEL", "HME_NOTE", "HME_LANG_CODE", "HME_DSID", "HME_TIMEOUT", "HME_DEBUG"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfg := DefaultConfig()
	cfg.OutputFile = e.outputFile
	cfg.Label = "test-label"
	require.NoError(t, cfg.WriteConfig(e.configFile))
	require.NoError(t, os.WriteFile(e.cookieFile, []byte("// iCloud cookie\n"+testCookie+"\n"), 0o600))

	saved := newHTTPClient
	newHTTPClient = func(cfg *Config) httpclient.HTTPClientInterface {
		return httpclient.NewTestClient(cfg, e.svc)
	}
	t.Cleanup(func() { newHTTPClient = saved })
	return e
}

// run executes the command tree with the env's config and cookie file.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	rootCmd, _ := newRootCmd()
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", e.configFile, "--cookie-file", e.cookieFile}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// readAliasFile returns the non-blank lines of the output file.
func readAliasFile(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Fields(string(raw))
}
