package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hmegen/hmegen/internal/hme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredential(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr string
	}{
		{
			name:    "single line",
			content: "X-APPLE-WEBAUTH-TOKEN=abc",
			want:    "X-APPLE-WEBAUTH-TOKEN=abc",
		},
		{
			name:    "comments and blanks skipped",
			content: "// paste the cookie below\n\n  X-APPLE-WEBAUTH-TOKEN=abc  \nsecond line\n",
			want:    "X-APPLE-WEBAUTH-TOKEN=abc",
		},
		{
			name:    "only comments",
			content: "// nothing here\n   // still nothing\n",
			wantErr: "is empty",
		},
		{
			name:    "empty file",
			content: "",
			wantErr: "is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cookie.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			got, err := LoadCredential(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, hme.ErrConfiguration))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCredential_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie.txt")

	_, err := LoadCredential(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hme.ErrConfiguration))
	assert.Contains(t, err.Error(), "file found")
}

func TestResolveCredential(t *testing.T) {
	dir := t.TempDir()
	cookieFile := filepath.Join(dir, "cookie.txt")
	require.NoError(t, os.WriteFile(cookieFile, []byte("from-file\n"), 0o600))

	cfg := DefaultConfig()
	cfg.CookieFile = cookieFile
	require.NoError(t, resolveCredential(cfg))
	assert.Equal(t, "from-file", cfg.GetSessionCredential())

	cfg = DefaultConfig()
	cfg.CookieFile = filepath.Join(dir, "missing.txt")
	cfg.Cookie = "from-env"
	require.NoError(t, resolveCredential(cfg))
	assert.Equal(t, "from-env", cfg.GetSessionCredential())

	cfg = DefaultConfig()
	cfg.CookieFile = filepath.Join(dir, "missing.txt")
	err := resolveCredential(cfg)
	assert.True(t, errors.Is(err, hme.ErrConfiguration))
}
