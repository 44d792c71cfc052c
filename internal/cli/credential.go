package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hmegen/hmegen/internal/hme"
)

// LoadCredential reads the session cookie from path: the first non-blank line that is
// not a // comment.
func LoadCredential(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", hme.ErrConfiguration.Msg(fmt.Sprintf("no %q file found", path))
		}
		return "", hme.ErrConfiguration.MsgErr(fmt.Sprintf("unable to read %q", path), err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		return line, nil
	}
	if err := s.Err(); err != nil {
		return "", hme.ErrConfiguration.MsgErr(fmt.Sprintf("unable to read %q", path), err)
	}
	return "", hme.ErrConfiguration.Msg(fmt.Sprintf("the %q file is empty", path))
}

// resolveCredential fills cfg.Cookie from the cookie file unless it was already set
// through HME_COOKIE.
func resolveCredential(cfg *Config) error {
	if strings.TrimSpace(cfg.Cookie) == "" {
		cookie, err := LoadCredential(cfg.CookieFile)
		if err != nil {
			return err
		}
		cfg.Cookie = cookie
	}
	return hme.ValidateCredential(cfg.Cookie)
}

// printCredentialHelp explains how to obtain the cookie after a configuration failure.
func printCredentialHelp(w io.Writer, cfg *Config, err error) {
	errorLabel.Fprintf(w, "[ERR] %v\n", err)
	fmt.Fprintf(w, "Log into https://www.icloud.com, copy the request cookie of any call to\n")
	fmt.Fprintf(w, "%s and paste it on the first line of %q\n", cfg.ServerURL, cfg.CookieFile)
	fmt.Fprintf(w, "(or export it as HME_COOKIE).\n")
}
