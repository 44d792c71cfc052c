// Package aliasfile appends reserved aliases to a plain text file, one per line.
package aliasfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is used when no output file is configured.
const DefaultPath = "emails.txt"

// Append adds aliases to the end of the file at path, creating the file and its
// directory if needed. Nothing is written for an empty slice.
func Append(path string, aliases []string) error {
	if len(aliases) == 0 {
		return nil
	}
	if path == "" {
		path = DefaultPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, a := range aliases {
		if _, err := w.WriteString(a + "\n"); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return f.Close()
}
