package cli

import (
	"io"
	"sync"

	"github.com/hmegen/hmegen/internal/hme"
)

// consoleReporter prints per-alias progress notices. Units of a chunk report
// concurrently, so writes are serialized.
type consoleReporter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ hme.Reporter = (*consoleReporter)(nil)

func newConsoleReporter(w io.Writer) *consoleReporter {
	return &consoleReporter{w: w}
}

func (r *consoleReporter) Generated(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	okLabel.Fprintf(r.w, "[50%%] %q - Generated\n", address)
}

func (r *consoleReporter) Reserved(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	okLabel.Fprintf(r.w, "[100%%] %q - Reserved\n", address)
}

func (r *consoleReporter) Failed(stage hme.Stage, address, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stage == hme.StageGenerate {
		errorLabel.Fprintf(r.w, "[ERR] Failed to generate. Reason: %s\n", reason)
		return
	}
	errorLabel.Fprintf(r.w, "[ERR] %q - Failed to reserve. Reason: %s\n", address, reason)
}
