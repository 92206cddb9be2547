package moqtdeps

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the setup-time failure classes. Per-cell build
// failures are reported as *ToolError instead.
var (
	ErrConfigMissing = errors.New("required configuration missing")
	ErrManifest      = errors.New("manifest error")
)

// ToolError records a failed external command together with the tail of
// its captured output, so the failing cell can be identified from the
// summary without digging through scrollback.
type ToolError struct {
	Tool   string
	Args   []string
	Dir    string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	if e.Dir != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, e.Dir)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = msg + "\n" + out
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
