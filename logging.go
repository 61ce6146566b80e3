package synth

import (
	"io"

	"github.com/charmbracelet/log"
)

// logger is the package-ambient structured logger. It defaults to
// discarding everything so importing this package is silent unless a host
// application opts in with SetLogger, mirroring how most libraries in this
// corpus keep logging off by default and let the binary wire it up.
var logger = log.NewWithOptions(io.Discard, log.Options{})

// SetLogger installs l as the package-wide logger, used for diagnostics
// that don't fit the error-return path. The only such diagnostic is a MIDI
// callback panic that Manager recovers and isolates; Tee and MultitapDelay
// log nothing.
func SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	logger = l
}
