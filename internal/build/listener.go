package build

import (
	"fmt"
	"io"
)

// Listener is the console of a build step: the log a CI user reads.
type Listener struct {
	w io.Writer
}

// NewListener returns a listener writing to w.
func NewListener(w io.Writer) *Listener {
	if w == nil {
		w = io.Discard
	}
	return &Listener{w: w}
}

// Printf writes one console line.
func (l *Listener) Printf(format string, args ...any) {
	fmt.Fprintf(l.w, format+"\n", args...)
}

// FatalError writes a FATAL line and returns the writer further error
// detail should go to.
func (l *Listener) FatalError(format string, args ...any) io.Writer {
	fmt.Fprintf(l.w, "FATAL: "+format+"\n", args...)
	return l.w
}
