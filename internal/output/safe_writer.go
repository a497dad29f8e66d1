package output

import "io"

// SafeTerminalWriter sanitizes everything written through it. The logger
// writes through one, since log fields carry paths and process names.
type SafeTerminalWriter struct {
	W io.Writer
}

func (w SafeTerminalWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := io.WriteString(w.W, SanitizeTerminal(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func NewSafeTerminalWriter(w io.Writer) io.Writer {
	return SafeTerminalWriter{W: w}
}
