package mustache

// FixedWriter is an io.Writer backed by a caller-supplied fixed-size byte
// slice. It never grows: once the slice is full, further writes fail with
// ErrNoSpaceLeft instead of silently truncating, so a caller can tell
// complete output from truncated output. It models spec.md §6's "bounded
// buffer, explicit out-of-space signal" output sink, which has no
// counterpart among bytes.Buffer-style growable sinks.
type FixedWriter struct {
	buf []byte
	n   int
}

// NewFixedWriter wraps buf as a fixed-capacity sink. Writes fill buf from
// the start; buf is never reallocated or grown.
func NewFixedWriter(buf []byte) *FixedWriter {
	return &FixedWriter{buf: buf}
}

// Write implements io.Writer. It either writes all of p or, if there isn't
// room, writes nothing and returns ErrNoSpaceLeft.
func (w *FixedWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.n {
		return 0, ErrNoSpaceLeft
	}
	copy(w.buf[w.n:], p)
	w.n += len(p)
	return len(p), nil
}

// Bytes returns the portion of the backing slice written so far.
func (w *FixedWriter) Bytes() []byte {
	return w.buf[:w.n]
}

// Len returns the number of bytes written so far.
func (w *FixedWriter) Len() int {
	return w.n
}

// RenderCString renders the template into buf, then appends a trailing NUL
// byte, matching callers that hand the result to a C-style string API. It
// fails with ErrNoSpaceLeft if buf has no room for the terminator.
func (tmpl *Template) RenderCString(buf []byte, context ...interface{}) (int, error) {
	fw := NewFixedWriter(buf)
	if err := tmpl.Frender(fw, context...); err != nil {
		return 0, err
	}
	if _, err := fw.Write([]byte{0}); err != nil {
		return 0, err
	}
	return fw.Len(), nil
}
