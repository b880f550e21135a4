package codec

import "io"

// CountingWriter wraps a writer and tracks the number of bytes written
// through it. The composite file writer records field offsets from the
// running count; NumBytes runs encoders into one over io.Discard.
type CountingWriter struct {
	w io.Writer
	n uint64
}

// NewCountingWriter wraps w.
func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{w: w}
}

// Write implements io.Writer.
func (cw *CountingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += uint64(n)
	return n, err
}

// Count returns the total number of bytes written so far.
func (cw *CountingWriter) Count() uint64 { return cw.n }
