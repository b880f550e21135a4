package block

import "io"

// DefaultBlockSize is the amount of raw data buffered before a frame is
// cut. Small enough that a point read decompresses quickly, large
// enough that compression has material to work with.
const DefaultBlockSize = 16 << 10

// Writer buffers raw data and emits framed blocks to an underlying
// writer.
type Writer struct {
	w         io.Writer
	comp      Compression
	blockSize int
	buf       []byte
	scratch   []byte
	written   int64
}

// NewWriter creates a block writer. A blockSize of zero or less selects
// DefaultBlockSize.
func NewWriter(w io.Writer, comp Compression, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	return &Writer{
		w:         w,
		comp:      comp,
		blockSize: blockSize,
		buf:       make([]byte, 0, blockSize),
	}
}

// Write buffers p, cutting frames whenever a full block accumulates.
func (w *Writer) Write(p []byte) (int, error) {
	total := 0

	for len(p) > 0 {
		space := w.blockSize - len(w.buf)
		if space == 0 {
			if err := w.Flush(); err != nil {
				return total, err
			}

			space = w.blockSize
		}

		n := min(len(p), space)
		w.buf = append(w.buf, p[:n]...)
		p = p[n:]
		total += n
	}

	return total, nil
}

// Flush cuts a frame from the buffered data. Flushing an empty buffer
// is a no-op, so trailing callers cannot produce empty frames.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	frame, err := Compress(w.scratch[:0], w.buf, w.comp)
	if err != nil {
		return err
	}

	w.scratch = frame

	n, err := w.w.Write(frame)
	w.written += int64(n)

	if err != nil {
		return err
	}

	w.buf = w.buf[:0]

	return nil
}

// BytesWritten returns the framed bytes emitted so far. Buffered data
// does not count until it is flushed.
func (w *Writer) BytesWritten() int64 {
	return w.written
}
