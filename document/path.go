package document

import "bytes"

const (
	// PathSegmentSep joins the segments of an encoded object path. It
	// never appears in UTF-8 text, so encoded paths order correctly
	// against each other.
	PathSegmentSep byte = 1

	// EndOfPath terminates an encoded path before its value. It sorts
	// below every segment separator, so a path always orders before
	// its own extensions.
	EndOfPath byte = 0
)

// PathWriter builds encoded object paths segment by segment. Pushed
// segments are joined with [PathSegmentSep]; Pop removes the most
// recently pushed segment, which makes the writer cheap to reuse while
// walking nested values.
type PathWriter struct {
	buf        []byte
	indices    []int
	expandDots bool
}

// NewPathWriter returns an empty writer. With expandDots set, dots
// inside a pushed segment split it, so "k8s.node.id" addresses the
// same path as pushing "k8s", "node" and "id" one by one.
func NewPathWriter(expandDots bool) *PathWriter {
	return &PathWriter{expandDots: expandDots}
}

// Push appends one segment.
func (p *PathWriter) Push(segment string) {
	start := len(p.buf)
	p.indices = append(p.indices, start)

	if start != 0 {
		p.buf = append(p.buf, PathSegmentSep)
		start++
	}

	p.buf = append(p.buf, segment...)

	if p.expandDots {
		appended := p.buf[start:]
		for i, b := range appended {
			if b == '.' {
				appended[i] = PathSegmentSep
			}
		}
	}
}

// Pop removes the most recently pushed segment. Popping an empty
// writer is a no-op.
func (p *PathWriter) Pop() {
	if len(p.indices) == 0 {
		return
	}

	last := len(p.indices) - 1
	p.buf = p.buf[:p.indices[last]]
	p.indices = p.indices[:last]
}

// SetEnd appends the end-of-path marker. The marker is not a segment;
// it is truncated away together with the segment pushed before it.
func (p *PathWriter) SetEnd() {
	p.buf = append(p.buf, EndOfPath)
}

// Clear resets the writer for reuse.
func (p *PathWriter) Clear() {
	p.buf = p.buf[:0]
	p.indices = p.indices[:0]
}

// Bytes returns the encoded path. The slice aliases the writer and is
// invalidated by the next mutation.
func (p *PathWriter) Bytes() []byte {
	return p.buf
}

// String returns the encoded path.
func (p *PathWriter) String() string {
	return string(p.buf)
}

// SplitPath cuts an encoded path back into its segments.
func SplitPath(path []byte) [][]byte {
	if len(path) == 0 {
		return nil
	}

	return bytes.Split(path, []byte{PathSegmentSep})
}
