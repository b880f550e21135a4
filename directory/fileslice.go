package directory

import "bytes"

// FileSlice is an immutable byte-range view of a directory entry.
// Slicing is cheap and never copies; all views share the backing
// memory, which stays valid until the owning directory is closed.
//
// Range violations are programming errors and panic like ordinary Go
// slice indexing. Untrusted offsets, such as those decoded from a file
// footer, must be validated before slicing.
type FileSlice struct {
	data []byte
}

// NewFileSlice wraps data in a FileSlice. The caller must not mutate
// data afterwards.
func NewFileSlice(data []byte) FileSlice {
	return FileSlice{data: data}
}

// Len returns the length of the slice in bytes.
func (f FileSlice) Len() int {
	return len(f.data)
}

// IsEmpty reports whether the slice has zero length.
func (f FileSlice) IsEmpty() bool {
	return len(f.data) == 0
}

// Bytes returns the underlying bytes. The result must be treated as
// read-only.
func (f FileSlice) Bytes() []byte {
	return f.data
}

// Slice returns the sub-range [from, to).
func (f FileSlice) Slice(from, to int) FileSlice {
	return FileSlice{data: f.data[from:to]}
}

// SliceFrom returns the sub-range [from, Len()).
func (f FileSlice) SliceFrom(from int) FileSlice {
	return FileSlice{data: f.data[from:]}
}

// SliceTo returns the sub-range [0, to).
func (f FileSlice) SliceTo(to int) FileSlice {
	return FileSlice{data: f.data[:to]}
}

// Split cuts the slice at the given offset and returns both halves.
func (f FileSlice) Split(at int) (left, right FileSlice) {
	return f.SliceTo(at), f.SliceFrom(at)
}

// SplitFromEnd cuts n bytes off the end and returns the remainder and
// the tail. It is how footers are peeled off container files.
func (f FileSlice) SplitFromEnd(n int) (rest, tail FileSlice) {
	return f.Split(len(f.data) - n)
}

// Reader returns a fresh reader positioned at the start of the slice.
func (f FileSlice) Reader() *bytes.Reader {
	return bytes.NewReader(f.data)
}
