package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileSliceOps(t *testing.T) {
	fs := NewFileSlice([]byte("0123456789"))

	assert.Equal(t, 10, fs.Len())
	assert.False(t, fs.IsEmpty())

	assert.Equal(t, "234", string(fs.Slice(2, 5).Bytes()))
	assert.Equal(t, "789", string(fs.SliceFrom(7).Bytes()))
	assert.Equal(t, "01", string(fs.SliceTo(2).Bytes()))

	left, right := fs.Split(4)
	assert.Equal(t, "0123", string(left.Bytes()))
	assert.Equal(t, "456789", string(right.Bytes()))

	rest, tail := fs.SplitFromEnd(4)
	assert.Equal(t, "012345", string(rest.Bytes()))
	assert.Equal(t, "6789", string(tail.Bytes()))

	empty := NewFileSlice(nil)
	assert.True(t, empty.IsEmpty())
	assert.Zero(t, empty.Len())
}

func TestFileSliceReader(t *testing.T) {
	fs := NewFileSlice([]byte("abc"))

	r := fs.Reader()
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", string(buf))

	// Each call returns an independent reader.
	r2 := fs.Reader()
	assert.Equal(t, 3, r2.Len())
}
