package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCountingWriter(&buf)
	assert.Zero(t, cw.Count())

	require.NoError(t, WriteUint32(cw, 1))
	assert.Equal(t, uint64(4), cw.Count())

	require.NoError(t, WriteVInt(cw, 128))
	assert.Equal(t, uint64(6), cw.Count())
	assert.Equal(t, 6, buf.Len())
}

func TestCountingWriterOverDiscard(t *testing.T) {
	cw := NewCountingWriter(io.Discard)
	require.NoError(t, WriteString(cw, "hello"))
	assert.Equal(t, uint64(6), cw.Count())
}
