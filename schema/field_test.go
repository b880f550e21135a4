package schema

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSerialization(t *testing.T) {
	var buf bytes.Buffer

	f := FieldFromID(0x0a0b0c0d)
	require.NoError(t, f.Serialize(&buf))

	assert.Equal(t, []byte{0x0d, 0x0c, 0x0b, 0x0a}, buf.Bytes())
	assert.Equal(t, 4, f.SizeInBytes())

	var back Field
	require.NoError(t, back.Deserialize(&buf))
	assert.Equal(t, f, back)
	assert.Equal(t, uint32(0x0a0b0c0d), back.ID())
}
