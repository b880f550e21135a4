package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serializeRoundTrip encodes v, decodes it into out and returns the encoded
// length.
func serializeRoundTrip(t *testing.T, v Serializable, out Deserializable) int {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, v.Serialize(&buf))
	n := buf.Len()
	require.NoError(t, out.Deserialize(&buf))
	assert.Zero(t, buf.Len(), "no residual bytes after decode")
	return n
}

func fixedSizeTest(t *testing.T, v interface {
	Serializable
	FixedSize
}, out Deserializable) {
	t.Helper()
	n := serializeRoundTrip(t, v, out)
	assert.Equal(t, v.SizeInBytes(), n)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	var (
		u8   U8
		u16  U16
		u32  U32
		u64v U64
		u128 U128
		i64v I64
		f32v F32
		f64v F64
		bv   Bool
		unit Unit
	)

	fixedSizeTest(t, U8(42), &u8)
	assert.Equal(t, U8(42), u8)

	fixedSizeTest(t, U16(0xbeef), &u16)
	assert.Equal(t, U16(0xbeef), u16)

	fixedSizeTest(t, U32(3), &u32)
	assert.Equal(t, U32(3), u32)
	fixedSizeTest(t, U32(^uint32(0)), &u32)
	assert.Equal(t, U32(^uint32(0)), u32)

	fixedSizeTest(t, U64(7_203_276_829_773_302), &u64v)
	assert.Equal(t, U64(7_203_276_829_773_302), u64v)

	fixedSizeTest(t, U128{Lo: 1, Hi: ^uint64(0)}, &u128)
	assert.Equal(t, U128{Lo: 1, Hi: ^uint64(0)}, u128)

	fixedSizeTest(t, I64(-7_235_439), &i64v)
	assert.Equal(t, I64(-7_235_439), i64v)

	fixedSizeTest(t, F32(-4.5), &f32v)
	assert.Equal(t, F32(-4.5), f32v)

	fixedSizeTest(t, F64(3.14159), &f64v)
	assert.Equal(t, F64(3.14159), f64v)

	fixedSizeTest(t, Bool(true), &bv)
	assert.Equal(t, Bool(true), bv)
	fixedSizeTest(t, Bool(false), &bv)
	assert.Equal(t, Bool(false), bv)

	fixedSizeTest(t, Unit{}, &unit)
}

func TestLittleEndianLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint32(&buf, 0x0a0b0c0d))
	assert.Equal(t, []byte{0x0d, 0x0c, 0x0b, 0x0a}, buf.Bytes())

	buf.Reset()
	require.NoError(t, WriteUint128(&buf, 1, 2))
	want := append([]byte{1, 0, 0, 0, 0, 0, 0, 0}, 2, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, want, buf.Bytes())
}

func TestBoolRejectsGarbageByte(t *testing.T) {
	for b := 2; b < 256; b += 25 {
		_, err := ReadBool(bytes.NewReader([]byte{byte(b)}))
		require.ErrorIs(t, err, ErrCorrupted)
	}
}

func TestStringRoundTrip(t *testing.T) {
	var s Str
	n := serializeRoundTrip(t, Str("abcdef"), &s)
	assert.Equal(t, Str("abcdef"), s)
	assert.Equal(t, 1+6, n)

	// Multi-byte code points count in bytes, not runes.
	n = serializeRoundTrip(t, Str("ぽよぽよ"), &s)
	assert.Equal(t, Str("ぽよぽよ"), s)
	assert.Equal(t, 1+3*4, n)

	n = serializeRoundTrip(t, Str(""), &s)
	assert.Equal(t, Str(""), s)
	assert.Equal(t, 1, n)
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	raw := []byte{2, 0xff, 0xfe}
	_, err := ReadString(bytes.NewReader(raw))
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestStringTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "hello"))
	raw := buf.Bytes()[:3]

	_, err := ReadString(bytes.NewReader(raw))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBytesRoundTrip(t *testing.T) {
	var b Bytes
	serializeRoundTrip(t, Bytes{0, 1, 2, 250}, &b)
	assert.Equal(t, Bytes{0, 1, 2, 250}, b)

	serializeRoundTrip(t, Bytes{}, &b)
	assert.Empty(t, b)
}

func TestSliceRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := []VInt{1, 127, 128, 32431123}
	require.NoError(t, WriteSlice(&buf, in))

	out, err := ReadSlice[VInt](&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Zero(t, buf.Len())

	buf.Reset()
	strs := []Str{"one", "", "ぽよ"}
	require.NoError(t, WriteSlice(&buf, strs))
	outStrs, err := ReadSlice[Str](&buf)
	require.NoError(t, err)
	assert.Equal(t, strs, outStrs)
}

func TestSliceTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSlice(&buf, []U32{1, 2, 3}))
	raw := buf.Bytes()[:buf.Len()-2]

	_, err := ReadSlice[U32](bytes.NewReader(raw))
	require.Error(t, err)
}

func TestPair(t *testing.T) {
	p := Pair[U32, U64]{First: 7, Second: 9}
	assert.Equal(t, SizeOfUint32+SizeOfUint64, p.SizeInBytes())

	var out Pair[U32, U64]
	n := serializeRoundTrip(t, p, &out)
	assert.Equal(t, p, out)
	assert.Equal(t, p.SizeInBytes(), n)

	// Mixed pair: variable-length first component.
	vp := Pair[VInt, U32]{First: 300, Second: 11}
	var vout Pair[VInt, U32]
	serializeRoundTrip(t, vp, &vout)
	assert.Equal(t, vp, vout)
	assert.Panics(t, func() { _ = vp.SizeInBytes() })
}

func TestNumBytes(t *testing.T) {
	n, err := NumBytes(VInt(300))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	n, err = NumBytes(Str("ぽよぽよ"))
	require.NoError(t, err)
	assert.Equal(t, uint64(13), n)

	n, err = NumBytes(Unit{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReadBytesHugeLengthDoesNotAllocate(t *testing.T) {
	// A length prefix claiming ~16 EiB followed by two bytes must fail on
	// the bounded read, not exhaust memory.
	raw := AppendVInt(nil, 1<<60)
	raw = append(raw, 0x01, 0x02)

	_, err := ReadBytes(bytes.NewReader(raw))
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}
