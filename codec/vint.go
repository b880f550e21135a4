package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxVIntLen is the maximum encoded length of a VInt: ten 7-bit chunks cover
// 64 bits.
const MaxVIntLen = 10

// VInt wraps a uint64 whose encoded form is a base-128 varint: the low 7
// bits of each byte carry the least-significant payload chunk first, the
// high bit flags that more bytes follow. Values up to 127 cost one byte,
// up to 16383 two bytes, doubling roughly every 7 bits.
type VInt uint64

// Val returns the wrapped value.
func (v VInt) Val() uint64 { return uint64(v) }

// Serialize implements Serializable.
func (v VInt) Serialize(w io.Writer) error { return WriteVInt(w, uint64(v)) }

// Deserialize implements Deserializable.
func (v *VInt) Deserialize(r io.Reader) error {
	x, err := ReadVInt(r)
	if err != nil {
		return err
	}
	*v = VInt(x)
	return nil
}

// WriteVInt writes v in VInt form.
func WriteVInt(w io.Writer, v uint64) error {
	var buf [MaxVIntLen]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

// AppendVInt appends the VInt form of v to dst and returns the extended
// slice.
func AppendVInt(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// VIntLen returns the encoded length of v without encoding it.
func VIntLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ReadVInt decodes a VInt from r, one byte at a time until the continuation
// bit is clear. io.EOF before the first byte is a clean end of input; a
// value cut short or overflowing 64 bits is corruption.
func ReadVInt(r io.Reader) (uint64, error) {
	var x uint64
	var s uint
	var buf [1]byte
	for i := 0; i < MaxVIntLen; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if err == io.EOF && i > 0 {
				return 0, fmt.Errorf("%w: truncated vint", ErrCorrupted)
			}
			return 0, err
		}
		b := buf[0]
		if b < 0x80 {
			if i == MaxVIntLen-1 && b > 1 {
				return 0, fmt.Errorf("%w: vint overflows 64 bits", ErrCorrupted)
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, fmt.Errorf("%w: vint longer than %d bytes", ErrCorrupted, MaxVIntLen)
}
