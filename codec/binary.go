package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// ErrCorrupted is returned when a decoded value is structurally invalid.
// Test for it with errors.Is; the wrapping error carries the detail.
var ErrCorrupted = errors.New("data corrupted")

// Serializable is the capability to write a value's binary representation.
type Serializable interface {
	Serialize(w io.Writer) error
}

// Deserializable is the capability to read a value's binary representation.
// It is implemented on pointer receivers.
type Deserializable interface {
	Deserialize(r io.Reader) error
}

// FixedSize marks a type whose encoded form always occupies the same number
// of bytes. SizeInBytes must return a per-type constant.
type FixedSize interface {
	SizeInBytes() int
}

// Encoded sizes of the fixed-width primitives.
const (
	SizeOfUint8   = 1
	SizeOfUint16  = 2
	SizeOfUint32  = 4
	SizeOfUint64  = 8
	SizeOfUint128 = 16
	SizeOfInt64   = 8
	SizeOfFloat32 = 4
	SizeOfFloat64 = 8
	SizeOfBool    = 1
)

// NumBytes returns the encoded size of v by running its encoder into a
// counting sink.
func NumBytes(v Serializable) (uint64, error) {
	cw := NewCountingWriter(io.Discard)
	if err := v.Serialize(cw); err != nil {
		return 0, err
	}
	return cw.Count(), nil
}

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint8 reads a single byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteUint16 writes v as 2 little-endian bytes.
func WriteUint16(w io.Writer, v uint16) error {
	var buf [SizeOfUint16]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint16 reads 2 little-endian bytes.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [SizeOfUint16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// WriteUint32 writes v as 4 little-endian bytes.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [SizeOfUint32]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads 4 little-endian bytes.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [SizeOfUint32]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64 writes v as 8 little-endian bytes.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [SizeOfUint64]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads 8 little-endian bytes.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [SizeOfUint64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteUint128 writes a 128-bit value as 16 little-endian bytes, least
// significant half first. Go has no native uint128, so the value is carried
// as a (lo, hi) pair.
func WriteUint128(w io.Writer, lo, hi uint64) error {
	var buf [SizeOfUint128]byte
	binary.LittleEndian.PutUint64(buf[:8], lo)
	binary.LittleEndian.PutUint64(buf[8:], hi)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint128 reads 16 little-endian bytes as a (lo, hi) pair.
func ReadUint128(r io.Reader) (lo, hi uint64, err error) {
	var buf [SizeOfUint128]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:]), nil
}

// WriteInt64 writes v as its two's-complement bits, 8 little-endian bytes.
func WriteInt64(w io.Writer, v int64) error {
	return WriteUint64(w, uint64(v))
}

// ReadInt64 reads 8 little-endian bytes as a signed integer.
func ReadInt64(r io.Reader) (int64, error) {
	v, err := ReadUint64(r)
	return int64(v), err
}

// WriteFloat32 writes the IEEE-754 bits of v, 4 little-endian bytes.
func WriteFloat32(w io.Writer, v float32) error {
	return WriteUint32(w, math.Float32bits(v))
}

// ReadFloat32 reads 4 little-endian bytes as an IEEE-754 float.
func ReadFloat32(r io.Reader) (float32, error) {
	v, err := ReadUint32(r)
	return math.Float32frombits(v), err
}

// WriteFloat64 writes the IEEE-754 bits of v, 8 little-endian bytes.
func WriteFloat64(w io.Writer, v float64) error {
	return WriteUint64(w, math.Float64bits(v))
}

// ReadFloat64 reads 8 little-endian bytes as an IEEE-754 float.
func ReadFloat64(r io.Reader) (float64, error) {
	v, err := ReadUint64(r)
	return math.Float64frombits(v), err
}

// WriteBool writes a single byte, 1 for true and 0 for false.
func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteUint8(w, 1)
	}
	return WriteUint8(w, 0)
}

// ReadBool reads a single byte. Any value other than 0 or 1 is corruption.
func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadUint8(r)
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid bool byte 0x%02x", ErrCorrupted, b)
	}
}

// WriteString writes a VInt byte-length prefix followed by the raw UTF-8
// bytes of s.
func WriteString(w io.Writer, s string) error {
	if err := WriteVInt(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a VInt byte-length prefix and exactly that many bytes,
// which must form valid UTF-8.
func ReadString(r io.Reader) (string, error) {
	raw, err := ReadBytes(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: string is not valid utf-8", ErrCorrupted)
	}
	return string(raw), nil
}

// WriteBytes writes a VInt length prefix followed by the raw bytes.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteVInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadBytes reads a VInt length prefix and exactly that many raw bytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadVInt(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n > math.MaxInt64 {
		return nil, fmt.Errorf("%w: byte length %d out of range", ErrCorrupted, n)
	}
	// Cap the initial allocation against corrupted lengths; CopyN bounds the
	// actual read.
	buf := bytes.NewBuffer(make([]byte, 0, int(min(n, 64<<10))))
	if _, err := io.CopyN(buf, r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
