package codec

import (
	"fmt"
	"io"
)

// The value wrapper types let primitives participate in generic composition
// (slices, pairs) the same way user-defined Serializable types do.

// U8 is a serializable uint8.
type U8 uint8

func (v U8) Serialize(w io.Writer) error { return WriteUint8(w, uint8(v)) }
func (v *U8) Deserialize(r io.Reader) error {
	x, err := ReadUint8(r)
	if err != nil {
		return err
	}
	*v = U8(x)
	return nil
}
func (U8) SizeInBytes() int { return SizeOfUint8 }

// U16 is a serializable uint16.
type U16 uint16

func (v U16) Serialize(w io.Writer) error { return WriteUint16(w, uint16(v)) }
func (v *U16) Deserialize(r io.Reader) error {
	x, err := ReadUint16(r)
	if err != nil {
		return err
	}
	*v = U16(x)
	return nil
}
func (U16) SizeInBytes() int { return SizeOfUint16 }

// U32 is a serializable uint32.
type U32 uint32

func (v U32) Serialize(w io.Writer) error { return WriteUint32(w, uint32(v)) }
func (v *U32) Deserialize(r io.Reader) error {
	x, err := ReadUint32(r)
	if err != nil {
		return err
	}
	*v = U32(x)
	return nil
}
func (U32) SizeInBytes() int { return SizeOfUint32 }

// U64 is a serializable uint64.
type U64 uint64

func (v U64) Serialize(w io.Writer) error { return WriteUint64(w, uint64(v)) }
func (v *U64) Deserialize(r io.Reader) error {
	x, err := ReadUint64(r)
	if err != nil {
		return err
	}
	*v = U64(x)
	return nil
}
func (U64) SizeInBytes() int { return SizeOfUint64 }

// U128 is a serializable 128-bit unsigned integer carried as two 64-bit
// halves.
type U128 struct {
	Lo uint64
	Hi uint64
}

func (v U128) Serialize(w io.Writer) error { return WriteUint128(w, v.Lo, v.Hi) }
func (v *U128) Deserialize(r io.Reader) error {
	lo, hi, err := ReadUint128(r)
	if err != nil {
		return err
	}
	v.Lo, v.Hi = lo, hi
	return nil
}
func (U128) SizeInBytes() int { return SizeOfUint128 }

// I64 is a serializable int64.
type I64 int64

func (v I64) Serialize(w io.Writer) error { return WriteInt64(w, int64(v)) }
func (v *I64) Deserialize(r io.Reader) error {
	x, err := ReadInt64(r)
	if err != nil {
		return err
	}
	*v = I64(x)
	return nil
}
func (I64) SizeInBytes() int { return SizeOfInt64 }

// F32 is a serializable float32.
type F32 float32

func (v F32) Serialize(w io.Writer) error { return WriteFloat32(w, float32(v)) }
func (v *F32) Deserialize(r io.Reader) error {
	x, err := ReadFloat32(r)
	if err != nil {
		return err
	}
	*v = F32(x)
	return nil
}
func (F32) SizeInBytes() int { return SizeOfFloat32 }

// F64 is a serializable float64.
type F64 float64

func (v F64) Serialize(w io.Writer) error { return WriteFloat64(w, float64(v)) }
func (v *F64) Deserialize(r io.Reader) error {
	x, err := ReadFloat64(r)
	if err != nil {
		return err
	}
	*v = F64(x)
	return nil
}
func (F64) SizeInBytes() int { return SizeOfFloat64 }

// Bool is a serializable bool encoded as a strict 0/1 byte.
type Bool bool

func (v Bool) Serialize(w io.Writer) error { return WriteBool(w, bool(v)) }
func (v *Bool) Deserialize(r io.Reader) error {
	x, err := ReadBool(r)
	if err != nil {
		return err
	}
	*v = Bool(x)
	return nil
}
func (Bool) SizeInBytes() int { return SizeOfBool }

// Str is a serializable string: VInt byte length + raw UTF-8.
type Str string

func (v Str) Serialize(w io.Writer) error { return WriteString(w, string(v)) }
func (v *Str) Deserialize(r io.Reader) error {
	s, err := ReadString(r)
	if err != nil {
		return err
	}
	*v = Str(s)
	return nil
}

// Bytes is a serializable opaque blob: VInt length + raw bytes.
type Bytes []byte

func (v Bytes) Serialize(w io.Writer) error { return WriteBytes(w, v) }
func (v *Bytes) Deserialize(r io.Reader) error {
	b, err := ReadBytes(r)
	if err != nil {
		return err
	}
	*v = b
	return nil
}

// Unit encodes to zero bytes. It serves as a placeholder value.
type Unit struct{}

func (Unit) Serialize(io.Writer) error    { return nil }
func (*Unit) Deserialize(io.Reader) error { return nil }
func (Unit) SizeInBytes() int             { return 0 }

// Pair is two values encoded back to back with no framing.
type Pair[L, R Serializable] struct {
	First  L
	Second R
}

// Serialize writes First then Second.
func (p Pair[L, R]) Serialize(w io.Writer) error {
	if err := p.First.Serialize(w); err != nil {
		return err
	}
	return p.Second.Serialize(w)
}

// Deserialize reads First then Second. Both component types must implement
// Deserializable on their pointer receiver.
func (p *Pair[L, R]) Deserialize(r io.Reader) error {
	first, ok := any(&p.First).(Deserializable)
	if !ok {
		return fmt.Errorf("codec: pair component %T is not deserializable", p.First)
	}
	if err := first.Deserialize(r); err != nil {
		return err
	}
	second, ok := any(&p.Second).(Deserializable)
	if !ok {
		return fmt.Errorf("codec: pair component %T is not deserializable", p.Second)
	}
	return second.Deserialize(r)
}

// SizeInBytes is the sum of the component sizes. A pair is fixed-size only
// when both components are; calling this on one that is not is a programming
// error and panics.
func (p Pair[L, R]) SizeInBytes() int {
	l, lok := any(p.First).(FixedSize)
	r, rok := any(p.Second).(FixedSize)
	if !lok || !rok {
		panic(fmt.Sprintf("codec: pair (%T, %T) is not fixed-size", p.First, p.Second))
	}
	return l.SizeInBytes() + r.SizeInBytes()
}

// WriteSlice writes a VInt element count followed by each element's own
// encoding, recursively.
func WriteSlice[T Serializable](w io.Writer, items []T) error {
	if err := WriteVInt(w, uint64(len(items))); err != nil {
		return err
	}
	for i := range items {
		if err := items[i].Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadSlice reads a VInt element count then that many elements of type T.
func ReadSlice[T any, PT interface {
	*T
	Deserializable
}](r io.Reader) ([]T, error) {
	n, err := ReadVInt(r)
	if err != nil {
		return nil, err
	}
	// Initial capacity is capped against corrupted counts.
	items := make([]T, 0, int(min(n, 1024)))
	for i := uint64(0); i < n; i++ {
		var item T
		if err := PT(&item).Deserialize(r); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
