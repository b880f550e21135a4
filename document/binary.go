package document

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net/netip"
	"time"

	"github.com/hupe1980/lexgo/codec"
)

// Wire codes of the value variants. The code is a single leading byte,
// followed by the variant payload.
const (
	codeNull   uint8 = 0
	codeStr    uint8 = 1
	codeU64    uint8 = 2
	codeI64    uint8 = 3
	codeF64    uint8 = 4
	codeBool   uint8 = 5
	codeDate   uint8 = 6
	codeBytes  uint8 = 7
	codeIP     uint8 = 8
	codeArray  uint8 = 9
	codeObject uint8 = 10
)

// maxValueDepth bounds the nesting of arrays and objects while
// decoding. Honest documents stay far below it; corrupt input must not
// be able to exhaust the stack.
const maxValueDepth = 128

// Serialize writes the value in its binary form. Dates are stored as
// nanoseconds since the Unix epoch, addresses as a little-endian u128
// of the IPv6 bits. Arrays and objects carry a VInt length followed by
// their elements.
func (v Value) Serialize(w io.Writer) error {
	if err := codec.WriteUint8(w, valueCode(v.typ)); err != nil {
		return err
	}

	switch v.typ {
	case TypeNull:
		return nil
	case TypeStr:
		return codec.WriteString(w, v.str)
	case TypeU64:
		return codec.WriteUint64(w, v.num)
	case TypeI64:
		return codec.WriteInt64(w, int64(v.num))
	case TypeF64:
		return codec.WriteFloat64(w, math.Float64frombits(v.num))
	case TypeBool:
		return codec.WriteBool(w, v.num == 1)
	case TypeDate:
		return codec.WriteInt64(w, v.date.UnixNano())
	case TypeBytes:
		return codec.WriteBytes(w, v.bytes)
	case TypeIP:
		b := v.ip.As16()
		lo := binary.BigEndian.Uint64(b[8:])
		hi := binary.BigEndian.Uint64(b[:8])

		return codec.WriteUint128(w, lo, hi)
	case TypeArray:
		if err := codec.WriteVInt(w, uint64(len(v.arr))); err != nil {
			return err
		}
		for _, elem := range v.arr {
			if err := elem.Serialize(w); err != nil {
				return err
			}
		}

		return nil
	case TypeObject:
		if err := codec.WriteVInt(w, uint64(len(v.obj))); err != nil {
			return err
		}
		for _, entry := range v.obj {
			if err := codec.WriteString(w, entry.Key); err != nil {
				return err
			}
			if err := entry.Value.Serialize(w); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("document: cannot serialize value type %d", v.typ)
	}
}

// Deserialize reads a value in its binary form. Structurally invalid
// input yields an error wrapping [codec.ErrCorrupted].
func (v *Value) Deserialize(r io.Reader) error {
	parsed, err := deserializeValue(r, 0)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

func deserializeValue(r io.Reader, depth int) (Value, error) {
	if depth > maxValueDepth {
		return Value{}, fmt.Errorf("%w: value nesting exceeds %d levels", codec.ErrCorrupted, maxValueDepth)
	}

	code, err := codec.ReadUint8(r)
	if err != nil {
		return Value{}, err
	}

	switch code {
	case codeNull:
		return Null(), nil
	case codeStr:
		s, err := codec.ReadString(r)
		if err != nil {
			return Value{}, err
		}

		return Str(s), nil
	case codeU64:
		n, err := codec.ReadUint64(r)
		if err != nil {
			return Value{}, err
		}

		return U64(n), nil
	case codeI64:
		n, err := codec.ReadInt64(r)
		if err != nil {
			return Value{}, err
		}

		return I64(n), nil
	case codeF64:
		f, err := codec.ReadFloat64(r)
		if err != nil {
			return Value{}, err
		}

		return F64(f), nil
	case codeBool:
		b, err := codec.ReadBool(r)
		if err != nil {
			return Value{}, err
		}

		return Bool(b), nil
	case codeDate:
		nanos, err := codec.ReadInt64(r)
		if err != nil {
			return Value{}, err
		}

		return Date(time.Unix(0, nanos).UTC()), nil
	case codeBytes:
		b, err := codec.ReadBytes(r)
		if err != nil {
			return Value{}, err
		}

		return Bytes(b), nil
	case codeIP:
		lo, hi, err := codec.ReadUint128(r)
		if err != nil {
			return Value{}, err
		}

		var b [16]byte
		binary.BigEndian.PutUint64(b[:8], hi)
		binary.BigEndian.PutUint64(b[8:], lo)

		return IP(netip.AddrFrom16(b)), nil
	case codeArray:
		n, err := codec.ReadVInt(r)
		if err != nil {
			return Value{}, err
		}

		elems := make([]Value, 0, min(n, 1024))
		for i := uint64(0); i < n; i++ {
			elem, err := deserializeValue(r, depth+1)
			if err != nil {
				return Value{}, err
			}

			elems = append(elems, elem)
		}

		return Array(elems...), nil
	case codeObject:
		n, err := codec.ReadVInt(r)
		if err != nil {
			return Value{}, err
		}

		entries := make([]Entry, 0, min(n, 1024))
		for i := uint64(0); i < n; i++ {
			key, err := codec.ReadString(r)
			if err != nil {
				return Value{}, err
			}

			elem, err := deserializeValue(r, depth+1)
			if err != nil {
				return Value{}, err
			}

			entries = append(entries, Entry{Key: key, Value: elem})
		}

		return Object(entries...), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown value type code 0x%02x", codec.ErrCorrupted, code)
	}
}

func valueCode(t ValueType) uint8 {
	switch t {
	case TypeNull:
		return codeNull
	case TypeStr:
		return codeStr
	case TypeU64:
		return codeU64
	case TypeI64:
		return codeI64
	case TypeF64:
		return codeF64
	case TypeBool:
		return codeBool
	case TypeDate:
		return codeDate
	case TypeBytes:
		return codeBytes
	case TypeIP:
		return codeIP
	case TypeArray:
		return codeArray
	case TypeObject:
		return codeObject
	default:
		panic(fmt.Sprintf("document: unknown value type %d", t))
	}
}
