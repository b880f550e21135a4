// Package document models schema-free document values and their
// serialized forms.
//
// A [Value] is a tagged union over the supported leaf types plus arrays
// and objects. Objects keep their key order; two documents that differ
// only in key order are different documents.
package document

import (
	"bytes"
	"math"
	"net/netip"
	"time"
)

// ValueType discriminates the variants of a Value.
type ValueType uint8

const (
	TypeNull ValueType = iota
	TypeStr
	TypeU64
	TypeI64
	TypeF64
	TypeBool
	TypeDate
	TypeBytes
	TypeIP
	TypeArray
	TypeObject
)

// Entry is one key/value pair of an object value.
type Entry struct {
	Key   string
	Value Value
}

// Value is a dynamic field value. The zero value is the null value.
type Value struct {
	typ   ValueType
	num   uint64
	str   string
	bytes []byte
	date  time.Time
	ip    netip.Addr
	arr   []Value
	obj   []Entry
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Str wraps a text value.
func Str(s string) Value {
	return Value{typ: TypeStr, str: s}
}

// U64 wraps an unsigned integer.
func U64(v uint64) Value {
	return Value{typ: TypeU64, num: v}
}

// I64 wraps a signed integer.
func I64(v int64) Value {
	return Value{typ: TypeI64, num: uint64(v)}
}

// F64 wraps a float.
func F64(v float64) Value {
	return Value{typ: TypeF64, num: math.Float64bits(v)}
}

// Bool wraps a boolean.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}

	return Value{typ: TypeBool, num: n}
}

// Date wraps a point in time with nanosecond precision.
func Date(t time.Time) Value {
	return Value{typ: TypeDate, date: t}
}

// Bytes wraps an arbitrary byte payload.
func Bytes(b []byte) Value {
	return Value{typ: TypeBytes, bytes: b}
}

// IP wraps an address. IPv4 addresses are stored in their v4-mapped
// IPv6 form; there is no separate v4 variant.
func IP(addr netip.Addr) Value {
	return Value{typ: TypeIP, ip: netip.AddrFrom16(addr.As16())}
}

// Array wraps a list of values.
func Array(elems ...Value) Value {
	return Value{typ: TypeArray, arr: elems}
}

// Object wraps an ordered list of key/value pairs.
func Object(entries ...Entry) Value {
	return Value{typ: TypeObject, obj: entries}
}

// Type returns the variant of the value.
func (v Value) Type() ValueType {
	return v.typ
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.typ == TypeNull
}

// Str returns the text payload.
func (v Value) Str() (string, bool) {
	return v.str, v.typ == TypeStr
}

// U64 returns the unsigned integer payload.
func (v Value) U64() (uint64, bool) {
	return v.num, v.typ == TypeU64
}

// I64 returns the signed integer payload.
func (v Value) I64() (int64, bool) {
	return int64(v.num), v.typ == TypeI64
}

// F64 returns the float payload.
func (v Value) F64() (float64, bool) {
	return math.Float64frombits(v.num), v.typ == TypeF64
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	return v.num == 1, v.typ == TypeBool
}

// Date returns the time payload.
func (v Value) Date() (time.Time, bool) {
	return v.date, v.typ == TypeDate
}

// Bytes returns the byte payload.
func (v Value) Bytes() ([]byte, bool) {
	return v.bytes, v.typ == TypeBytes
}

// IP returns the address payload in v4-mapped IPv6 form.
func (v Value) IP() (netip.Addr, bool) {
	return v.ip, v.typ == TypeIP
}

// Array returns the element list.
func (v Value) Array() ([]Value, bool) {
	return v.arr, v.typ == TypeArray
}

// Object returns the ordered key/value pairs.
func (v Value) Object() ([]Entry, bool) {
	return v.obj, v.typ == TypeObject
}

// Equal reports deep equality. Floats compare by bit pattern, so NaN
// equals NaN.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}

	switch v.typ {
	case TypeNull:
		return true
	case TypeStr:
		return v.str == o.str
	case TypeU64, TypeI64, TypeF64, TypeBool:
		return v.num == o.num
	case TypeDate:
		return v.date.Equal(o.date)
	case TypeBytes:
		return bytes.Equal(v.bytes, o.bytes)
	case TypeIP:
		return v.ip == o.ip
	case TypeArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}

		return true
	case TypeObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for i := range v.obj {
			if v.obj[i].Key != o.obj[i].Key || !v.obj[i].Value.Equal(o.obj[i].Value) {
				return false
			}
		}

		return true
	default:
		return false
	}
}
