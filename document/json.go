package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
)

// MarshalJSON renders the value as plain JSON. Dates become RFC 3339
// strings in UTC, byte payloads become standard base64 strings and
// v4-mapped addresses are rendered in their dotted IPv4 form. Object
// keys keep their stored order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeNull:
		return []byte("null"), nil
	case TypeStr:
		return gojson.Marshal(v.str)
	case TypeU64:
		return gojson.Marshal(v.num)
	case TypeI64:
		return gojson.Marshal(int64(v.num))
	case TypeF64:
		return gojson.Marshal(math.Float64frombits(v.num))
	case TypeBool:
		return gojson.Marshal(v.num == 1)
	case TypeDate:
		return gojson.Marshal(v.date.UTC().Format(time.RFC3339Nano))
	case TypeBytes:
		return gojson.Marshal(base64.StdEncoding.EncodeToString(v.bytes))
	case TypeIP:
		return gojson.Marshal(v.ip.Unmap().String())
	case TypeArray:
		var buf bytes.Buffer

		buf.WriteByte('[')

		for i, elem := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}

			data, err := elem.MarshalJSON()
			if err != nil {
				return nil, err
			}

			buf.Write(data)
		}

		buf.WriteByte(']')

		return buf.Bytes(), nil
	case TypeObject:
		var buf bytes.Buffer

		buf.WriteByte('{')

		for i, entry := range v.obj {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := gojson.Marshal(entry.Key)
			if err != nil {
				return nil, err
			}

			buf.Write(key)
			buf.WriteByte(':')

			data, err := entry.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}

			buf.Write(data)
		}

		buf.WriteByte('}')

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("document: cannot marshal value type %d", v.typ)
	}
}

// UnmarshalJSON parses plain JSON into a value. Strings stay strings,
// there is no date or base64 sniffing. Non-negative integers become
// u64, negative integers i64 and anything with a fraction or exponent
// f64. Object key order is preserved.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	parsed, err := decodeJSONValue(dec)
	if err != nil {
		return fmt.Errorf("document: %w", err)
	}

	*v = parsed

	return nil
}

func decodeJSONValue(dec *gojson.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *gojson.Decoder, tok gojson.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case gojson.Number:
		return decodeJSONNumber(t)
	case gojson.Delim:
		switch t {
		case '[':
			var elems []Value

			for dec.More() {
				elem, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}

				elems = append(elems, elem)
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return Array(elems...), nil
		case '{':
			var entries []Entry

			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}

				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key %v is not a string", keyTok)
				}

				elem, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}

				entries = append(entries, Entry{Key: key, Value: elem})
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return Object(entries...), nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeJSONNumber(n gojson.Number) (Value, error) {
	s := n.String()

	if strings.ContainsAny(s, ".eE") {
		f, err := n.Float64()
		if err != nil {
			return Value{}, err
		}

		return F64(f), nil
	}

	if strings.HasPrefix(s, "-") {
		i, err := n.Int64()
		if err != nil {
			return Value{}, err
		}

		return I64(i), nil
	}

	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Value{}, err
	}

	return U64(u), nil
}
