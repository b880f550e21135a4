package document

import (
	"io"
	"net/netip"
	"time"

	"github.com/hupe1980/lexgo/codec"
	"github.com/hupe1980/lexgo/schema"
)

// FieldValue pairs a field with one of its values.
type FieldValue struct {
	Field schema.Field
	Value Value
}

// Document is an ordered list of field values. A field may appear any
// number of times.
type Document struct {
	fieldValues []FieldValue
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Add appends a value for a field.
func (d *Document) Add(field schema.Field, v Value) {
	d.fieldValues = append(d.fieldValues, FieldValue{Field: field, Value: v})
}

// AddStr appends a text value.
func (d *Document) AddStr(field schema.Field, s string) {
	d.Add(field, Str(s))
}

// AddU64 appends an unsigned integer value.
func (d *Document) AddU64(field schema.Field, v uint64) {
	d.Add(field, U64(v))
}

// AddI64 appends a signed integer value.
func (d *Document) AddI64(field schema.Field, v int64) {
	d.Add(field, I64(v))
}

// AddF64 appends a float value.
func (d *Document) AddF64(field schema.Field, v float64) {
	d.Add(field, F64(v))
}

// AddBool appends a boolean value.
func (d *Document) AddBool(field schema.Field, v bool) {
	d.Add(field, Bool(v))
}

// AddDate appends a time value.
func (d *Document) AddDate(field schema.Field, t time.Time) {
	d.Add(field, Date(t))
}

// AddBytes appends a byte payload.
func (d *Document) AddBytes(field schema.Field, b []byte) {
	d.Add(field, Bytes(b))
}

// AddIP appends an address value.
func (d *Document) AddIP(field schema.Field, addr netip.Addr) {
	d.Add(field, IP(addr))
}

// Len returns the number of field values.
func (d *Document) Len() int {
	return len(d.fieldValues)
}

// FieldValues returns the field values in insertion order. The slice
// aliases the document.
func (d *Document) FieldValues() []FieldValue {
	return d.fieldValues
}

// Get returns all values of a field in insertion order.
func (d *Document) Get(field schema.Field) []Value {
	var values []Value

	for _, fv := range d.fieldValues {
		if fv.Field == field {
			values = append(values, fv.Value)
		}
	}

	return values
}

// Serialize writes the document as a VInt count followed by its field
// values.
func (d *Document) Serialize(w io.Writer) error {
	if err := codec.WriteVInt(w, uint64(len(d.fieldValues))); err != nil {
		return err
	}

	for _, fv := range d.fieldValues {
		if err := fv.Field.Serialize(w); err != nil {
			return err
		}
		if err := fv.Value.Serialize(w); err != nil {
			return err
		}
	}

	return nil
}

// Deserialize reads a document written by Serialize.
func (d *Document) Deserialize(r io.Reader) error {
	n, err := codec.ReadVInt(r)
	if err != nil {
		return err
	}

	fieldValues := make([]FieldValue, 0, min(n, 1024))

	for i := uint64(0); i < n; i++ {
		var fv FieldValue

		if err := fv.Field.Deserialize(r); err != nil {
			return err
		}
		if err := fv.Value.Deserialize(r); err != nil {
			return err
		}

		fieldValues = append(fieldValues, fv)
	}

	d.fieldValues = fieldValues

	return nil
}
