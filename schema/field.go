// Package schema defines field identities and per-field configuration
// shared by segment writers and readers.
package schema

import (
	"io"

	"github.com/hupe1980/lexgo/codec"
)

// Field identifies a schema field by its dense numeric id. Ids are
// assigned in declaration order and double as keys in composite files.
type Field uint32

// FieldFromID wraps a raw field id.
func FieldFromID(id uint32) Field {
	return Field(id)
}

// ID returns the raw numeric id of the field.
func (f Field) ID() uint32 {
	return uint32(f)
}

// Serialize writes the field id as a fixed-width little-endian u32.
func (f Field) Serialize(w io.Writer) error {
	return codec.WriteUint32(w, uint32(f))
}

// Deserialize reads the field id written by Serialize.
func (f *Field) Deserialize(r io.Reader) error {
	id, err := codec.ReadUint32(r)
	if err != nil {
		return err
	}

	*f = Field(id)

	return nil
}

// SizeInBytes returns the fixed wire size of a field id.
func (f Field) SizeInBytes() int {
	return codec.SizeOfUint32
}
