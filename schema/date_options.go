package schema

import (
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"
)

// DatePrecision is the storage precision of a date field. Coarser
// precisions compress better in columnar storage.
type DatePrecision string

const (
	// PrecisionSeconds is the default precision.
	PrecisionSeconds DatePrecision = "seconds"
	PrecisionMillis  DatePrecision = "milliseconds"
	PrecisionMicros  DatePrecision = "microseconds"
	PrecisionNanos   DatePrecision = "nanoseconds"
)

// IndexedDatePrecision is the fixed precision of indexed date values.
// Only the columnar storage precision is configurable.
const IndexedDatePrecision = PrecisionSeconds

// Truncate rounds t down to the precision.
func (p DatePrecision) Truncate(t time.Time) time.Time {
	switch p {
	case PrecisionMillis:
		return t.Truncate(time.Millisecond)
	case PrecisionMicros:
		return t.Truncate(time.Microsecond)
	case PrecisionNanos:
		return t
	default:
		return t.Truncate(time.Second)
	}
}

// UnmarshalJSON rejects unknown precision names.
func (p *DatePrecision) UnmarshalJSON(data []byte) error {
	var s string
	if err := gojson.Unmarshal(data, &s); err != nil {
		return err
	}

	switch DatePrecision(s) {
	case PrecisionSeconds, PrecisionMillis, PrecisionMicros, PrecisionNanos:
		*p = DatePrecision(s)
		return nil
	default:
		return fmt.Errorf("schema: unknown date precision %q", s)
	}
}

// DateOptions defines how a date field is handled.
//
// The zero value is a valid configuration: not indexed, not stored, not
// fast, second precision. Options are assembled builder style:
//
//	opts := schema.DateOptions{}.SetStored().SetFast()
type DateOptions struct {
	Indexed    bool `json:"indexed"`
	Fieldnorms bool `json:"fieldnorms"`
	Fast       bool `json:"fast"`
	Stored     bool `json:"stored"`

	// Precision is the columnar storage precision. Empty means
	// seconds.
	Precision DatePrecision `json:"precision,omitempty"`
}

// IsStored reports whether values are persisted in the document store.
func (o DateOptions) IsStored() bool {
	return o.Stored
}

// IsIndexed reports whether values are searchable.
func (o DateOptions) IsIndexed() bool {
	return o.Indexed
}

// HasFieldnorms reports whether fieldnorm data is kept. Fieldnorms only
// exist for indexed fields.
func (o DateOptions) HasFieldnorms() bool {
	return o.Fieldnorms && o.Indexed
}

// IsFast reports whether values get a columnar fast field.
func (o DateOptions) IsFast() bool {
	return o.Fast
}

// GetPrecision returns the storage precision, defaulting to seconds.
func (o DateOptions) GetPrecision() DatePrecision {
	if o.Precision == "" {
		return PrecisionSeconds
	}

	return o.Precision
}

// SetStored marks values as persisted in the document store.
func (o DateOptions) SetStored() DateOptions {
	o.Stored = true
	return o
}

// SetIndexed marks values as searchable.
func (o DateOptions) SetIndexed() DateOptions {
	o.Indexed = true
	return o
}

// SetFieldnorm keeps fieldnorm data for the field.
func (o DateOptions) SetFieldnorm() DateOptions {
	o.Fieldnorms = true
	return o
}

// SetFast gives values a columnar fast field.
func (o DateOptions) SetFast() DateOptions {
	o.Fast = true
	return o
}

// SetPrecision sets the columnar storage precision.
func (o DateOptions) SetPrecision(p DatePrecision) DateOptions {
	o.Precision = p
	return o
}

// Or merges two option sets. Flags are combined; the receiver's
// precision wins.
func (o DateOptions) Or(other DateOptions) DateOptions {
	return DateOptions{
		Indexed:    o.Indexed || other.Indexed,
		Fieldnorms: o.Fieldnorms || other.Fieldnorms,
		Fast:       o.Fast || other.Fast,
		Stored:     o.Stored || other.Stored,
		Precision:  o.Precision,
	}
}
