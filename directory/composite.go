package directory

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/lexgo/codec"
	"github.com/hupe1980/lexgo/schema"
)

// fileAddr keys one virtual file inside a composite container. A field
// may own several virtual files distinguished by idx.
type fileAddr struct {
	field schema.Field
	idx   int
}

func (fa fileAddr) serialize(w io.Writer) error {
	if err := fa.field.Serialize(w); err != nil {
		return err
	}

	return codec.WriteVInt(w, uint64(fa.idx))
}

func readFileAddr(r io.Reader) (fileAddr, error) {
	var field schema.Field
	if err := field.Deserialize(r); err != nil {
		return fileAddr{}, err
	}

	idx, err := codec.ReadVInt(r)
	if err != nil {
		return fileAddr{}, err
	}

	return fileAddr{field: field, idx: int(idx)}, nil
}

type compositeEntry struct {
	addr   fileAddr
	offset uint64
}

// CompositeWriter packs the per-field blocks of a segment into a single
// directory entry. Fields are written strictly one after another: each
// ForField call ends the previous virtual file and starts the next one.
// Close appends a footer describing where every virtual file starts, so
// the container can be taken apart again without touching the payload.
type CompositeWriter struct {
	w       *codec.CountingWriter
	inner   TerminatingWriter
	entries []compositeEntry
}

// NewCompositeWriter wraps w. The caller must finish with Close, which
// also terminates w.
func NewCompositeWriter(w TerminatingWriter) *CompositeWriter {
	return &CompositeWriter{
		w:     codec.NewCountingWriter(w),
		inner: w,
	}
}

// ForField starts the virtual file of field at index 0 and returns the
// writer to fill it with.
func (cw *CompositeWriter) ForField(field schema.Field) io.Writer {
	return cw.ForFieldWithIdx(field, 0)
}

// ForFieldWithIdx starts the virtual file (field, idx). Opening the
// same pair twice is a programming error and panics.
func (cw *CompositeWriter) ForFieldWithIdx(field schema.Field, idx int) io.Writer {
	addr := fileAddr{field: field, idx: idx}
	for _, e := range cw.entries {
		if e.addr == addr {
			panic(fmt.Sprintf("directory: virtual file (field %d, idx %d) opened twice", field.ID(), idx))
		}
	}

	cw.entries = append(cw.entries, compositeEntry{addr: addr, offset: cw.w.Count()})

	return cw.w
}

// BytesWritten returns the number of payload bytes written so far,
// excluding the footer.
func (cw *CompositeWriter) BytesWritten() uint64 {
	return cw.w.Count()
}

// Close writes the footer and terminates the underlying writer. The
// footer holds the entry count, then per entry the delta-encoded start
// offset and its address, and finally the footer length as a fixed u32
// so readers can locate it from the end of the file.
func (cw *CompositeWriter) Close() error {
	footerStart := cw.w.Count()

	if err := codec.WriteVInt(cw.w, uint64(len(cw.entries))); err != nil {
		return err
	}

	var prev uint64
	for _, e := range cw.entries {
		if err := codec.WriteVInt(cw.w, e.offset-prev); err != nil {
			return err
		}

		if err := e.addr.serialize(cw.w); err != nil {
			return err
		}

		prev = e.offset
	}

	footerLen := cw.w.Count() - footerStart
	if err := codec.WriteUint32(cw.w, uint32(footerLen)); err != nil {
		return err
	}

	return cw.inner.Terminate()
}

type fileRange struct {
	start, end int
}

// CompositeFile indexes the virtual files packed by a CompositeWriter.
type CompositeFile struct {
	data   FileSlice
	fields map[fileAddr]fileRange
}

// OpenComposite parses the footer of data and indexes the virtual files
// inside. Damaged or truncated footers fail with an error wrapping
// codec.ErrCorrupted; they never panic and never allocate proportional
// to corrupt length claims.
func OpenComposite(data FileSlice) (*CompositeFile, error) {
	if data.Len() < codec.SizeOfUint32 {
		return nil, fmt.Errorf("%w: composite file of %d bytes cannot hold a footer", codec.ErrCorrupted, data.Len())
	}

	rest, tail := data.SplitFromEnd(codec.SizeOfUint32)

	footerLen32, err := codec.ReadUint32(tail.Reader())
	if err != nil {
		return nil, corruptFooter(err)
	}

	footerLen := int(footerLen32)
	if footerLen > rest.Len() {
		return nil, fmt.Errorf("%w: composite footer length %d exceeds file size %d", codec.ErrCorrupted, footerLen, data.Len())
	}

	footerStart := rest.Len() - footerLen
	footer := rest.SliceFrom(footerStart).Reader()

	numFields64, err := codec.ReadVInt(footer)
	if err != nil {
		return nil, corruptFooter(err)
	}

	// Every entry takes at least one byte in the footer, so the count
	// can never exceed the footer length.
	if numFields64 > uint64(footerLen) {
		return nil, fmt.Errorf("%w: composite footer claims %d fields in %d bytes", codec.ErrCorrupted, numFields64, footerLen)
	}

	numFields := int(numFields64)
	addrs := make([]fileAddr, 0, numFields)
	offsets := make([]int, 0, numFields+1)

	var offset uint64
	for i := 0; i < numFields; i++ {
		delta, err := codec.ReadVInt(footer)
		if err != nil {
			return nil, corruptFooter(err)
		}

		if delta > uint64(footerStart)-offset {
			return nil, fmt.Errorf("%w: composite entry %d starts past the footer", codec.ErrCorrupted, i)
		}

		offset += delta

		addr, err := readFileAddr(footer)
		if err != nil {
			return nil, corruptFooter(err)
		}

		addrs = append(addrs, addr)
		offsets = append(offsets, int(offset))
	}

	offsets = append(offsets, footerStart)

	fields := make(map[fileAddr]fileRange, numFields)
	for i, addr := range addrs {
		fields[addr] = fileRange{start: offsets[i], end: offsets[i+1]}
	}

	return &CompositeFile{
		data:   data.SliceTo(footerStart),
		fields: fields,
	}, nil
}

func corruptFooter(err error) error {
	if errors.Is(err, codec.ErrCorrupted) {
		return fmt.Errorf("composite footer: %w", err)
	}

	return fmt.Errorf("%w: composite footer: %v", codec.ErrCorrupted, err)
}

// EmptyComposite returns a composite file with no virtual files, the
// reader-side stand-in for a segment that was never written.
func EmptyComposite() *CompositeFile {
	return &CompositeFile{fields: map[fileAddr]fileRange{}}
}

// OpenRead returns the virtual file of field at index 0. The boolean is
// false when the field has no entry; an absent field is a legitimate
// state, not corruption.
func (cf *CompositeFile) OpenRead(field schema.Field) (FileSlice, bool) {
	return cf.OpenReadWithIdx(field, 0)
}

// OpenReadWithIdx returns the virtual file (field, idx).
func (cf *CompositeFile) OpenReadWithIdx(field schema.Field, idx int) (FileSlice, bool) {
	r, ok := cf.fields[fileAddr{field: field, idx: idx}]
	if !ok {
		return FileSlice{}, false
	}

	return cf.data.Slice(r.start, r.end), true
}

// SpaceUsage maps fields to the number of bytes they occupy inside a
// composite file, summed over all their virtual files.
type SpaceUsage map[schema.Field]uint64

// Total returns the combined footprint of all fields.
func (su SpaceUsage) Total() uint64 {
	var total uint64
	for _, n := range su {
		total += n
	}

	return total
}

// SpaceUsage reports the per-field byte footprint of the container.
func (cf *CompositeFile) SpaceUsage() SpaceUsage {
	usage := make(SpaceUsage, len(cf.fields))
	for addr, r := range cf.fields {
		usage[addr.field] += uint64(r.end - r.start)
	}

	return usage
}
