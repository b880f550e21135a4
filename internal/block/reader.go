package block

import "io"

// Reader walks the frames of a block stream.
type Reader struct {
	data []byte
	off  int
}

// NewReader creates a reader over a complete block stream.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Next returns the raw payload of the next frame, or io.EOF after the
// last one.
func (r *Reader) Next() ([]byte, error) {
	if r.off == len(r.data) {
		return nil, io.EOF
	}

	raw, frameSize, err := Decompress(r.data[r.off:])
	if err != nil {
		return nil, err
	}

	r.off += frameSize

	return raw, nil
}

// Offset returns the position of the next frame in the stream.
func (r *Reader) Offset() int {
	return r.off
}

// DecompressAll concatenates the payloads of every frame in data.
func DecompressAll(data []byte) ([]byte, error) {
	r := NewReader(data)

	var result []byte

	for {
		raw, err := r.Next()
		if err == io.EOF {
			return result, nil
		}

		if err != nil {
			return nil, err
		}

		result = append(result, raw...)
	}
}
