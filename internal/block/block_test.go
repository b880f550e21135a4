package block

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/hupe1980/lexgo/codec"
)

// pseudoRandom fills a deterministic, incompressible payload.
func pseudoRandom(n int) []byte {
	buf := make([]byte, n)
	state := uint64(0x9e3779b97f4a7c15)

	for i := range buf {
		state = state*6364136223846793005 + 1442695040888963407
		buf[i] = byte(state >> 56)
	}

	return buf
}

func TestCompressionFromString(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := CompressionFromString(c.String())
		if err != nil {
			t.Fatalf("CompressionFromString(%s): %v", c, err)
		}
		if got != c {
			t.Fatalf("CompressionFromString(%s) = %v", c, got)
		}
	}

	if _, err := CompressionFromString("snappy"); err == nil {
		t.Fatal("expected error for unknown compression")
	}

	got, err := CompressionFromString("")
	if err != nil || got != CompressionNone {
		t.Fatalf("empty compression = %v, %v", got, err)
	}
}

func TestBlockRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":          {},
		"compressible":   bytes.Repeat([]byte("the quick brown fox "), 500),
		"incompressible": pseudoRandom(4096),
		"tiny":           []byte("x"),
	}

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		for name, payload := range payloads {
			t.Run(comp.String()+"/"+name, func(t *testing.T) {
				frame, err := Compress(nil, payload, comp)
				if err != nil {
					t.Fatal(err)
				}

				raw, frameSize, err := Decompress(frame)
				if err != nil {
					t.Fatal(err)
				}
				if frameSize != len(frame) {
					t.Fatalf("frame size %d, want %d", frameSize, len(frame))
				}
				if !bytes.Equal(raw, payload) {
					t.Fatalf("payload mismatch: got %d bytes, want %d", len(raw), len(payload))
				}
			})
		}
	}
}

func TestCompressibleBlockShrinks(t *testing.T) {
	payload := bytes.Repeat([]byte("aaaaaaaabbbbbbbb"), 1024)

	for _, comp := range []Compression{CompressionLZ4, CompressionZstd} {
		frame, err := Compress(nil, payload, comp)
		if err != nil {
			t.Fatal(err)
		}

		if len(frame) >= len(payload) {
			t.Fatalf("%s frame of %d bytes did not shrink %d byte payload", comp, len(frame), len(payload))
		}

		if Compression(frame[0]) != comp {
			t.Fatalf("frame stored as %v, want %v", Compression(frame[0]), comp)
		}
	}
}

func TestIncompressibleBlockStoredRaw(t *testing.T) {
	payload := pseudoRandom(1024)

	frame, err := Compress(nil, payload, CompressionLZ4)
	if err != nil {
		t.Fatal(err)
	}

	if Compression(frame[0]) != CompressionNone {
		t.Fatalf("incompressible payload stored as %v, want none", Compression(frame[0]))
	}
	if len(frame) != headerSize+len(payload)+trailerSize {
		t.Fatalf("frame size %d, want %d", len(frame), headerSize+len(payload)+trailerSize)
	}
}

func TestDecompressCorruption(t *testing.T) {
	frame, err := Compress(nil, bytes.Repeat([]byte("block "), 100), CompressionLZ4)
	if err != nil {
		t.Fatal(err)
	}

	mutations := map[string]func([]byte) []byte{
		"truncated header": func(b []byte) []byte { return b[:headerSize-1] },
		"truncated payload": func(b []byte) []byte {
			return b[:len(b)-trailerSize-1]
		},
		"payload bit flip": func(b []byte) []byte {
			b[headerSize] ^= 0x01
			return b
		},
		"checksum bit flip": func(b []byte) []byte {
			b[len(b)-1] ^= 0x01
			return b
		},
		"unknown compression": func(b []byte) []byte {
			b[0] = 0x7f
			return b
		},
		"oversized stored length": func(b []byte) []byte {
			b[5] = 0xff
			b[6] = 0xff
			return b
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			mutated := mutate(append([]byte(nil), frame...))

			_, _, err := Decompress(mutated)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, codec.ErrCorrupted) {
				t.Fatalf("error %v does not wrap ErrCorrupted", err)
			}
		})
	}
}

func TestRawLengthMismatch(t *testing.T) {
	payload := pseudoRandom(64)

	frame, err := Compress(nil, payload, CompressionNone)
	if err != nil {
		t.Fatal(err)
	}

	// Claim a different raw length than stored.
	frame[1] ^= 0x01

	_, _, err = Decompress(frame)
	if !errors.Is(err, codec.ErrCorrupted) {
		t.Fatalf("error %v does not wrap ErrCorrupted", err)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	input := bytes.Repeat([]byte("segment store document payload "), 4096)

	var buf bytes.Buffer
	w := NewWriter(&buf, CompressionZstd, 4096)

	// Odd chunk sizes force frames to cut mid write.
	for off := 0; off < len(input); {
		n := min(997, len(input)-off)
		written, err := w.Write(input[off : off+n])
		if err != nil {
			t.Fatal(err)
		}
		if written != n {
			t.Fatalf("short write: %d != %d", written, n)
		}
		off += n
	}

	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if w.BytesWritten() != int64(buf.Len()) {
		t.Fatalf("BytesWritten %d != emitted %d", w.BytesWritten(), buf.Len())
	}

	got, err := DecompressAll(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, input) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(input))
	}

	// The stream holds multiple frames of at most blockSize raw bytes.
	r := NewReader(buf.Bytes())
	frames := 0

	for {
		raw, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if len(raw) > 4096 {
			t.Fatalf("frame holds %d raw bytes, want at most 4096", len(raw))
		}

		frames++
	}

	if want := (len(input) + 4095) / 4096; frames != want {
		t.Fatalf("stream holds %d frames, want %d", frames, want)
	}
}

func TestWriterFlushEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, CompressionLZ4, 0)

	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty flush emitted %d bytes", buf.Len())
	}
}

func BenchmarkCompress(b *testing.B) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 1000)

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		b.Run(comp.String(), func(b *testing.B) {
			b.SetBytes(int64(len(payload)))

			var frame []byte
			for i := 0; i < b.N; i++ {
				var err error
				frame, err = Compress(frame[:0], payload, comp)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
