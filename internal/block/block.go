// Package block implements the framed, compressed, checksummed block
// encoding used by segment stores.
//
// Each frame is self-describing:
//
//	compression (u8)
//	raw length (u32)
//	stored length (u32)
//	stored payload
//	xxh3 of the stored payload (u64)
//
// Incompressible payloads are stored raw under CompressionNone, so the
// configured compression is a hint per block, not a file-level promise.
package block

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/lexgo/codec"
	"github.com/hupe1980/lexgo/internal/hash"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = 0
	// CompressionLZ4 trades ratio for speed. Good for hot stores.
	CompressionLZ4 Compression = 1
	// CompressionZstd trades speed for ratio. Good for cold stores.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// CompressionFromString parses the names accepted in configuration.
func CompressionFromString(s string) (Compression, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return CompressionNone, fmt.Errorf("block: unknown compression %q", s)
	}
}

// headerSize is the fixed frame prefix, trailerSize the checksum.
const (
	headerSize  = 1 + 4 + 4
	trailerSize = 8
)

// storeRawThreshold gives up on compression when the compressed payload
// is not at least 10% smaller than the raw one.
const storeRawThreshold = 0.9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}

	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))

	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}

	dec, _ := zstd.NewReader(nil)

	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Compress appends one framed block holding data to dst and returns the
// extended slice.
func Compress(dst []byte, data []byte, c Compression) ([]byte, error) {
	var stored []byte

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)

		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("block: lz4 compress: %w", err)
		}

		if n > 0 {
			stored = buf[:n]
		}
	case CompressionZstd:
		enc := getZstdEncoder()
		stored = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("block: unknown compression %s", c)
	}

	// Store raw when compression refused or barely helped.
	if stored == nil || float64(len(stored)) > float64(len(data))*storeRawThreshold {
		c = CompressionNone
		stored = data
	}

	header := make([]byte, headerSize)
	header[0] = uint8(c)
	binary.LittleEndian.PutUint32(header[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(header[5:], uint32(len(stored)))

	dst = append(dst, header...)
	dst = append(dst, stored...)
	dst = binary.LittleEndian.AppendUint64(dst, hash.XXH3(stored))

	return dst, nil
}

// Decompress decodes the frame at the start of data. It returns the raw
// payload and the total frame size. Structurally invalid frames and
// checksum mismatches yield an error wrapping [codec.ErrCorrupted].
func Decompress(data []byte) ([]byte, int, error) {
	if len(data) < headerSize+trailerSize {
		return nil, 0, fmt.Errorf("%w: block frame truncated", codec.ErrCorrupted)
	}

	c := Compression(data[0])
	rawLen := binary.LittleEndian.Uint32(data[1:])
	storedLen := binary.LittleEndian.Uint32(data[5:])

	frameSize := headerSize + int(storedLen) + trailerSize
	if uint64(storedLen) > uint64(len(data)-headerSize-trailerSize) {
		return nil, 0, fmt.Errorf("%w: block payload extends beyond data", codec.ErrCorrupted)
	}

	stored := data[headerSize : headerSize+int(storedLen)]

	want := binary.LittleEndian.Uint64(data[headerSize+int(storedLen):])
	if got := hash.XXH3(stored); got != want {
		return nil, 0, fmt.Errorf("%w: block checksum mismatch (got %016x, want %016x)", codec.ErrCorrupted, got, want)
	}

	switch c {
	case CompressionNone:
		if storedLen != rawLen {
			return nil, 0, fmt.Errorf("%w: raw block length mismatch", codec.ErrCorrupted)
		}

		return stored, frameSize, nil
	case CompressionLZ4:
		raw := make([]byte, rawLen)

		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: lz4 decompress: %v", codec.ErrCorrupted, err)
		}

		if uint32(n) != rawLen {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", codec.ErrCorrupted)
		}

		return raw, frameSize, nil
	case CompressionZstd:
		dec := getZstdDecoder()
		raw, err := dec.DecodeAll(stored, make([]byte, 0, rawLen))
		putZstdDecoder(dec)

		if err != nil {
			return nil, 0, fmt.Errorf("%w: zstd decompress: %v", codec.ErrCorrupted, err)
		}

		if uint32(len(raw)) != rawLen {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", codec.ErrCorrupted)
		}

		return raw, frameSize, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown block compression 0x%02x", codec.ErrCorrupted, uint8(c))
	}
}
