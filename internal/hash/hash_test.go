package hash

import (
	"bytes"
	"testing"
)

func TestCRC32CKnownAnswer(t *testing.T) {
	// The iSCSI check value.
	if got := CRC32C([]byte("123456789")); got != 0xe3069283 {
		t.Fatalf("CRC32C = %08x, want e3069283", got)
	}
}

func TestCRC32CStreamingMatchesOneShot(t *testing.T) {
	data := bytes.Repeat([]byte("lexgo block payload "), 1000)

	h := NewCRC32C()
	h.Write(data[:17])
	h.Write(data[17:])

	if h.Sum32() != CRC32C(data) {
		t.Fatalf("streaming CRC32C %08x != one-shot %08x", h.Sum32(), CRC32C(data))
	}
}

func TestXXH3(t *testing.T) {
	data := bytes.Repeat([]byte{0xab}, 1<<16)

	if XXH3(data) == XXH3(data[:len(data)-1]) {
		t.Fatal("different inputs hash equal")
	}

	if XXH3(data) != XXH3(data) {
		t.Fatal("hash is not deterministic")
	}
}

func TestXXH3StreamingMatchesOneShot(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 4096)

	h := NewXXH3()
	h.Write(data[:100])
	h.Write(data[100:])

	if h.Sum64() != XXH3(data) {
		t.Fatalf("streaming xxh3 %016x != one-shot %016x", h.Sum64(), XXH3(data))
	}
}
