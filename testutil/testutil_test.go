package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	rng := NewRNG(4711)

	b := rng.Bytes(1024)

	assert.Equal(t, 1024, len(b))

	// Uniform bytes should touch most of the value space.
	seen := make(map[byte]struct{})
	for _, v := range b {
		seen[v] = struct{}{}
	}
	assert.Greater(t, len(seen), 200)
}

func TestText(t *testing.T) {
	rng := NewRNG(4711)

	text := rng.Text(4096)

	assert.Equal(t, 4096, len(text))
	assert.Contains(t, string(text), "term")
}

func TestSortedU64s(t *testing.T) {
	rng := NewRNG(4711)

	ids := rng.SortedU64s(1000, 32)

	assert.Equal(t, 1000, len(ids))
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
		assert.LessOrEqual(t, ids[i]-ids[i-1], uint64(32))
	}
}

func TestZipfSkew(t *testing.T) {
	rng := NewRNG(42)

	counts := make([]int, 100)
	for i := 0; i < 10000; i++ {
		counts[rng.Zipf(100, 1.2)]++
	}

	// Zipf concentrates mass on the first ranks.
	assert.Greater(t, counts[0], counts[50])

	head := counts[0] + counts[1] + counts[2]
	assert.Greater(t, float64(head)/10000, 0.2)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	b1 := rng.Bytes(64)

	rng.Reset()
	b2 := rng.Bytes(64)

	assert.Equal(t, b1, b2)
}

func TestDocumentsDeterministic(t *testing.T) {
	docs := Documents(NewRNG(7), 10)
	again := Documents(NewRNG(7), 10)

	assert.Equal(t, 10, len(docs))

	for i := range docs {
		assert.Equal(t, docs[i].FieldValues(), again[i].FieldValues())

		title := docs[i].Get(TitleField)
		assert.Len(t, title, 1)
	}
}
