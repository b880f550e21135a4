package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/hupe1980/lexgo/document"
	"github.com/hupe1980/lexgo/schema"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n uniformly random bytes. The result is effectively
// incompressible, which makes it the right payload for testing the
// store-raw fallback of compressed block streams.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]byte, n)
	_, _ = r.rand.Read(out)

	return out
}

// vocabulary is the word pool of Text. Small on purpose: a few hundred
// distinct terms drawn Zipfian mirror the token statistics of natural
// language closely enough for compression and codec tests.
var vocabulary = func() []string {
	words := make([]string, 0, 256)
	for i := 0; i < 256; i++ {
		words = append(words, fmt.Sprintf("term%03d", i))
	}

	return words
}()

// Text returns roughly n bytes of whitespace-separated words whose
// frequencies follow Zipf's law, the distribution real term dictionaries
// show. The result compresses well, unlike Bytes.
func (r *RNG) Text(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	sb.Grow(n + 16)

	for sb.Len() < n {
		sb.WriteString(vocabulary[r.zipfLocked(len(vocabulary), 1.2)])
		sb.WriteByte(' ')
	}

	return []byte(sb.String()[:n])
}

// Words returns n words drawn Zipfian from the vocabulary.
func (r *RNG) Words(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = vocabulary[r.zipfLocked(len(vocabulary), 1.2)]
	}

	return out
}

// SortedU64s returns n strictly ascending uint64 values with gaps in
// [1, maxGap]. The shape matches doc id posting lists, where VInt delta
// encoding earns its keep.
func (r *RNG) SortedU64s(n int, maxGap uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxGap == 0 {
		maxGap = 1
	}

	out := make([]uint64, n)

	var cur uint64
	for i := range out {
		cur += 1 + uint64(r.rand.Int63n(int64(maxGap)))
		out[i] = cur
	}

	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
// This is how real-world data is distributed (power law).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// Standard test fields, matching what an indexing pipeline would
// register in its schema.
var (
	TitleField     = schema.FieldFromID(0)
	BodyField      = schema.FieldFromID(1)
	TimestampField = schema.FieldFromID(2)
	ScoreField     = schema.FieldFromID(3)
	PayloadField   = schema.FieldFromID(4)
)

// Documents generates n documents with a title, a body of Zipfian
// words, a timestamp, a score and a small binary payload. Same seed,
// same documents.
func Documents(rng *RNG, n int) []*document.Document {
	docs := make([]*document.Document, n)

	for i := range docs {
		doc := document.New()
		doc.AddStr(TitleField, fmt.Sprintf("document %06d", i))
		doc.AddStr(BodyField, strings.Join(rng.Words(20), " "))
		doc.AddU64(TimestampField, 1700000000+uint64(i))
		doc.AddF64(ScoreField, float64(rng.Intn(1000))/10)
		doc.AddBytes(PayloadField, rng.Bytes(16))
		docs[i] = doc
	}

	return docs
}
