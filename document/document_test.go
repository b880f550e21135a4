package document

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexgo/schema"
)

func TestDocumentAddAndGet(t *testing.T) {
	title := schema.FieldFromID(0)
	count := schema.FieldFromID(1)

	doc := New()
	doc.AddStr(title, "of mice and men")
	doc.AddU64(count, 4)
	doc.AddStr(title, "of ants and men")

	assert.Equal(t, 3, doc.Len())

	titles := doc.Get(title)
	require.Len(t, titles, 2)
	assert.True(t, titles[0].Equal(Str("of mice and men")))
	assert.True(t, titles[1].Equal(Str("of ants and men")))

	assert.Empty(t, doc.Get(schema.FieldFromID(99)))
}

func TestDocumentSerializeRoundTrip(t *testing.T) {
	doc := New()
	doc.AddStr(schema.FieldFromID(0), "quick brown fox")
	doc.AddU64(schema.FieldFromID(1), 42)
	doc.Add(schema.FieldFromID(2), Object(
		Entry{Key: "nested", Value: Array(Bool(true), Null())},
	))

	var buf bytes.Buffer
	require.NoError(t, doc.Serialize(&buf))

	got := New()
	require.NoError(t, got.Deserialize(&buf))

	require.Equal(t, doc.Len(), got.Len())

	for i, fv := range doc.FieldValues() {
		assert.Equal(t, fv.Field, got.FieldValues()[i].Field)
		assert.True(t, fv.Value.Equal(got.FieldValues()[i].Value))
	}
}

func TestDocumentDeserializeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Serialize(&buf))
	assert.Equal(t, []byte{0}, buf.Bytes())

	got := New()
	require.NoError(t, got.Deserialize(&buf))
	assert.Zero(t, got.Len())
}
