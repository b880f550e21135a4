package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathWriter(t *testing.T) {
	w := NewPathWriter(false)

	w.Push("root")
	w.Push("child")
	assert.Equal(t, "root\x01child", w.String())

	w.Pop()
	w.Push("child2")
	assert.Equal(t, "root\x01child2", w.String())

	// Without dot expansion the segment is taken verbatim.
	w.Pop()
	w.Push("k8s.node.id")
	assert.Equal(t, "root\x01k8s.node.id", w.String())
}

func TestPathWriterExpandDots(t *testing.T) {
	w := NewPathWriter(true)

	w.Push("root")
	w.Push("k8s.node.id")
	assert.Equal(t, "root\x01k8s\x01node\x01id", w.String())
}

func TestPathWriterExpandDotsPopsWholeSegment(t *testing.T) {
	w := NewPathWriter(true)

	w.Push("hello")
	assert.Equal(t, "hello", w.String())

	w.Push("color.hue")
	assert.Equal(t, "hello\x01color\x01hue", w.String())

	w.Pop()
	assert.Equal(t, "hello", w.String())
}

func TestPathWriterSetEnd(t *testing.T) {
	w := NewPathWriter(false)

	w.Push("attributes")
	w.Push("color")
	w.SetEnd()
	assert.Equal(t, "attributes\x01color\x00", w.String())

	// The marker goes away with the segment it followed.
	w.Pop()
	assert.Equal(t, "attributes", w.String())
}

func TestPathWriterClear(t *testing.T) {
	w := NewPathWriter(false)

	w.Push("a")
	w.Push("b")
	w.Clear()
	assert.Equal(t, "", w.String())

	w.Push("fresh")
	assert.Equal(t, "fresh", w.String())
}

func TestPathWriterPopEmpty(t *testing.T) {
	w := NewPathWriter(false)

	w.Pop()
	assert.Equal(t, "", w.String())
}

func TestSplitPath(t *testing.T) {
	segs := SplitPath([]byte("root\x01k8s\x01node"))
	assert.Equal(t, [][]byte{[]byte("root"), []byte("k8s"), []byte("node")}, segs)

	assert.Nil(t, SplitPath(nil))
}
