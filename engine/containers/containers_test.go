package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaInsertGet(t *testing.T) {
	a := NewArena[string](4)
	h1 := a.Insert("cube")
	h2 := a.Insert("grass")

	assert.Equal(t, Handle{Index: 0, Generation: 1}, h1)
	assert.Equal(t, Handle{Index: 1, Generation: 1}, h2)
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, "grass", v)

	_, ok = a.Get(Handle{})
	assert.False(t, ok)
	_, ok = a.Get(Handle{Index: 7, Generation: 1})
	assert.False(t, ok)
}

func TestArenaStaleHandle(t *testing.T) {
	a := NewArena[int](0)
	h := a.Insert(10)

	v, ok := a.Remove(h)
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.False(t, a.Contains(h))

	_, ok = a.Remove(h)
	assert.False(t, ok, "double remove")

	reused := a.Insert(20)
	assert.Equal(t, h.Index, reused.Index)
	assert.Equal(t, h.Generation+1, reused.Generation)

	_, ok = a.Get(h)
	assert.False(t, ok)
	v, ok = a.Get(reused)
	require.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestArenaEachAndClear(t *testing.T) {
	a := NewArena[int](0)
	var handles []Handle
	for i := 0; i < 5; i++ {
		handles = append(handles, a.Insert(i))
	}
	a.Remove(handles[2])

	var seen []int
	a.Each(func(_ Handle, v int) bool {
		seen = append(seen, v)
		return true
	})
	assert.Equal(t, []int{0, 1, 3, 4}, seen)

	a.Clear()
	assert.Zero(t, a.Len())
	for _, h := range handles {
		assert.False(t, a.Contains(h))
	}

	h := a.Insert(42)
	assert.Equal(t, uint32(0), h.Index)
	assert.Equal(t, uint32(2), h.Generation)
}

func TestRingQueue(t *testing.T) {
	q := NewRingQueue[string](2)
	assert.True(t, q.IsEmpty())

	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	assert.ErrorIs(t, q.Enqueue("c"), ErrQueueFull)
	assert.True(t, q.IsFull())

	v, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	require.NoError(t, q.Enqueue("c"))

	v, _ = q.Dequeue()
	assert.Equal(t, "b", v)
	v, _ = q.Dequeue()
	assert.Equal(t, "c", v)

	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}
