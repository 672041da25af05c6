package oplist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_PopAllDrainsInReverseOrder(t *testing.T) {
	l := New[int]()
	l.Started(1)
	l.Started(2)
	l.Started(3)

	var visited []int
	l.PopAll(func(op int) {
		visited = append(visited, op)
	})

	assert.Equal(t, []int{3, 2, 1}, visited)
	assert.Equal(t, 0, l.Len())
	for _, op := range []int{1, 2, 3} {
		assert.False(t, l.IsPending(op), "op %d still pending", op)
	}
}

func TestList_PopAllOnEmptyList(t *testing.T) {
	l := New[string]()

	called := false
	l.PopAll(func(string) { called = true })

	assert.False(t, called)
}

func TestList_EndedRemovesOne(t *testing.T) {
	l := New[string]()
	l.Started("register")
	l.Started("query")

	l.Ended("register")

	assert.False(t, l.IsPending("register"))
	assert.True(t, l.IsPending("query"))
	assert.Equal(t, 1, l.Len())

	// Ending an unknown op is harmless.
	l.Ended("missing")
	assert.Equal(t, 1, l.Len())
}

func TestList_PointerIdentity(t *testing.T) {
	type op struct{ name string }
	a := &op{name: "register"}
	b := &op{name: "register"}

	l := New[*op]()
	l.Started(a)

	assert.True(t, l.IsPending(a))
	assert.False(t, l.IsPending(b), "equal values with different identity must not match")
}

func TestList_VisitMayStartNewOperations(t *testing.T) {
	l := New[int]()
	l.Started(1)

	l.PopAll(func(op int) {
		l.Started(op + 10)
	})

	assert.True(t, l.IsPending(11))
	assert.False(t, l.IsPending(1))
}

func TestList_ConcurrentUse(t *testing.T) {
	l := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Started(i)
			_ = l.IsPending(i)
		}(i)
	}
	wg.Wait()

	count := 0
	l.PopAll(func(int) { count++ })
	assert.Equal(t, 50, count)
}
