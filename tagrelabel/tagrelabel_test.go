package tagrelabel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// list is a minimal doubly linked list implementing Ordered for tests.
type list struct {
	label      []uint64
	prev, next []int
}

func newList() *list { return &list{} }

func (l *list) Label(i int) uint64    { return l.label[i] }
func (l *list) SetLabel(i int, v uint64) { l.label[i] = v }
func (l *list) Prev(i int) int        { return l.prev[i] }
func (l *list) Next(i int) int        { return l.next[i] }

// appendAfter appends a new element after tail (-1 for empty list) and
// returns its index.
func (l *list) appendAfter(tail int) int {
	idx := len(l.label)
	l.label = append(l.label, 0)
	l.prev = append(l.prev, tail)
	l.next = append(l.next, -1)
	if tail >= 0 {
		l.next[tail] = idx
	}
	return idx
}

func TestAssignMonotonic(t *testing.T) {
	lb := New(16)
	l := newList()
	tail := -1
	var order []int
	for i := 0; i < 200; i++ {
		idx := l.appendAfter(tail)
		lb.Assign(l, idx)
		order = append(order, idx)
		tail = idx
	}
	for i := 1; i < len(order); i++ {
		require.Less(t, l.Label(order[i-1]), l.Label(order[i]))
	}
}

func TestAssignBetween(t *testing.T) {
	lb := New(16)
	l := newList()
	a := l.appendAfter(-1)
	lb.Assign(l, a)
	b := l.appendAfter(a)
	lb.Assign(l, b)
	require.Less(t, l.Label(a), l.Label(b))

	// splice c between a and b
	c := len(l.label)
	l.label = append(l.label, 0)
	l.prev = append(l.prev, a)
	l.next = append(l.next, b)
	l.next[a] = c
	l.prev[b] = c
	lb.Assign(l, c)

	require.Less(t, l.Label(a), l.Label(c))
	require.Less(t, l.Label(c), l.Label(b))
}

func TestAssignDenseInsertionsForceRedistribution(t *testing.T) {
	lb := New(16)
	l := newList()
	a := l.appendAfter(-1)
	lb.Assign(l, a)
	b := l.appendAfter(a)
	lb.Assign(l, b)

	// Repeatedly splice between the last two neighbours so gaps shrink to
	// zero quickly and the window-expansion/redistribution path triggers.
	left := a
	for i := 0; i < 64; i++ {
		right := l.next[left]
		c := len(l.label)
		l.label = append(l.label, 0)
		l.prev = append(l.prev, left)
		l.next = append(l.next, right)
		l.next[left] = c
		l.prev[right] = c
		lb.Assign(l, c)
		require.Less(t, l.Label(left), l.Label(c))
		require.Less(t, l.Label(c), l.Label(right))
		left = c
	}
}
