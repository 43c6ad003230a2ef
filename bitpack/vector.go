// Package bitpack provides a resizable vector of fixed-bit-width unsigned
// integers, packed little-endian into a backing array of 64-bit words.
package bitpack

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

const wordBits = 64

// Vector is a dense sequence of n unsigned integers of type T, each stored
// in exactly width bits (1..64) of a []uint64 backing array. Element i
// occupies bits [i*width, (i+1)*width) of the conceptual bitstream, which
// may straddle a word boundary. T is generic (constraints.Unsigned) so the
// bit-twiddling logic is not duplicated per concrete integer type, the way
// the teacher's own `Trees/base.go` keeps its node layout generic over the
// index type. In this module it backs the per-run weight vectors of the
// M-bottoms; the idxM/idxS mirror tables are plain int arrays, not Vectors.
type Vector[T constraints.Unsigned] struct {
	words []uint64
	width uint8
	n     int
}

// New returns an empty vector with the given element width (1..64 bits).
func New[T constraints.Unsigned](width uint8) *Vector[T] {
	if width == 0 || width > 64 {
		panic("bitpack: width out of range")
	}
	return &Vector[T]{width: width}
}

// NewWithLen returns a zero-filled vector of length n and the given width.
func NewWithLen[T constraints.Unsigned](width uint8, n int) *Vector[T] {
	v := New[T](width)
	v.Resize(n)
	return v
}

func (v *Vector[T]) Len() int      { return v.n }
func (v *Vector[T]) Width() uint8  { return v.width }
func (v *Vector[T]) IsEmpty() bool { return v.n == 0 }

func (v *Vector[T]) wordsNeeded(n int) int {
	bitsNeeded := n * int(v.width)
	return (bitsNeeded + wordBits - 1) / wordBits
}

// Get reads the unsigned value at position i. i must be < Len().
func (v *Vector[T]) Get(i int) T {
	bitPos := i * int(v.width)
	wi, off := bitPos/wordBits, uint(bitPos%wordBits)
	w := v.width
	mask := maskFor(w)
	if off+uint(w) <= wordBits {
		return T((v.words[wi] >> off) & mask)
	}
	lo := v.words[wi] >> off
	hiBits := uint(w) - (wordBits - off)
	hi := v.words[wi+1] & maskFor(uint8(hiBits))
	return T(lo | (hi << (wordBits - off)))
}

// Set writes val (which must fit in Width() bits) at position i.
func (v *Vector[T]) Set(i int, val T) {
	bitPos := i * int(v.width)
	wi, off := bitPos/wordBits, uint(bitPos%wordBits)
	w := v.width
	mask := maskFor(w)
	raw := uint64(val) & mask
	if off+uint(w) <= wordBits {
		v.words[wi] = (v.words[wi] &^ (mask << off)) | (raw << off)
		return
	}
	loBits := wordBits - off
	v.words[wi] = (v.words[wi] &^ (mask << off)) | (raw << off)
	hiMask := maskFor(w) >> loBits
	v.words[wi+1] = (v.words[wi+1] &^ hiMask) | (raw >> loBits)
}

// PushBack appends val as a new last element.
func (v *Vector[T]) PushBack(val T) {
	v.Resize(v.n + 1)
	v.Set(v.n-1, val)
}

// Resize grows or shrinks the logical length. Growing never shrinks the
// allocated word capacity and zero-fills the new tail; shrinking merely
// moves the length marker back (no reallocation).
func (v *Vector[T]) Resize(n int) {
	if n < 0 {
		panic("bitpack: negative length")
	}
	need := v.wordsNeeded(n)
	if need > len(v.words) {
		grown := make([]uint64, need)
		copy(grown, v.words)
		v.words = grown
	}
	old := v.n
	v.n = n
	for i := old; i < n; i++ {
		v.Set(i, 0)
	}
}

// ChangeWidth rewrites every element to a new bit width w (larger or
// smaller); this is an O(n) full rebuild since the bit offsets of every
// element change. Values that no longer fit in a smaller width are
// truncated by the caller's responsibility (callers of the RLE engine only
// ever widen to fit the largest observed weight, so this path in practice
// only grows w).
func (v *Vector[T]) ChangeWidth(w uint8) {
	if w == 0 || w > 64 {
		panic("bitpack: width out of range")
	}
	if w == v.width {
		return
	}
	old := v
	nw := New[T](w)
	nw.Resize(old.n)
	for i := 0; i < old.n; i++ {
		nw.Set(i, old.Get(i))
	}
	*v = *nw
}

// MoveSameWidth shifts count elements starting at src to dst within the
// same vector, preserving width. Handles overlapping source/destination
// ranges correctly by choosing a safe iteration direction, which is
// required when a bottom block's tail is shifted right by one slot to make
// room for an insertion.
func (v *Vector[T]) MoveSameWidth(dst, src, count int) {
	if dst == src || count == 0 {
		return
	}
	if dst < src {
		for i := 0; i < count; i++ {
			v.Set(dst+i, v.Get(src+i))
		}
	} else {
		for i := count - 1; i >= 0; i-- {
			v.Set(dst+i, v.Get(src+i))
		}
	}
}

// MinWidthFor returns the smallest bit width that can hold the unsigned
// value v (at least 1).
func MinWidthFor[T constraints.Unsigned](v T) uint8 {
	if v == 0 {
		return 1
	}
	w := bits.Len64(uint64(v))
	return uint8(w)
}

func maskFor(w uint8) uint64 {
	if w == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}
