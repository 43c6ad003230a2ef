package rle

import "github.com/g-m-twostay/rlbwt/bitpack"

// mBottom is an M-bottom: up to B runs in textual order, each a character
// plus a bit-packed weight, mirrored to its S-tree leaf (idxS) and carrying
// one associated 64-bit value (assoc) per run, per spec.md §4.4/§9.
type mBottom struct {
	parent   *Node
	idxInSib int
	label    uint64
	prevBtm  int // textual-order neighbours, -1 at the ends
	nextBtm  int

	count   int
	chars   [B]uint64
	weights *bitpack.Vector[uint64] // width grows via ChangeWidth as runs lengthen
	idxS    [B]int                  // mirror: run slot -> idxS
	assoc   [B]uint64
}

func newMBottom() *mBottom {
	return &mBottom{prevBtm: NotFound, nextBtm: NotFound, weights: bitpack.NewWithLen[uint64](1, 0)}
}

func (m *mBottom) weightAt(slot int) uint64 { return m.weights.Get(slot) }

func (m *mBottom) setWeightAt(slot int, w uint64) {
	if need := bitpack.MinWidthFor(w); need > m.weights.Width() {
		m.weights.ChangeWidth(need)
	}
	m.weights.Set(slot, w)
}

// insertSlot shifts [idx, count) right by one and writes the new run at
// idx, for both the M-bottom itself and its mirror/assoc side tables.
func (m *mBottom) insertSlot(idx int, c uint64, w uint64, assoc uint64, idxS int) {
	for i := m.count; i > idx; i-- {
		m.chars[i] = m.chars[i-1]
		m.idxS[i] = m.idxS[i-1]
		m.assoc[i] = m.assoc[i-1]
	}
	m.weights.Resize(m.count + 1)
	m.weights.MoveSameWidth(idx+1, idx, m.count-idx)
	m.chars[idx] = c
	m.setWeightAt(idx, w)
	m.idxS[idx] = idxS
	m.assoc[idx] = assoc
	m.count++
}

// sBottom is an S-bottom: up to B references (idxM) into runs of a single
// character, in the same textual order as their M-tree leaves.
type sBottom struct {
	parent   *Node
	idxInSib int
	char     uint64
	prevBtm  int
	nextBtm  int

	count int
	idxM  [B]int
}

func newSBottom(c uint64) *sBottom {
	return &sBottom{char: c, prevBtm: NotFound, nextBtm: NotFound}
}

func (s *sBottom) insertSlot(idx int, idxM int) {
	for i := s.count; i > idx; i-- {
		s.idxM[i] = s.idxM[i-1]
	}
	s.idxM[idx] = idxM
	s.count++
}

// bottoms owns every M-bottom and S-bottom; ids into the two arrays are
// disjoint (idxM = mBottomID*B+slot, idxS = sBottomID*B+slot) and are what
// the mixed/separated trees store in their border children.
type bottoms struct {
	m []*mBottom
	s []*sBottom
}

func newBottoms() *bottoms { return &bottoms{} }

func (b *bottoms) newMBottom() (id int, btm *mBottom) {
	btm = newMBottom()
	id = len(b.m)
	b.m = append(b.m, btm)
	return
}

func (b *bottoms) newSBottom(c uint64) (id int, btm *sBottom) {
	btm = newSBottom(c)
	id = len(b.s)
	b.s = append(b.s, btm)
	return
}

func (b *bottoms) mAt(id int) *mBottom { return b.m[id] }
func (b *bottoms) sAt(id int) *sBottom { return b.s[id] }

func idxMBottom(idxM int) int { return idxM / B }
func idxMSlot(idxM int) int   { return idxM % B }
func idxSBottom(idxS int) int { return idxS / B }
func idxSSlot(idxS int) int   { return idxS % B }
func makeIdxM(btmID, slot int) int { return btmID*B + slot }
func makeIdxS(btmID, slot int) int { return btmID*B + slot }

// mOrdered adapts the M-bottom textual-order chain to tagrelabel.Ordered.
type mOrdered struct{ b *bottoms }

func (o mOrdered) Label(i int) uint64     { return o.b.m[i].label }
func (o mOrdered) SetLabel(i int, v uint64) { o.b.m[i].label = v }
func (o mOrdered) Prev(i int) int         { return o.b.m[i].prevBtm }
func (o mOrdered) Next(i int) int         { return o.b.m[i].nextBtm }
