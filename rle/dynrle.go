package rle

import "github.com/g-m-twostay/rlbwt/tagrelabel"

// sTreeEntry is one per-character separated tree, dispatched to from the
// alphabet tree. The alphabet tree itself is realised as a sorted slice
// rather than a literal B+-tree node chain: the number of distinct
// characters is tiny next to the number of runs, and `ensureSTree` adds an
// entry only once per character, so a sorted
// slice with binary-search predecessor lookup gives the same "largest
// character <= c" semantics the A-tree needs at a fraction of the code.
type sTreeEntry struct {
	char uint64
	tree *Tree
}

// DynRleAssoc is the dynamic run-length encoded sequence: a mixed tree
// (mTree) over runs in textual order plus, per distinct character, a
// separated tree dispatched to from the sorted alpha slice. Composing them
// gives access/rank/select/insert in O(log_B n) per run touched, with one
// 64-bit associated value per run (assoc) for the online BWT's LF sampling.
type DynRleAssoc struct {
	bt      *bottoms
	mTree   *Tree
	labeler *tagrelabel.Labeler
	alpha   []*sTreeEntry
}

// New returns an empty DynRleAssoc.
func New() *DynRleAssoc {
	return &DynRleAssoc{
		bt:      newBottoms(),
		mTree:   NewTree(),
		labeler: tagrelabel.New(16),
	}
}

// GetSumOfWeight returns |T|, the total weight of every run.
func (d *DynRleAssoc) GetSumOfWeight() uint64 { return d.mTree.Root().Weight() }

// GetSumOfWeightChar returns the occurrences of c in T.
func (d *DynRleAssoc) GetSumOfWeightChar(c uint64) uint64 {
	e := d.findAlphaExactEntry(c)
	if e == nil {
		return 0
	}
	return e.tree.Root().Weight()
}

// SearchPosM returns the run covering pos (0 <= pos < |T|) and the offset
// of pos from that run's first position.
func (d *DynRleAssoc) SearchPosM(pos uint64) (idxM int, relPos uint64) {
	bid, rel := d.mTree.Root().searchPos(pos)
	mb := d.bt.mAt(bid)
	var sum uint64
	slot := 0
	for ; slot < mb.count-1; slot++ {
		w := mb.weightAt(slot)
		if sum+w > rel {
			break
		}
		sum += w
	}
	return makeIdxM(bid, slot), rel - sum
}

func (d *DynRleAssoc) GetCharFromIdxM(idxM int) uint64 {
	return d.bt.mAt(idxMBottom(idxM)).chars[idxMSlot(idxM)]
}

func (d *DynRleAssoc) GetWeightFromIdxM(idxM int) uint64 {
	return d.bt.mAt(idxMBottom(idxM)).weightAt(idxMSlot(idxM))
}

func (d *DynRleAssoc) GetAssoc(idxM int) uint64 {
	return d.bt.mAt(idxMBottom(idxM)).assoc[idxMSlot(idxM)]
}

func (d *DynRleAssoc) SetAssoc(idxM int, v uint64) {
	d.bt.mAt(idxMBottom(idxM)).assoc[idxMSlot(idxM)] = v
}

// GetNextIdxM returns the idxM of the run immediately after idxM in
// textual order, or NotFound at the end of the sequence.
func (d *DynRleAssoc) GetNextIdxM(idxM int) int {
	bid, slot := idxMBottom(idxM), idxMSlot(idxM)
	mb := d.bt.mAt(bid)
	if slot+1 < mb.count {
		return makeIdxM(bid, slot+1)
	}
	if mb.nextBtm == NotFound {
		return NotFound
	}
	return makeIdxM(mb.nextBtm, 0)
}

// FirstIdxM returns the idxM of the first run in textual order, or
// NotFound if the sequence is empty.
func (d *DynRleAssoc) FirstIdxM() int {
	if len(d.bt.m) == 0 {
		return NotFound
	}
	bid := d.leftmostMBottom()
	mb := d.bt.mAt(bid)
	if mb.count == 0 {
		return NotFound
	}
	return makeIdxM(bid, 0)
}

func (d *DynRleAssoc) getPrevIdxM(idxM int) int {
	bid, slot := idxMBottom(idxM), idxMSlot(idxM)
	if slot > 0 {
		return makeIdxM(bid, slot-1)
	}
	mb := d.bt.mAt(bid)
	if mb.prevBtm == NotFound {
		return NotFound
	}
	pb := d.bt.mAt(mb.prevBtm)
	return makeIdxM(mb.prevBtm, pb.count-1)
}

// rankAt computes the contribution of runs of character c up to and
// including relPos within idxM's run, per the algorithm in spec.md §4.4:
// locate the nearest preceding S-leaf of c (the run's own S-leaf if its
// character already is c), sum S-bottom-local weights strictly left of it
// (inclusively bumped when the characters differ, since then the leaf
// found is itself entirely before pos), then add the ancestor-chain
// partial sum. totalAdd, when requested, is the global occurrence count of
// every character strictly smaller than c (the A-tree's contribution).
func (d *DynRleAssoc) rankAt(c uint64, idxM int, relPos uint64, wantTotal bool) (rnk uint64, totalAdd uint64) {
	bid, slot := idxMBottom(idxM), idxMSlot(idxM)
	mb := d.bt.mAt(bid)
	match := mb.chars[slot] == c

	var idxS int
	if match {
		idxS = mb.idxS[slot]
	} else {
		idxS = d.predIdxSBefore(c, bid, slot)
	}

	var rnkC uint64
	if idxS != NotFound {
		sbid, sslot := idxSBottom(idxS), idxSSlot(idxS)
		sb := d.bt.sAt(sbid)
		var local uint64
		for j := 0; j < sslot; j++ {
			local += d.GetWeightFromIdxM(sb.idxM[j])
		}
		if !match {
			local += d.GetWeightFromIdxM(sb.idxM[sslot])
		}
		rnkC = local + ancestorPSum(sb.parent, sb.idxInSib)
	}

	if match {
		rnk = rnkC + relPos + 1
	} else {
		rnk = rnkC
	}
	if wantTotal {
		totalAdd = d.findAlphaLowerPrefixSum(c)
	}
	return rnk, totalAdd
}

// RankAt is rankAt's public form, combining the character count with the
// count of smaller characters when totalRank is requested (the LF value
// C[c] + rank(c,pos)).
func (d *DynRleAssoc) RankAt(c uint64, idxM int, relPos uint64, totalRank bool) uint64 {
	rnk, total := d.rankAt(c, idxM, relPos, totalRank)
	if totalRank {
		return rnk + total
	}
	return rnk
}

// Rank returns the count of c in T[0..pos], plus (if totalRank) the count
// of characters strictly smaller than c.
func (d *DynRleAssoc) Rank(c uint64, pos uint64, totalRank bool) uint64 {
	idxM, rel := d.SearchPosM(pos)
	return d.RankAt(c, idxM, rel, totalRank)
}

func (d *DynRleAssoc) idxMToPos(idxM int) uint64 {
	bid, slot := idxMBottom(idxM), idxMSlot(idxM)
	mb := d.bt.mAt(bid)
	var local uint64
	for j := 0; j < slot; j++ {
		local += mb.weightAt(j)
	}
	return ancestorPSum(mb.parent, mb.idxInSib) + local
}

// Select returns the smallest pos with Rank(c,pos,false) == k (1-based k),
// or NotFound (as ok==false) if k is 0 or exceeds occ(c).
func (d *DynRleAssoc) Select(c uint64, k uint64) (pos uint64, ok bool) {
	if k == 0 {
		return 0, false
	}
	entry := d.findAlphaExactEntry(c)
	if entry == nil || k > entry.tree.Root().Weight() {
		return 0, false
	}
	bid, rel := entry.tree.Root().searchPos(k - 1)
	sb := d.bt.sAt(bid)
	var sum uint64
	slot := 0
	for ; slot < sb.count-1; slot++ {
		w := d.GetWeightFromIdxM(sb.idxM[slot])
		if sum+w > rel {
			break
		}
		sum += w
	}
	idxM := sb.idxM[slot]
	return d.idxMToPos(idxM) + (rel - sum), true
}

// ancestorPSum sums the weight of every sibling strictly to the left of
// (n, idxInSib) at every level up to the root -- the generic "psum above a
// leaf-holding node" used by both rank (S-tree side) and select (M-tree
// side).
func ancestorPSum(n *Node, idxInSib int) uint64 {
	sum := n.calcPSum(idxInSib)
	cur := n
	for !cur.isRoot {
		p := cur.parent
		sum += p.calcPSum(cur.idxInSib)
		cur = p
	}
	return sum
}

// predIdxSBefore implements getPredIdxSFromIdxM's "within the same
// M-bottom, scan left; on miss, fall through" search, generalised to walk
// the M-bottom textual-order chain backward instead of the S-tree's
// label-keyed search spec.md §4.4 describes: since M-bottoms are already
// linked in textual order (prevBtm/nextBtm), walking that chain finds the
// same predecessor run without needing a second ordering key on the
// S-tree side. The trade-off is a linear rather than logarithmic walk when
// character c is rare and far away; see DESIGN.md.
func (d *DynRleAssoc) predIdxSBefore(c uint64, bid, slot int) int {
	for {
		mb := d.bt.mAt(bid)
		for j := slot - 1; j >= 0; j-- {
			if mb.chars[j] == c {
				return mb.idxS[j]
			}
		}
		if mb.prevBtm == NotFound {
			return NotFound
		}
		bid = mb.prevBtm
		slot = d.bt.mAt(bid).count
	}
}

// --- alphabet dispatch (A-tree) ---

func (d *DynRleAssoc) alphaLowerBound(c uint64) int {
	lo, hi := 0, len(d.alpha)
	for lo < hi {
		mid := (lo + hi) / 2
		if d.alpha[mid].char < c {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (d *DynRleAssoc) findAlphaExactEntry(c uint64) *sTreeEntry {
	i := d.alphaLowerBound(c)
	if i < len(d.alpha) && d.alpha[i].char == c {
		return d.alpha[i]
	}
	return nil
}

func (d *DynRleAssoc) insertAlphaEntry(e *sTreeEntry) {
	i := d.alphaLowerBound(e.char)
	d.alpha = append(d.alpha, nil)
	copy(d.alpha[i+1:], d.alpha[i:])
	d.alpha[i] = e
}

func (d *DynRleAssoc) findAlphaLowerPrefixSum(c uint64) uint64 {
	i := d.alphaLowerBound(c)
	var s uint64
	for j := 0; j < i; j++ {
		s += d.alpha[j].tree.Root().Weight()
	}
	return s
}

func (d *DynRleAssoc) ensureSTree(c uint64) *sTreeEntry {
	if e := d.findAlphaExactEntry(c); e != nil {
		return e
	}
	bid, sb := d.bt.newSBottom(c)
	tr := NewTree()
	root := tr.Root()
	root.childBottom[0] = bid
	root.numCh = 1
	sb.parent = root
	sb.idxInSib = 0
	e := &sTreeEntry{char: c, tree: tr}
	d.insertAlphaEntry(e)
	return e
}

// --- tree navigation helpers ---

func leftmostBottom(n *Node) int {
	for !n.isBorder {
		n = n.childNode[0]
	}
	return n.childBottom[0]
}

func rightmostBottom(n *Node) int {
	for !n.isBorder {
		n = n.childNode[n.numCh-1]
	}
	return n.childBottom[n.numCh-1]
}

func (d *DynRleAssoc) leftmostMBottom() int  { return leftmostBottom(d.mTree.Root()) }
func (d *DynRleAssoc) rightmostMBottom() int { return rightmostBottom(d.mTree.Root()) }

func (d *DynRleAssoc) lastIdxM() int {
	bid := d.rightmostMBottom()
	mb := d.bt.mAt(bid)
	return makeIdxM(bid, mb.count-1)
}

// resyncBorderM/resyncBorderS re-derive parent/idxInSib for every bottom
// referenced by a border node, after an insertion has shifted (or a split
// has relocated) its children -- Node's insertAt only patches back-pointers
// for *Node children, since it has no visibility into the bottom-block
// owner; this is the "patch parent/idxInSib of every displaced child" step
// spec.md §4.3 assigns to the bottom-block owner.
func (d *DynRleAssoc) resyncBorderM(n *Node) {
	for i := 0; i < n.numCh; i++ {
		mb := d.bt.mAt(n.childBottom[i])
		mb.parent, mb.idxInSib = n, i
	}
}

func (d *DynRleAssoc) resyncBorderS(n *Node) {
	for i := 0; i < n.numCh; i++ {
		sb := d.bt.sAt(n.childBottom[i])
		sb.parent, sb.idxInSib = n, i
	}
}

// --- mirror fixups ---

func (d *DynRleAssoc) fixSMirrorsForMRange(bid, from, to int) {
	mb := d.bt.mAt(bid)
	for slot := from; slot < to; slot++ {
		idxS := mb.idxS[slot]
		if idxS == NotFound {
			continue
		}
		sb := d.bt.sAt(idxSBottom(idxS))
		sb.idxM[idxSSlot(idxS)] = makeIdxM(bid, slot)
	}
}

func (d *DynRleAssoc) fixMMirrorsForSRange(bid, from, to int) {
	sb := d.bt.sAt(bid)
	for slot := from; slot < to; slot++ {
		idxM := sb.idxM[slot]
		mb := d.bt.mAt(idxMBottom(idxM))
		mb.idxS[idxMSlot(idxM)] = makeIdxS(bid, slot)
	}
}

// --- bottom splitting ---

func (d *DynRleAssoc) splitMBottom(bid int) {
	mb := d.bt.mAt(bid)
	half := mb.count / 2
	right := mb.count - half
	newBid, nb := d.bt.newMBottom()
	var moved uint64
	for i := 0; i < right; i++ {
		w := mb.weightAt(half + i)
		nb.insertSlot(i, mb.chars[half+i], w, mb.assoc[half+i], mb.idxS[half+i])
		moved += w
	}
	mb.count = half

	nb.prevBtm = bid
	nb.nextBtm = mb.nextBtm
	if mb.nextBtm != NotFound {
		d.bt.mAt(mb.nextBtm).prevBtm = newBid
	}
	mb.nextBtm = newBid

	d.labeler.Assign(mOrdered{d.bt}, newBid)
	d.fixSMirrorsForMRange(newBid, 0, right)

	mb.parent.adjustLocalWeight(mb.idxInSib, -int64(moved))
	sib := d.mTree.InsertBottomAfter(mb.parent, mb.idxInSib+1, moved, newBid)
	d.resyncBorderM(mb.parent)
	if sib != nil {
		d.resyncBorderM(sib)
	}
}

func (d *DynRleAssoc) splitSBottom(bid int) {
	sb := d.bt.sAt(bid)
	half := sb.count / 2
	right := sb.count - half
	newBid, nb := d.bt.newSBottom(sb.char)
	var moved uint64
	for i := 0; i < right; i++ {
		idxM := sb.idxM[half+i]
		nb.insertSlot(i, idxM)
		moved += d.GetWeightFromIdxM(idxM)
	}
	sb.count = half

	nb.prevBtm = bid
	nb.nextBtm = sb.nextBtm
	if sb.nextBtm != NotFound {
		d.bt.sAt(sb.nextBtm).prevBtm = newBid
	}
	sb.nextBtm = newBid

	d.fixMMirrorsForSRange(newBid, 0, right)

	sb.parent.adjustLocalWeight(sb.idxInSib, -int64(moved))
	entry := d.findAlphaExactEntry(sb.char)
	sib := entry.tree.InsertBottomAfter(sb.parent, sb.idxInSib+1, moved, newBid)
	d.resyncBorderS(sb.parent)
	if sib != nil {
		d.resyncBorderS(sib)
	}
}

// --- weight changes ---

func (d *DynRleAssoc) changeWeight(idxM int, delta int64) {
	bid, slot := idxMBottom(idxM), idxMSlot(idxM)
	mb := d.bt.mAt(bid)
	mb.setWeightAt(slot, uint64(int64(mb.weightAt(slot))+delta))
	mb.parent.changePSumFrom(mb.idxInSib, delta)
	if idxS := mb.idxS[slot]; idxS != NotFound {
		sb := d.bt.sAt(idxSBottom(idxS))
		sb.parent.changePSumFrom(sb.idxInSib, delta)
	}
}

// --- insertion primitives ---

func (d *DynRleAssoc) createFirstRun(c uint64, w uint64) int {
	bid, mb := d.bt.newMBottom()
	mb.insertSlot(0, c, w, 0, NotFound)
	root := d.mTree.Root()
	root.childBottom[0] = bid
	root.numCh = 1
	mb.parent, mb.idxInSib = root, 0
	d.labeler.Assign(mOrdered{d.bt}, bid)
	root.changePSumFrom(0, int64(w))

	idxM := makeIdxM(bid, 0)
	idxS := d.insertSTreeLeafAfterIdxM(c, idxM)
	mb.idxS[0] = idxS
	return idxM
}

// insertRunAfter is insertRunWithoutMerge's core: it always creates a new
// run immediately after afterIdxM (or at the very start, when afterIdxM is
// NotFound), splitting the containing M-bottom first if it's full.
func (d *DynRleAssoc) insertRunAfter(afterIdxM int, c uint64, w uint64) int {
	var bid, slot int
	if afterIdxM == NotFound {
		if len(d.bt.m) == 0 {
			return d.createFirstRun(c, w)
		}
		bid, slot = d.leftmostMBottom(), -1
	} else {
		bid, slot = idxMBottom(afterIdxM), idxMSlot(afterIdxM)
	}

	mb := d.bt.mAt(bid)
	if mb.count == B {
		d.splitMBottom(bid)
		mb = d.bt.mAt(bid)
		if slot >= mb.count {
			bid = mb.nextBtm
			slot -= mb.count
			mb = d.bt.mAt(bid)
		}
	}

	insertAt := slot + 1
	mb.insertSlot(insertAt, c, w, 0, NotFound)
	d.fixSMirrorsForMRange(bid, insertAt+1, mb.count)
	newIdxM := makeIdxM(bid, insertAt)
	mb.parent.changePSumFrom(mb.idxInSib, int64(w))

	idxS := d.insertSTreeLeafAfterIdxM(c, newIdxM)
	mb.idxS[insertAt] = idxS
	return newIdxM
}

func (d *DynRleAssoc) insertSTreeLeafAfterIdxM(c uint64, newIdxM int) int {
	entry := d.ensureSTree(c)
	bid, slot := idxMBottom(newIdxM), idxMSlot(newIdxM)
	predIdxS := d.predIdxSBefore(c, bid, slot)
	return d.insertSLeafAfter(entry, predIdxS, newIdxM)
}

func (d *DynRleAssoc) insertSLeafAfter(entry *sTreeEntry, afterIdxS int, idxM int) int {
	w := d.GetWeightFromIdxM(idxM)

	var bid, slot int
	if afterIdxS == NotFound {
		bid, slot = leftmostBottom(entry.tree.Root()), -1
	} else {
		bid, slot = idxSBottom(afterIdxS), idxSSlot(afterIdxS)
	}

	sb := d.bt.sAt(bid)
	if sb.count == B {
		d.splitSBottom(bid)
		sb = d.bt.sAt(bid)
		if slot >= sb.count {
			bid = sb.nextBtm
			slot -= sb.count
			sb = d.bt.sAt(bid)
		}
	}

	insertAt := slot + 1
	sb.insertSlot(insertAt, idxM)
	d.fixMMirrorsForSRange(bid, insertAt+1, sb.count)
	sb.parent.changePSumFrom(sb.idxInSib, int64(w))
	return makeIdxS(bid, insertAt)
}

// InsertRunAfter inserts a unit run w^1=1 of character c immediately after
// the run at afterIdxM (or at the very start of T if afterIdxM is
// NotFound), without merge-checking afterIdxM's own character -- the
// `insertRunAfter` primitive spec.md §4.5 names directly, used by
// insertOptRun when it has located a run inside the SAP interval that it
// can safely extend the occupied span past without splitting anything.
func (d *DynRleAssoc) InsertRunAfter(afterIdxM int, c uint64) int {
	return d.insertRunAfter(afterIdxM, c, 1)
}

// ChangeWeight adjusts the weight of the run at idxM by delta (positive to
// grow, negative to shrink), propagating the change up both the mixed and
// separated trees. Exposed publicly per spec.md §4.4/§9's description of
// its use inside insertRun case (a) and inside insertOptRun.
func (d *DynRleAssoc) ChangeWeight(idxM int, delta int64) {
	d.changeWeight(idxM, delta)
}

// --- public insertion API ---

// InsertRun inserts a run c^w starting at pos, merging with an adjacent
// equal-character run where possible and splitting the containing run
// otherwise (spec.md §4.4 cases a-d). It returns the idxM of the run the
// new characters ended up in and the relative position, within that run,
// of the last newly inserted character -- the pair OsptBWT needs to
// immediately query rank/LF at the insertion point.
func (d *DynRleAssoc) InsertRun(c uint64, w uint64, pos uint64) (idxM int, relPos uint64) {
	total := d.GetSumOfWeight()
	if total == 0 {
		return d.createFirstRun(c, w), w - 1
	}
	if pos >= total {
		return d.insertAtEnd(c, w)
	}

	curIdxM, curRel := d.SearchPosM(pos)
	curChar := d.GetCharFromIdxM(curIdxM)

	if curChar == c {
		d.changeWeight(curIdxM, int64(w))
		return curIdxM, curRel + w - 1
	}

	if curRel == 0 {
		prevIdxM := d.getPrevIdxM(curIdxM)
		if prevIdxM != NotFound && d.GetCharFromIdxM(prevIdxM) == c {
			oldW := d.GetWeightFromIdxM(prevIdxM)
			d.changeWeight(prevIdxM, int64(w))
			return prevIdxM, oldW + w - 1
		}
		newIdxM := d.insertRunAfter(prevIdxM, c, w)
		return newIdxM, w - 1
	}

	oldW := d.GetWeightFromIdxM(curIdxM)
	tailW := oldW - curRel
	d.changeWeight(curIdxM, -int64(tailW))
	newIdxM := d.insertRunAfter(curIdxM, c, w)
	d.insertRunAfter(newIdxM, curChar, tailW)
	return newIdxM, w - 1
}

// InsertRunWithoutMerge behaves like InsertRun but never merges with a
// neighbouring run of the same character, always creating a new run.
func (d *DynRleAssoc) InsertRunWithoutMerge(c uint64, w uint64, pos uint64) (idxM int, relPos uint64) {
	total := d.GetSumOfWeight()
	if total == 0 {
		return d.createFirstRun(c, w), w - 1
	}
	if pos >= total {
		newIdxM := d.insertRunAfter(d.lastIdxM(), c, w)
		return newIdxM, w - 1
	}

	curIdxM, curRel := d.SearchPosM(pos)
	if curRel == 0 {
		newIdxM := d.insertRunAfter(d.getPrevIdxM(curIdxM), c, w)
		return newIdxM, w - 1
	}

	curChar := d.GetCharFromIdxM(curIdxM)
	oldW := d.GetWeightFromIdxM(curIdxM)
	tailW := oldW - curRel
	d.changeWeight(curIdxM, -int64(tailW))
	newIdxM := d.insertRunAfter(curIdxM, c, w)
	d.insertRunAfter(newIdxM, curChar, tailW)
	return newIdxM, w - 1
}

func (d *DynRleAssoc) insertAtEnd(c uint64, w uint64) (idxM int, relPos uint64) {
	last := d.lastIdxM()
	lastChar := d.GetCharFromIdxM(last)
	if lastChar == c {
		oldW := d.GetWeightFromIdxM(last)
		d.changeWeight(last, int64(w))
		return last, oldW + w - 1
	}
	newIdxM := d.insertRunAfter(last, c, w)
	return newIdxM, w - 1
}

// PushbackRun appends c^w at the end of T, merging with the last run if it
// shares c.
func (d *DynRleAssoc) PushbackRun(c uint64, w uint64) (idxM int, relPos uint64) {
	return d.InsertRun(c, w, d.GetSumOfWeight())
}

// PushbackRunWithoutMerge appends c^w as a new run regardless of the last
// run's character.
func (d *DynRleAssoc) PushbackRunWithoutMerge(c uint64, w uint64) (idxM int, relPos uint64) {
	return d.InsertRunWithoutMerge(c, w, d.GetSumOfWeight())
}
