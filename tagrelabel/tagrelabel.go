// Package tagrelabel assigns ordered 64-bit labels to elements of a list
// that grows by insertion only, in amortised O(log^2 n) per relabel, using
// the standard doubling/overflow-density scheme (Dietz-Sleator style order
// maintenance, specialised with an integer label space instead of a linked
// list of tags).
package tagrelabel

// MaxLabel is the largest assignable label; the top bit of a uint64 is
// reserved so window-boundary arithmetic never overflows.
const MaxLabel = uint64(1)<<63 - 1

// Ordered is the caller's view of the list being labelled. Indices are
// whatever identifier the caller uses for list elements (e.g. a bottom
// block id); Prev/Next return -1 at the open ends of the list.
type Ordered interface {
	Label(i int) uint64
	SetLabel(i int, v uint64)
	Prev(i int) int
	Next(i int) int
}

// Labeler picks traCode, the growth-constant for the overflow-density
// thresholds, from the number of elements reserved at construction time.
// traCode changes only when the owner calls Reconfigure; rle.DynRleAssoc
// builds its Labeler with New(16) and never reconfigures it.
type Labeler struct {
	traCode uint8 // in [9,16)
}

// New selects the smallest traCode in [9,16) whose density thresholds can
// accommodate reserved elements without forcing a relabel of the entire
// label space on the first insert.
func New(reserved int) *Labeler {
	return &Labeler{traCode: traCodeFor(reserved)}
}

// Reconfigure recomputes traCode for a new reservation count; nothing in
// this module calls it. It only ever affects
// amortised cost, never correctness, so it's safe to call at any time.
func (l *Labeler) Reconfigure(reserved int) {
	l.traCode = traCodeFor(reserved)
}

func traCodeFor(reserved int) uint8 {
	for code := uint8(9); code < 16; code++ {
		// density threshold grows with code; larger reserved counts need a
		// larger code so the outermost window's threshold still exceeds
		// the element count at level 1.
		if 1<<uint(code-8) >= reserved || code == 15 {
			return code
		}
	}
	return 15
}

// overflowThreshold returns the maximum element count tolerated in a
// window spanning 2^level label slots before that window must be
// relabelled uniformly. Density = threshold/2^level is a decreasing
// function of traCode and an increasing function of level, which is what
// gives the doubling scheme its O(log^2 n) amortised bound.
func (l *Labeler) overflowThreshold(level uint) uint64 {
	return (uint64(1) << level) * uint64(level+1) / uint64(l.traCode)
}

// Assign computes and sets the label of newIdx, which the caller has
// already spliced into the ordered list (Prev(newIdx)/Next(newIdx) return
// its neighbours). If the neighbours' labels are at least 2 apart it takes
// their midpoint. Otherwise it widens a window around newIdx until the
// window's element count is under threshold and fits its label span, or the
// list's open ends are reached, then redistributes labels evenly across the
// window.
func (l *Labeler) Assign(o Ordered, newIdx int) {
	lo, hi := o.Prev(newIdx), o.Next(newIdx)
	loLabel := uint64(0)
	if lo >= 0 {
		loLabel = o.Label(lo)
	}
	hiLabel := MaxLabel
	if hi >= 0 {
		hiLabel = o.Label(hi)
	}
	if hiLabel > loLabel && hiLabel-loLabel >= 2 {
		o.SetLabel(newIdx, loLabel+(hiLabel-loLabel)/2)
		return
	}

	// Gap exhausted: walk outward in both directions, one neighbour per side
	// per level, until the element count is within the level's threshold and
	// the label span between the window's outer neighbours leaves room for
	// every member (or the window has consumed the whole list).
	level := uint(1)
	left, right := newIdx, newIdx
	count := uint64(1)
	leftOpen, rightOpen := lo < 0, hi < 0
	for {
		if !leftOpen {
			p := o.Prev(left)
			if p < 0 {
				leftOpen = true
			} else {
				left = p
				count++
			}
		}
		if !rightOpen {
			n := o.Next(right)
			if n < 0 {
				rightOpen = true
			} else {
				right = n
				count++
			}
		}
		level++
		lb, hb := uint64(0), MaxLabel
		if !leftOpen {
			lb = o.Label(left)
		}
		if !rightOpen {
			hb = o.Label(right)
		}
		if (count <= l.overflowThreshold(level) && hb-lb > count) || (leftOpen && rightOpen) {
			break
		}
	}

	lowBound := uint64(0)
	if !leftOpen {
		lowBound = o.Label(left)
	}
	highBound := MaxLabel
	if !rightOpen {
		highBound = o.Label(right)
	}

	// Collect window members in order (including the not-yet-labelled
	// newIdx) and spread labels evenly across [lowBound, highBound].
	members := make([]int, 0, count+1)
	for cur := left; ; {
		members = append(members, cur)
		if cur == right {
			break
		}
		n := o.Next(cur)
		if n < 0 {
			break
		}
		cur = n
	}
	span := highBound - lowBound
	step := span / uint64(len(members)+1)
	if step == 0 {
		step = 1
	}
	for i, idx := range members {
		o.SetLabel(idx, lowBound+step*uint64(i+1))
	}
}
