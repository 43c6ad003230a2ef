package rle

import (
	"math/rand"
	"testing"

	"github.com/google/btree"
	"github.com/petar/GoLLRB/llrb"
)

// These benchmarks compare DynRleAssoc's own mixed-tree position lookup
// against two well-known general-purpose ordered-map implementations,
// carried as unused-but-wired go.mod dependencies from the teacher: the
// same pattern as Maps/comparisons/cmp1_test.go, which benchmarks the
// teacher's own map types against third-party hash maps. Here the
// comparison is against ordered trees since DynRleAssoc's mixed tree is
// itself an ordered (by text position) structure.

type btreePosItem int

func (a btreePosItem) Less(than btree.Item) bool { return a < than.(btreePosItem) }

type llrbPosItem int

func (a llrbPosItem) Less(than llrb.Item) bool { return a < than.(llrbPosItem) }

func buildDynRle(n int, alphabet int, rng *rand.Rand) *DynRleAssoc {
	d := New()
	for i := 0; i < n; i++ {
		c := uint64(rng.Intn(alphabet))
		total := d.GetSumOfWeight()
		pos := uint64(0)
		if total > 0 {
			pos = uint64(rng.Int63n(int64(total) + 1))
		}
		d.InsertRunWithoutMerge(c, 1, pos)
	}
	return d
}

func BenchmarkDynRleSearchPosM(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	d := buildDynRle(20000, 4, rng)
	total := int64(d.GetSumOfWeight())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.SearchPosM(uint64(rng.Int63n(total)))
	}
}

func BenchmarkGoogleBTreePositionLookup(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	bt := btree.New(32)
	for i := 0; i < 20000; i++ {
		bt.ReplaceOrInsert(btreePosItem(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bt.Get(btreePosItem(rng.Intn(20000)))
	}
}

func BenchmarkGoLLRBPositionLookup(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	tr := llrb.New()
	for i := 0; i < 20000; i++ {
		tr.ReplaceOrInsert(llrbPosItem(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Get(llrbPosItem(rng.Intn(20000)))
	}
}
