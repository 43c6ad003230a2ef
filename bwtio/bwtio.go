// Package bwtio serializes a DynRleAssoc's run sequence out to a byte
// stream in textual (BWT-row) order, the Go counterpart of
// original_source/OsptBWT.hpp's writeBWT.
package bwtio

import (
	"bufio"
	"io"

	"github.com/g-m-twostay/rlbwt/rle"
)

// finalSentinel is the single byte rendered as '$' on output, per
// spec.md §6. It is distinct from the per-sequence end marker (byte value
// 1, written literally): original_source/osptBWT.cpp appends exactly one
// occurrence of this byte to the whole construction right before writing
// (`rlbwt.sptExtend(0)`), so there is exactly one '$' in the output no
// matter how many input sequences were terminated along the way.
const finalSentinel = 0

// Write walks rl's runs in textual order, expanding each run's character by
// its weight, and writes the resulting bytes to w. Byte value 0 is rendered
// as ASCII '$' per spec.md §6; every other value (including the
// per-sequence end marker) is written as its low byte.
func Write(w io.Writer, rl *rle.DynRleAssoc) error {
	bw := bufio.NewWriter(w)
	for idx := rl.FirstIdxM(); idx != rle.NotFound; idx = rl.GetNextIdxM(idx) {
		c := rl.GetCharFromIdxM(idx)
		b := byte(c)
		if c == finalSentinel {
			b = '$'
		}
		n := rl.GetWeightFromIdxM(idx)
		for i := uint64(0); i < n; i++ {
			if err := bw.WriteByte(b); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
