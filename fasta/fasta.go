// Package fasta loads the minimal FASTA subset spec.md §6 specifies:
// header lines (">") are ignored, other non-empty lines concatenate into
// the current sequence, and every sequence is terminated by the end-marker
// byte when normalised into the single multi-string buffer the RLE engine
// consumes.
package fasta

import (
	"bufio"
	"io"
)

// Load reads r as FASTA and returns the normalised byte stream: every
// sequence's body lines concatenated in order, each sequence followed by one
// endMarker. Empty lines are skipped; header lines only delimit sequences (a
// sequence that never had a header is allowed and is simply the first one).
func Load(r io.Reader, endMarker byte) ([]byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	var out []byte
	var cur []byte
	inSeq := false
	flush := func() {
		if inSeq {
			out = append(out, cur...)
			out = append(out, endMarker)
			cur = cur[:0]
		}
	}
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			inSeq = false
			continue
		}
		inSeq = true
		cur = append(cur, line...)
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
