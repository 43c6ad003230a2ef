// Command rlbwt builds the run-length encoded BWT of a FASTA file
// incrementally and writes it out, mirroring original_source/osptBWT.cpp's
// end-to-end driver.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/g-m-twostay/rlbwt/bwtio"
	"github.com/g-m-twostay/rlbwt/fasta"
	"github.com/g-m-twostay/rlbwt/osptbwt"
)

const progressInterval = 10000

func main() {
	input := pflag.StringP("input", "i", "", "input FASTA file (required)")
	output := pflag.StringP("output", "o", "", "output BWT file (BWT is not written if omitted)")
	plain := pflag.Bool("plain", false, "use the plain extend rule instead of the run-aware sptExtend")
	pflag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "rlbwt: -i/--input is required")
		os.Exit(1)
	}

	if err := run(*input, *output, *plain); err != nil {
		fmt.Fprintf(os.Stderr, "rlbwt: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string, plain bool) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	text, err := fasta.Load(in, byte(osptbwt.DefaultEndMarker))
	if err != nil {
		return fmt.Errorf("reading FASTA: %w", err)
	}

	// Each Extend/SptExtend call prepends its character to the text, so every
	// sequence is reversed in place (its end marker stays after it) before it
	// is fed; the result is the BWT of the sequences as they read in the file.
	seqStart := 0
	for i, b := range text {
		if b == byte(osptbwt.DefaultEndMarker) {
			for l, r := seqStart, i-1; l < r; l, r = l+1, r-1 {
				text[l], text[r] = text[r], text[l]
			}
			seqStart = i + 1
		}
	}

	var n uint64
	var writeFn func(w *os.File) error

	start := time.Now()

	if plain {
		o := osptbwt.NewOnlineRlbwt()
		for _, b := range text {
			o.Extend(uint64(b))
			n++
			if n%progressInterval == 0 {
				log.Printf("extend over: n=%d elapsed=%s", n, time.Since(start))
			}
		}
		// One literal byte-0 character closes the whole construction,
		// distinct from the per-sequence end marker written above; only
		// needed (and only inserted) when the BWT is actually written out.
		writeFn = func(w *os.File) error {
			o.Extend(0)
			return bwtio.Write(w, o.Drle)
		}
	} else {
		o := osptbwt.NewOsptBWT()
		for _, b := range text {
			o.SptExtend(uint64(b))
			n++
			if n%progressInterval == 0 {
				log.Printf("extend over: n=%d elapsed=%s", n, time.Since(start))
			}
		}
		writeFn = func(w *os.File) error {
			o.SptExtend(0)
			return bwtio.Write(w, o.Drle)
		}
	}

	log.Printf("extend over: n=%d elapsed=%s", n, time.Since(start))

	if output == "" {
		return nil
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer f.Close()

	writeStart := time.Now()
	if err := writeFn(f); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	log.Printf("RLBWT write done: elapsed=%s", time.Since(writeStart))
	return nil
}
