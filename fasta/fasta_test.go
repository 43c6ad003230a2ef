package fasta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSingleSequence(t *testing.T) {
	in := ">seq1\nBANANA\n"
	text, err := Load(strings.NewReader(in), 1)
	require.NoError(t, err)
	require.Equal(t, []byte("BANANA\x01"), text)
}

func TestLoadMultipleSequencesAndWrappedLines(t *testing.T) {
	in := ">s1\nAAA\nAAAA\n>s2\nCCC\n"
	text, err := Load(strings.NewReader(in), 1)
	require.NoError(t, err)
	require.Equal(t, []byte("AAAAAAA\x01CCC\x01"), text)
}

func TestLoadSkipsEmptyLinesAndMissingLeadingHeader(t *testing.T) {
	in := "GATTACA\n\n>next\nTTT\n"
	text, err := Load(strings.NewReader(in), 1)
	require.NoError(t, err)
	require.Equal(t, []byte("GATTACA\x01TTT\x01"), text)
}

func TestLoadEmptyInputYieldsEmptyBuffer(t *testing.T) {
	text, err := Load(strings.NewReader(""), 1)
	require.NoError(t, err)
	require.Empty(t, text)
}
