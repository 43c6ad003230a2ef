package bwtio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/g-m-twostay/rlbwt/osptbwt"
)

func TestWriteRendersFinalSentinelOnlyAsDollar(t *testing.T) {
	o := osptbwt.NewOsptBWT()
	for _, c := range []byte("BANANA") {
		o.SptExtend(uint64(c))
	}
	o.SptExtend(osptbwt.DefaultEndMarker) // per-sequence marker, byte 1
	o.SptExtend(0)                        // the single global write-time sentinel

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, o.Drle))

	got := buf.String()
	require.Equal(t, 1, strings.Count(got, "$"))
	require.Equal(t, 1, strings.Count(got, "\x01"), "the per-sequence end marker is written literally, not rendered")
}

func TestWriteExpandsRunsByWeight(t *testing.T) {
	o := osptbwt.NewOsptBWT()
	for _, c := range []byte("AAABBC") {
		o.SptExtend(uint64(c))
	}
	o.SptExtend(osptbwt.DefaultEndMarker)
	o.SptExtend(0)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, o.Drle))
	require.Equal(t, o.Drle.GetSumOfWeight(), uint64(len(buf.Bytes())))
}
