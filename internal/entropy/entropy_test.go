package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-jdec/jdec/internal/bitreader"
	"github.com/go-jdec/jdec/internal/huffman"
	"github.com/go-jdec/jdec/internal/jpegerr"
)

// oneSymbolTable builds a Huffman table whose only code is the single bit
// "0", decoding to sym.
func oneSymbolTable(t *testing.T, sym byte) *huffman.Table {
	t.Helper()
	bits := [16]int{1}
	table, err := huffman.Build(bits, []byte{sym})
	require.NoError(t, err)
	return table
}

func TestBlockDCOnlyEOBImmediately(t *testing.T) {
	// DC table: single code "0" -> category 0 (diff=0, no extra bits).
	// AC table: single code "0" -> 0x00 (EOB), ending the block immediately.
	dc := oneSymbolTable(t, 0x00)
	ac := oneSymbolTable(t, 0x00)
	var qt [64]int32
	for i := range qt {
		qt[i] = 1
	}

	c := &Component{DCTable: dc, ACTable: ac, QuantTable: &qt}
	r := bitreader.New([]byte{0x00}) // two single-bit codes: "0" then "0"
	var coef [64]int32
	err := Block(r, c, &coef)
	require.NoError(t, err)
	assert.Equal(t, int32(0), coef[0])
	assert.Equal(t, 0, c.DCPred)
}

func TestBlockDCPredictorAccumulates(t *testing.T) {
	dc := oneSymbolTable(t, 0x00) // category 0, diff always 0
	ac := oneSymbolTable(t, 0x00) // immediate EOB
	var qt [64]int32
	for i := range qt {
		qt[i] = 2
	}
	c := &Component{DCTable: dc, ACTable: ac, QuantTable: &qt, DCPred: 5}
	r := bitreader.New([]byte{0x00})
	var coef [64]int32
	require.NoError(t, Block(r, c, &coef))
	// diff=0, pred stays 5, dequantized DC = 5*2 = 10.
	assert.Equal(t, int32(10), coef[0])
	assert.Equal(t, 5, c.DCPred)
}

func TestBlockACOverflowPast63Fails(t *testing.T) {
	dc := oneSymbolTable(t, 0x00) // category 0, no extra bits
	// AC table's single code always decodes to rs=0x10 (run=1, size=0):
	// each iteration advances k by 2 (run, then the post-store k++) and
	// never hits EOB, so k eventually overflows past 63.
	ac := oneSymbolTable(t, 0x10)
	var qt [64]int32
	for i := range qt {
		qt[i] = 1
	}
	c := &Component{DCTable: dc, ACTable: ac, QuantTable: &qt}
	// All-zero bytes: every single-bit code reads as "0", which is the
	// table's only (and always-matching) code, regardless of how many
	// are consumed. 8 bytes comfortably covers the ~33 bits needed.
	r := bitreader.New(make([]byte, 8))
	var coef [64]int32
	err := Block(r, c, &coef)
	assert.ErrorIs(t, err, jpegerr.HuffmanDecode)
}

func TestResetPredictor(t *testing.T) {
	c := Component{DCPred: 42}
	c.ResetPredictor()
	assert.Equal(t, 0, c.DCPred)
}

func TestRestartRequiresExpectedMarker(t *testing.T) {
	r := bitreader.New([]byte{0xFF, 0xD0})
	comps := []Component{{DCPred: 7}}
	err := Restart(r, comps, 3, 4) // mcuIndex=3, interval=4 -> want RST0
	require.NoError(t, err)
	assert.Equal(t, 0, comps[0].DCPred)
}

func TestRestartWrongMarkerFails(t *testing.T) {
	r := bitreader.New([]byte{0xFF, 0xD1})
	comps := []Component{{DCPred: 7}}
	err := Restart(r, comps, 3, 4) // wants RST0, stream has RST1
	var mcuErr *jpegerr.MCUDecodeError
	require.ErrorAs(t, err, &mcuErr)
	assert.Equal(t, 7, comps[0].DCPred) // predictor untouched on failure
}
