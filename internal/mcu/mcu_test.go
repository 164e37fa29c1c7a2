package mcu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-jdec/jdec/internal/colorconvert"
	"github.com/go-jdec/jdec/internal/huffman"
	"github.com/go-jdec/jdec/internal/jpegerr"
	"github.com/go-jdec/jdec/internal/segment"
)

// zeroTable builds a Huffman table whose only code is the single bit "0",
// decoding to sym. Used to build DC/AC tables where every block decodes a
// DC diff of 0 (category 0) and an immediate EOB, so every coefficient in
// the block comes out zero regardless of how many blocks are decoded.
func zeroTable(t *testing.T, sym byte) *huffman.Table {
	t.Helper()
	bits := [16]int{1}
	table, err := huffman.Build(bits, []byte{sym})
	require.NoError(t, err)
	return table
}

func flatQuantTable() *[64]int32 {
	var qt [64]int32
	for i := range qt {
		qt[i] = 1
	}
	return &qt
}

func buildState(t *testing.T, comps []segment.FrameComponent, width, height int) *segment.State {
	t.Helper()
	st := &segment.State{
		Frame: &segment.Frame{Precision: 8, Width: width, Height: height, Components: comps},
	}
	dc := zeroTable(t, 0x00)
	ac := zeroTable(t, 0x00)
	scanComps := make([]segment.ScanComponent, len(comps))
	for i, c := range comps {
		st.QuantTables[c.QuantDest] = flatQuantTable()
		st.DCTables[i] = dc
		st.ACTables[i] = ac
		scanComps[i] = segment.ScanComponent{ComponentID: c.ID, DCDest: byte(i), ACDest: byte(i)}
	}
	st.Scan = &segment.Scan{Components: scanComps}
	return st
}

// TestDecodeInterleaved420Geometry exercises the common 4:2:0 layout (luma
// H=2,V=2, chroma H=1,V=1) across a frame whose dimensions aren't a
// multiple of the 16x16 MCU, so the last column/row of MCUs is partially
// cropped into the output. All-zero coefficients decode to a flat mid-gray
// image regardless of sampling geometry, so a uniform result across every
// output pixel is evidence the block/MCU nesting and cropping are correct.
func TestDecodeInterleaved420Geometry(t *testing.T) {
	width, height := 18, 10
	comps := []segment.FrameComponent{
		{ID: 1, H: 2, V: 2, QuantDest: 0},
		{ID: 2, H: 1, V: 1, QuantDest: 1},
		{ID: 3, H: 1, V: 1, QuantDest: 1},
	}
	st := buildState(t, comps, width, height)

	// mcuCols=ceil(18/16)=2, mcuRows=ceil(10/16)=1; per MCU 4+1+1=6 blocks,
	// 2 bits (DC cat-0 + AC EOB) each: 12 bits/MCU, 24 bits total.
	scanData := make([]byte, 8)

	var result Result
	handler := NewScanHandler(colorconvert.RGB, 16384, &result)
	_, _, _, err := handler(st, scanData)
	require.NoError(t, err)

	assert.Equal(t, width, result.Width)
	assert.Equal(t, height, result.Height)
	require.Len(t, result.Image, width*height*3)
	for i, v := range result.Image {
		assert.Equal(t, byte(128), v, "byte %d", i)
	}
}

// TestDecodeGrayscaleSkipsChromaIDCT checks that requesting Gray output
// from a 3-component scan still consumes the chroma components' entropy
// data (keeping the bitstream aligned) without panicking or misreading
// geometry, even though their IDCT/upsample steps are skipped.
func TestDecodeGrayscaleSkipsChromaIDCT(t *testing.T) {
	width, height := 18, 10
	comps := []segment.FrameComponent{
		{ID: 1, H: 2, V: 2, QuantDest: 0},
		{ID: 2, H: 1, V: 1, QuantDest: 1},
		{ID: 3, H: 1, V: 1, QuantDest: 1},
	}
	st := buildState(t, comps, width, height)
	scanData := make([]byte, 8)

	var result Result
	handler := NewScanHandler(colorconvert.Gray, 16384, &result)
	_, _, _, err := handler(st, scanData)
	require.NoError(t, err)

	assert.Equal(t, width*height, len(result.Image))
	for _, v := range result.Image {
		assert.Equal(t, byte(128), v)
	}
}

// TestDecodeRestartIntervalResync builds a single-component scan with a
// restart interval of 1 and a correctly placed RST0 marker between its two
// MCUs, verifying the orchestrator byte-aligns, recognizes the marker, and
// keeps decoding past it.
func TestDecodeRestartIntervalResync(t *testing.T) {
	width, height := 16, 8 // mcuCols=2, mcuRows=1, one 8x8 block per MCU
	comps := []segment.FrameComponent{{ID: 1, H: 1, V: 1, QuantDest: 0}}
	st := buildState(t, comps, width, height)
	st.RestartInterval = 1

	// byte0: first block's 2 bits (DC cat-0, AC EOB), padded with zero bits.
	// byte1-2: RST0 marker.
	// byte3: second block's 2 bits.
	scanData := []byte{0x00, 0xFF, 0xD0, 0x00}

	var result Result
	handler := NewScanHandler(colorconvert.Gray, 16384, &result)
	_, _, _, err := handler(st, scanData)
	require.NoError(t, err)
	assert.Equal(t, width*height, len(result.Image))
	for _, v := range result.Image {
		assert.Equal(t, byte(128), v)
	}
}

// TestDecodeRestartIntervalWrongMarkerFails checks that a mismatched
// restart marker surfaces as an MCUDecodeError rather than silently
// resyncing or panicking.
func TestDecodeRestartIntervalWrongMarkerFails(t *testing.T) {
	width, height := 16, 8
	comps := []segment.FrameComponent{{ID: 1, H: 1, V: 1, QuantDest: 0}}
	st := buildState(t, comps, width, height)
	st.RestartInterval = 1

	// RST1 where RST0 was expected.
	scanData := []byte{0x00, 0xFF, 0xD1, 0x00}

	var result Result
	handler := NewScanHandler(colorconvert.Gray, 16384, &result)
	_, _, _, err := handler(st, scanData)
	var mcuErr *jpegerr.MCUDecodeError
	require.ErrorAs(t, err, &mcuErr)
}

// TestDecodeRejectsMismatchedScanComponentCount covers the orchestrator's
// scope decision to require one SOS whose component count matches the
// frame's, rather than supporting per-component non-interleaved scans.
func TestDecodeRejectsMismatchedScanComponentCount(t *testing.T) {
	comps := []segment.FrameComponent{
		{ID: 1, H: 1, V: 1, QuantDest: 0},
		{ID: 2, H: 1, V: 1, QuantDest: 0},
	}
	st := buildState(t, comps, 8, 8)
	st.Scan.Components = st.Scan.Components[:1] // only one selector for a 2-component frame

	var result Result
	handler := NewScanHandler(colorconvert.RGB, 16384, &result)
	_, _, _, err := handler(st, []byte{0x00})
	assert.ErrorIs(t, err, jpegerr.SosError)
}

// TestDecodeRejectsOversizedFrame covers the max_dimensions guard.
func TestDecodeRejectsOversizedFrame(t *testing.T) {
	comps := []segment.FrameComponent{{ID: 1, H: 1, V: 1, QuantDest: 0}}
	st := buildState(t, comps, 100, 100)

	var result Result
	handler := NewScanHandler(colorconvert.Gray, 64, &result)
	_, _, _, err := handler(st, []byte{0x00})
	assert.ErrorIs(t, err, jpegerr.FormatError)
}
