// Package entropy implements the bit-serial Huffman entropy decoder (§4.3):
// DC/AC run-length decode for a single 8x8 block, with dequantization
// fused into AC/DC storage per §3 ("indexed in zig-zag order at parse
// time but stored in natural order for the IDCT"). The DC/AC decode loop
// is a direct generalization of the teacher's
// jpeg/baseline.Decoder.decodeBlock, rewritten against internal/bitreader
// and internal/huffman instead of the teacher's io.Reader-backed
// common.HuffmanDecoder.
package entropy

import (
	"github.com/go-jdec/jdec/internal/bitreader"
	"github.com/go-jdec/jdec/internal/huffman"
	"github.com/go-jdec/jdec/internal/jpegerr"
	"github.com/go-jdec/jdec/internal/segment"
)

// Component is the per-component entropy state carried across an entire
// scan: its DC predictor (§3, reset to 0 at scan start and at every
// restart marker) plus the Huffman/quantization tables the SOS scan
// header bound to it.
type Component struct {
	DCPred     int
	DCTable    *huffman.Table
	ACTable    *huffman.Table
	QuantTable *[64]int32
}

// ResetPredictor zeroes the DC predictor, per the restart-marker and
// scan-start reset rule in §3.
func (c *Component) ResetPredictor() { c.DCPred = 0 }

// Block decodes one 8x8 block's worth of coefficients for c from r into
// coef, in natural (non-zig-zag) order with dequantization already
// applied, per §4.3:
//
//   - DC: category s = Huffman-decode(DC table); diff = receive_extend(s);
//     dc = pred + diff; coefficient[0] = dc * qt[0]; pred := dc.
//   - AC: starting at k=1, repeat: (rs) = Huffman-decode(AC table);
//     r = rs>>4, s = rs&0xF. rs==0x00 ends the block (EOB); rs==0xF0 skips
//     16 zero coefficients (ZRL); otherwise k += r, decode the value, and
//     store it dequantized at the zig-zag-mapped index.
//
// Per §4.3, a k that overflows past 63 fails with jpegerr.HuffmanDecode
// (not a generic MCU error — the spec calls this out explicitly).
func Block(r *bitreader.Reader, c *Component, coef *[64]int32) error {
	for i := range coef {
		coef[i] = 0
	}

	s, err := huffman.Decode(r, c.DCTable)
	if err != nil {
		return err
	}
	diff, err := r.ReceiveExtend(uint(s))
	if err != nil {
		return err
	}
	c.DCPred += diff
	coef[0] = int32(c.DCPred) * c.QuantTable[0]

	k := 1
	for k < 64 {
		rs, err := huffman.Decode(r, c.ACTable)
		if err != nil {
			return err
		}
		if rs == 0x00 {
			break
		}
		if rs == 0xF0 {
			k += 16
			continue
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)
		k += run
		if k > 63 {
			return jpegerr.HuffmanDecode
		}
		val, err := r.ReceiveExtend(uint(size))
		if err != nil {
			return err
		}
		zz := segment.ZigZag(k)
		coef[zz] = int32(val) * c.QuantTable[zz]
		k++
	}
	return nil
}

// Restart performs the restart-interval resync described in §4.3: flush
// the bit accumulator to the next byte, require the pending marker to be
// the expected RSTn (n = mcuIndex/interval mod 8), reset every component's
// DC predictor to 0, and clear the reader's pending-marker flag so
// scanning resumes past it.
//
// mcuIndex is the 0-based index of the MCU that was just completed (the
// restart marker is expected to immediately follow it when interval
// divides the MCU count evenly).
func Restart(r *bitreader.Reader, comps []Component, mcuIndex, interval int) error {
	r.AlignToByte()
	_ = r.Sync()
	marker, have := r.PendingMarker()
	wantN := (mcuIndex / interval) % 8
	wantMarker := byte(0xD0 + wantN)
	if !have || marker != wantMarker {
		got := uint16(0)
		if have {
			got = 0xFF00 | uint16(marker)
		}
		return &jpegerr.MCUDecodeError{
			Cause:     jpegerr.MCUError,
			WantAfter: mcuIndex,
			GotMarker: got,
			MCUIndex:  mcuIndex,
		}
	}
	r.ClearMarker()
	for i := range comps {
		comps[i].ResetPredictor()
	}
	return nil
}
