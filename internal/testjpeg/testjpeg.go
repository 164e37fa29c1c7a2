// Package testjpeg encodes baseline JPEG fixtures for the decoder's own
// tests. It is not a general-purpose encoder: quality maps straight to the
// teacher's jpeg/common.ScaleQuantTable, and the standard Huffman tables
// and bit writer are grounded in jpeg/common/huffman_writer.go and
// jpeg/standard/huffman_encoder.go. Unlike the teacher's encoder, which
// always subsamples a 3-component image 4:2:0, Sampling lets a test choose
// 1x1 (4:4:4) so a round-trip test can assert tight pixel tolerances
// without subsampling's irreversible averaging.
package testjpeg

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Sampling gives every component's horizontal/vertical factor. Len must be
// 1 (grayscale) or 3 (YCbCr).
type Sampling []struct{ H, V int }

// Sampling444 is 1x1 for every component — no chroma subsampling.
func Sampling444() Sampling {
	return Sampling{{H: 1, V: 1}, {H: 1, V: 1}, {H: 1, V: 1}}
}

// Sampling420 is the teacher's default: Y at 2x2, Cb/Cr at 1x1.
func Sampling420() Sampling {
	return Sampling{{H: 2, V: 2}, {H: 1, V: 1}, {H: 1, V: 1}}
}

var luminanceQuant = [64]int32{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var chrominanceQuant = [64]int32{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// scaleQuantTable mirrors the teacher's common.ScaleQuantTable exactly.
func scaleQuantTable(base [64]int32, quality int) [64]int32 {
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}
	var out [64]int32
	for i, v := range base {
		val := (v*int32(scale) + 50) / 100
		if val < 1 {
			val = 1
		}
		if val > 255 {
			val = 255
		}
		out[i] = val
	}
	return out
}

var zigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

var dcLuminanceBits = [16]int{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
var dcLuminanceValues = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
var dcChrominanceBits = [16]int{0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0}
var dcChrominanceValues = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

var acLuminanceBits = [16]int{0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125}
var acLuminanceValues = []byte{
	0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
	0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
	0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xa1, 0x08,
	0x23, 0x42, 0xb1, 0xc1, 0x15, 0x52, 0xd1, 0xf0,
	0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0a, 0x16,
	0x17, 0x18, 0x19, 0x1a, 0x25, 0x26, 0x27, 0x28,
	0x29, 0x2a, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
	0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
	0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
	0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
	0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
	0x7a, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
	0x8a, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
	0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7,
	0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6,
	0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3, 0xc4, 0xc5,
	0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2, 0xd3, 0xd4,
	0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda, 0xe1, 0xe2,
	0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea,
	0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
	0xf9, 0xfa,
}

var acChrominanceBits = [16]int{0, 2, 1, 2, 4, 4, 3, 4, 7, 5, 4, 4, 0, 1, 2, 119}
var acChrominanceValues = []byte{
	0x00, 0x01, 0x02, 0x03, 0x11, 0x04, 0x05, 0x21,
	0x31, 0x06, 0x12, 0x41, 0x51, 0x07, 0x61, 0x71,
	0x13, 0x22, 0x32, 0x81, 0x08, 0x14, 0x42, 0x91,
	0xa1, 0xb1, 0xc1, 0x09, 0x23, 0x33, 0x52, 0xf0,
	0x15, 0x62, 0x72, 0xd1, 0x0a, 0x16, 0x24, 0x34,
	0xe1, 0x25, 0xf1, 0x17, 0x18, 0x19, 0x1a, 0x26,
	0x27, 0x28, 0x29, 0x2a, 0x35, 0x36, 0x37, 0x38,
	0x39, 0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48,
	0x49, 0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58,
	0x59, 0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
	0x69, 0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78,
	0x79, 0x7a, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
	0x88, 0x89, 0x8a, 0x92, 0x93, 0x94, 0x95, 0x96,
	0x97, 0x98, 0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5,
	0xa6, 0xa7, 0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4,
	0xb5, 0xb6, 0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3,
	0xc4, 0xc5, 0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2,
	0xd3, 0xd4, 0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda,
	0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9,
	0xea, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
	0xf9, 0xfa,
}

// huffCode is one canonical code: Len bits of Code, MSB-first.
type huffCode struct {
	Code uint16
	Len  int
}

// buildCodes assigns canonical codes to values in bits/values order, per
// ITU-T T.81 Annex C — the same algorithm as the teacher's
// standard.BuildHuffmanCodes, indexed here by symbol value (0..255).
func buildCodes(bits [16]int, values []byte) [256]huffCode {
	var codes [256]huffCode
	code := uint16(0)
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < bits[l]; i++ {
			codes[values[p]] = huffCode{Code: code, Len: l + 1}
			code++
			p++
		}
		code <<= 1
	}
	return codes
}

// category returns the JPEG coefficient category (bit length) and its
// RECEIVE/EXTEND-compatible encoding for val, per ITU-T T.81 §F.1.2.1.
func category(val int) (cat int, bits uint32) {
	if val == 0 {
		return 0, 0
	}
	abs := val
	if abs < 0 {
		abs = -abs
	}
	cat = 1
	for (1 << uint(cat)) <= abs {
		cat++
	}
	if val > 0 {
		bits = uint32(val)
	} else {
		bits = uint32((1 << uint(cat)) + val - 1)
	}
	return cat, bits
}

// bitWriter accumulates MSB-first bits and byte-stuffs on write, mirroring
// standard.HuffmanEncoder.
type bitWriter struct {
	buf   bytes.Buffer
	acc   uint32
	nBits int
}

func (w *bitWriter) writeBits(bits uint32, n int) {
	if n == 0 {
		return
	}
	w.acc = (w.acc << uint(n)) | (bits & ((1 << uint(n)) - 1))
	w.nBits += n
	for w.nBits >= 8 {
		b := byte(w.acc >> uint(w.nBits-8))
		w.buf.WriteByte(b)
		if b == 0xFF {
			w.buf.WriteByte(0x00)
		}
		w.nBits -= 8
	}
}

func (w *bitWriter) flush() {
	if w.nBits > 0 {
		b := byte((w.acc << uint(8-w.nBits)) | ((1 << uint(8-w.nBits)) - 1))
		w.buf.WriteByte(b)
		if b == 0xFF {
			w.buf.WriteByte(0x00)
		}
		w.nBits = 0
		w.acc = 0
	}
}

// forwardDCT computes the 2D DCT-II of an 8x8 block of level-shifted
// samples (range -128..127), with the standard 1/4 * Cu * Cv normalization
// folded in. Unlike the decoder's fixed-point separable IDCT, this runs as
// a direct float transform: fixture generation only needs correctness, not
// decode-time speed.
func forwardDCT(block *[64]float64) [64]float64 {
	var tmp, out [64]float64
	var cosTable [8][8]float64
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			cosTable[x][u] = math.Cos((2*float64(x) + 1) * float64(u) * math.Pi / 16)
		}
	}
	cu := func(u int) float64 {
		if u == 0 {
			return 1 / math.Sqrt2
		}
		return 1
	}
	for y := 0; y < 8; y++ {
		for u := 0; u < 8; u++ {
			var sum float64
			for x := 0; x < 8; x++ {
				sum += block[y*8+x] * cosTable[x][u]
			}
			tmp[y*8+u] = 0.5 * cu(u) * sum
		}
	}
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			var sum float64
			for y := 0; y < 8; y++ {
				sum += tmp[y*8+u] * cosTable[y][v]
			}
			out[v*8+u] = 0.5 * cu(v) * sum
		}
	}
	return out
}

type plane struct {
	data       []byte
	width      int
	height     int
	blockWidth int
}

func divCeil(a, b int) int { return (a + b - 1) / b }

// rgbToYCbCr converts an interleaved RGB buffer to three planar byte
// slices, full resolution. Unlike the teacher's rgbToYCbCr, which uses the
// exact BT.601 constants, this solves for the algebraic inverse of
// colorconvert.Pixel's approximate fixed-point transform (45/32, 11/32,
// 23/32, 113/64), so a decoded round trip matches the original sample to
// within the transform's integer rounding rather than compounding two
// different approximations of the YCbCr matrix.
func rgbToYCbCr(rgb []byte, width, height int) (y, cb, cr []byte) {
	const (
		k1 = (11.0 * 64.0) / (32.0 * 113.0)
		k2 = 23.0 / 45.0
	)
	denom := 1.0 + k1 + k2

	y = make([]byte, width*height)
	cb = make([]byte, width*height)
	cr = make([]byte, width*height)
	for i := 0; i < width*height; i++ {
		r := float64(rgb[i*3+0])
		g := float64(rgb[i*3+1])
		b := float64(rgb[i*3+2])

		yy := (g + k1*b + k2*r) / denom
		crv := (r - yy) * 32.0 / 45.0
		cbv := (b - yy) * 64.0 / 113.0

		y[i] = clamp8(int(math.Round(yy)))
		cb[i] = clamp8(int(math.Round(cbv)) + 128)
		cr[i] = clamp8(int(math.Round(crv)) + 128)
	}
	return
}

func clamp8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// subsamplePlane box-filters full-resolution src down by (ratioH, ratioV),
// producing a plane padded up to a whole number of 8x8 blocks.
func subsamplePlane(src []byte, width, height, ratioH, ratioV int) plane {
	sw := divCeil(width, ratioH)
	sh := divCeil(height, ratioV)
	blockWidth := divCeil(sw, 8)
	blockHeight := divCeil(sh, 8)
	stride := blockWidth * 8
	out := make([]byte, stride*blockHeight*8)
	for oy := 0; oy < sh; oy++ {
		for ox := 0; ox < sw; ox++ {
			var sum, n int
			for dy := 0; dy < ratioV; dy++ {
				sy := oy*ratioV + dy
				if sy >= height {
					continue
				}
				for dx := 0; dx < ratioH; dx++ {
					sx := ox*ratioH + dx
					if sx >= width {
						continue
					}
					sum += int(src[sy*width+sx])
					n++
				}
			}
			if n == 0 {
				n = 1
			}
			out[oy*stride+ox] = byte(sum / n)
		}
	}
	// Edge-replicate into the block padding so the DCT of a partial block
	// doesn't see hard zero edges.
	padRight(out, stride, blockHeight*8, sw, sh)
	return plane{data: out, width: sw, height: sh, blockWidth: blockWidth}
}

func padRight(data []byte, stride, totalHeight, validW, validH int) {
	for y := 0; y < totalHeight; y++ {
		srcY := y
		if srcY >= validH {
			srcY = validH - 1
		}
		for x := validW; x < stride; x++ {
			data[y*stride+x] = data[srcY*stride+validW-1]
		}
		if y >= validH {
			copy(data[y*stride:y*stride+stride], data[srcY*stride:srcY*stride+stride])
		}
	}
}

type encoder struct {
	w          bitWriter
	dcCodes    [2][256]huffCode
	acCodes    [2][256]huffCode
	quant      [2][64]int32
	components int
}

// encodeBlock extracts, transforms, quantizes and entropy-codes one 8x8
// block from plane p at block coordinates (bx, by), updating dcPred.
func (e *encoder) encodeBlock(p plane, bx, by, tableIdx int, dcPred *int) {
	var block [64]float64
	stride := p.blockWidth * 8
	for yy := 0; yy < 8; yy++ {
		for xx := 0; xx < 8; xx++ {
			srcY := by*8 + yy
			srcX := bx*8 + xx
			var v byte
			if srcY*stride+srcX < len(p.data) {
				v = p.data[srcY*stride+srcX]
			}
			block[yy*8+xx] = float64(v) - 128
		}
	}

	coef := forwardDCT(&block)
	var quantized [64]int32
	for i := 0; i < 64; i++ {
		q := float64(e.quant[tableIdx][i])
		quantized[i] = int32(math.Round(coef[i] / q))
	}

	dcDiff := int(quantized[0]) - *dcPred
	*dcPred = int(quantized[0])
	cat, bits := category(dcDiff)
	dc := e.dcCodes[tableIdx][cat]
	e.w.writeBits(uint32(dc.Code), dc.Len)
	if cat > 0 {
		e.w.writeBits(bits, cat)
	}

	acCodes := e.acCodes[tableIdx]
	zeroRun := 0
	for k := 1; k < 64; k++ {
		val := int(quantized[zigZag[k]])
		if val == 0 {
			zeroRun++
			continue
		}
		for zeroRun >= 16 {
			zrl := acCodes[0xF0]
			e.w.writeBits(uint32(zrl.Code), zrl.Len)
			zeroRun -= 16
		}
		cat, bits := category(val)
		rs := byte((zeroRun << 4) | cat)
		code := acCodes[rs]
		e.w.writeBits(uint32(code.Code), code.Len)
		e.w.writeBits(bits, cat)
		zeroRun = 0
	}
	if zeroRun > 0 {
		eob := acCodes[0x00]
		e.w.writeBits(uint32(eob.Code), eob.Len)
	}
}

// Encode builds a minimal baseline JPEG byte stream (SOI, DQT, SOF0, DHT,
// SOS + entropy data, EOI) for an interleaved RGB (components=3) or grayscale
// (components=1) pixel buffer, at the given sampling and quality (1..100).
// It does not emit DRI/restart markers; tests needing restart coverage
// synthesize RSTn markers into the stream directly instead.
func Encode(pixels []byte, width, height, components, quality int, sampling Sampling) ([]byte, error) {
	lumaQuant := scaleQuantTable(luminanceQuant, quality)
	chromaQuant := scaleQuantTable(chrominanceQuant, quality)

	enc := &encoder{components: components}
	enc.quant[0] = lumaQuant
	enc.quant[1] = chromaQuant
	dcLumaCodes := buildCodes(dcLuminanceBits, dcLuminanceValues)
	acLumaCodes := buildCodes(acLuminanceBits, acLuminanceValues)
	enc.dcCodes[0] = dcLumaCodes
	enc.acCodes[0] = acLumaCodes
	if components == 3 {
		enc.dcCodes[1] = buildCodes(dcChrominanceBits, dcChrominanceValues)
		enc.acCodes[1] = buildCodes(acChrominanceBits, acChrominanceValues)
	}

	var planes []plane
	if components == 1 {
		bw := divCeil(width, 8)
		bh := divCeil(height, 8)
		stride := bw * 8
		padded := make([]byte, stride*bh*8)
		for y := 0; y < height; y++ {
			copy(padded[y*stride:y*stride+width], pixels[y*width:(y+1)*width])
		}
		padRight(padded, stride, bh*8, width, height)
		planes = []plane{{data: padded, width: width, height: height, blockWidth: bw}}
	} else {
		y, cb, cr := rgbToYCbCr(pixels, width, height)
		planes = []plane{
			subsamplePlane(y, width, height, 1, 1),
			subsamplePlane(cb, width, height, sampling[0].H/sampling[1].H, sampling[0].V/sampling[1].V),
			subsamplePlane(cr, width, height, sampling[0].H/sampling[2].H, sampling[0].V/sampling[2].V),
		}
	}

	var buf bytes.Buffer
	writeMarker(&buf, 0xFFD8)
	writeDQT(&buf, 0, lumaQuant)
	if components == 3 {
		writeDQT(&buf, 1, chromaQuant)
	}
	writeSOF0(&buf, width, height, components, sampling)
	writeDHT(&buf, 0, 0, dcLuminanceBits, dcLuminanceValues)
	writeDHT(&buf, 1, 0, acLuminanceBits, acLuminanceValues)
	if components == 3 {
		writeDHT(&buf, 0, 1, dcChrominanceBits, dcChrominanceValues)
		writeDHT(&buf, 1, 1, acChrominanceBits, acChrominanceValues)
	}
	writeSOS(&buf, components)

	hmax, vmax := 1, 1
	if components == 3 {
		hmax, vmax = sampling[0].H, sampling[0].V
	}
	mcuCols := divCeil(width, 8*hmax)
	mcuRows := divCeil(height, 8*vmax)

	dcPred := [3]int{}
	for my := 0; my < mcuRows; my++ {
		for mx := 0; mx < mcuCols; mx++ {
			for ci := 0; ci < components; ci++ {
				h, v := 1, 1
				tableIdx := 0
				if components == 3 {
					h, v = sampling[ci].H, sampling[ci].V
					if ci > 0 {
						tableIdx = 1
					}
				}
				for by := 0; by < v; by++ {
					for bx := 0; bx < h; bx++ {
						enc.encodeBlock(planes[ci], mx*h+bx, my*v+by, tableIdx, &dcPred[ci])
					}
				}
			}
		}
	}
	enc.w.flush()
	buf.Write(enc.w.buf.Bytes())

	writeMarker(&buf, 0xFFD9)
	return buf.Bytes(), nil
}

func writeMarker(buf *bytes.Buffer, marker uint16) {
	binary.Write(buf, binary.BigEndian, marker)
}

func writeSegment(buf *bytes.Buffer, marker uint16, body []byte) {
	writeMarker(buf, marker)
	binary.Write(buf, binary.BigEndian, uint16(len(body)+2))
	buf.Write(body)
}

func writeDQT(buf *bytes.Buffer, id byte, table [64]int32) {
	body := make([]byte, 1+64)
	body[0] = id
	for i := 0; i < 64; i++ {
		body[1+i] = byte(table[zigZag[i]])
	}
	writeSegment(buf, 0xFFDB, body)
}

func writeSOF0(buf *bytes.Buffer, width, height, components int, sampling Sampling) {
	body := make([]byte, 6+components*3)
	body[0] = 8
	body[1] = byte(height >> 8)
	body[2] = byte(height)
	body[3] = byte(width >> 8)
	body[4] = byte(width)
	body[5] = byte(components)
	for i := 0; i < components; i++ {
		id := byte(i + 1)
		h, v := 1, 1
		quantDest := byte(0)
		if components == 3 {
			h, v = sampling[i].H, sampling[i].V
			if i > 0 {
				quantDest = 1
			}
		}
		body[6+i*3] = id
		body[7+i*3] = byte(h<<4 | v)
		body[8+i*3] = quantDest
	}
	writeSegment(buf, 0xFFC0, body)
}

func writeDHT(buf *bytes.Buffer, class, id byte, bits [16]int, values []byte) {
	body := make([]byte, 1+16+len(values))
	body[0] = class<<4 | id
	for i := 0; i < 16; i++ {
		body[1+i] = byte(bits[i])
	}
	copy(body[17:], values)
	writeSegment(buf, 0xFFC4, body)
}

func writeSOS(buf *bytes.Buffer, components int) {
	body := make([]byte, 1+components*2+3)
	body[0] = byte(components)
	for i := 0; i < components; i++ {
		id := byte(i + 1)
		dc, ac := byte(0), byte(0)
		if components == 3 && i > 0 {
			dc, ac = 1, 1
		}
		body[1+i*2] = id
		body[2+i*2] = dc<<4 | ac
	}
	n := 1 + components*2
	body[n] = 0
	body[n+1] = 63
	body[n+2] = 0
	writeSegment(buf, 0xFFDA, body)
}
