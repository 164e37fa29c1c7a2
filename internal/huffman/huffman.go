// Package huffman builds and decodes canonical JPEG Huffman tables (§4.2).
// The canonical-code assignment and the min/max/valPtr slow path are
// grounded in the teacher's jpeg/common.HuffmanTable.Build, widened from an
// 8-bit fast-lookup root to the 9-bit root the design calls for and wired
// to internal/bitreader instead of an io.Reader-backed bit accumulator.
package huffman

import "github.com/go-jdec/jdec/internal/jpegerr"

const rootBits = 9
const rootSize = 1 << rootBits

// Table is a built canonical Huffman table for one (class, destination).
type Table struct {
	// Bits[l] is the count of codes of length l+1 (l in 0..15).
	Bits [16]int
	// Values holds the decoded symbols, ordered by code length then code.
	Values []byte

	// root maps the top rootBits bits of the stream to a packed
	// (length<<8 | symbol) entry, or -1 if the code is longer than rootBits.
	root [rootSize]int32

	// minCode/maxCode/valPtr support the bit-by-bit slow path for codes
	// longer than rootBits, identical in shape to the teacher's tables.
	minCode [17]int32
	maxCode [17]int32
	valPtr  [17]int32
}

// Build assigns canonical codes from the 16 length counts and the flat
// value list, then constructs the fast root table and the slow-path
// min/max/valPtr arrays. It validates ∑Bits ≤ 256 and ∑Bits ≤ len(Values).
func Build(bits [16]int, values []byte) (*Table, error) {
	total := 0
	for _, c := range bits {
		total += c
	}
	if total == 0 || total > 256 || total > len(values) {
		return nil, jpegerr.HuffmanDecode
	}

	t := &Table{Bits: bits, Values: values}
	for i := range t.root {
		t.root[i] = -1
	}

	// Canonical code assignment: code(1) = 0; code(l) = (code(l-1) + count(l-1)) << 1.
	code := int32(0)
	p := 0
	for l := 1; l <= 16; l++ {
		n := bits[l-1]
		if n == 0 {
			t.maxCode[l] = -1
			code <<= 1
			continue
		}
		t.valPtr[l] = int32(p)
		t.minCode[l] = code
		if l <= rootBits {
			shift := uint(rootBits - l)
			for i := 0; i < n; i++ {
				base := int(code) << shift
				sym := values[p]
				entry := int32(l<<8) | int32(sym)
				for j := 0; j < (1 << shift); j++ {
					t.root[base+j] = entry
				}
				code++
				p++
			}
		} else {
			code += int32(n)
			p += n
		}
		t.maxCode[l] = code - 1
		code <<= 1
	}
	return t, nil
}

// bitSource is the minimal surface huffman needs from internal/bitreader,
// kept narrow so tests can supply a fake without constructing a real
// scan buffer.
type bitSource interface {
	Peek(n uint) (uint32, error)
	Consume(n uint)
	Get(n uint) (uint32, error)
}

// Decode reads one symbol from r using table t: a single rootBits-wide
// peek resolves any code of length ≤ rootBits in one probe; longer codes
// fall back to the bit-by-bit canonical search.
func Decode(r bitSource, t *Table) (byte, error) {
	if peek, err := r.Peek(rootBits); err == nil {
		if entry := t.root[peek]; entry >= 0 {
			r.Consume(uint(entry >> 8))
			return byte(entry & 0xFF), nil
		}
	}

	// Slow path: either the root probe missed (code longer than rootBits)
	// or fewer than rootBits bits remain before EOI/a marker — bit-by-bit
	// canonical search handles both, surfacing the real error if the
	// stream is genuinely exhausted.
	code := int32(0)
	for l := 1; l <= 16; l++ {
		bit, err := r.Get(1)
		if err != nil {
			return 0, err
		}
		code = (code << 1) | int32(bit)
		if t.maxCode[l] >= 0 && code <= t.maxCode[l] {
			idx := t.valPtr[l] + code - t.minCode[l]
			if idx >= 0 && int(idx) < len(t.Values) {
				return t.Values[idx], nil
			}
		}
	}
	return 0, jpegerr.HuffmanDecode
}
