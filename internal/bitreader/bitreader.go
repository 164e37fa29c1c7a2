// Package bitreader implements the byte-stuffed, MSB-first bit stream
// reader used by the entropy decoder (§4.1). It is grounded in the
// bit-buffer shape of the teacher's jpeg/common.HuffmanDecoder, generalized
// from an io.Reader source to an in-memory slice (the decoder never
// streams; the whole compressed buffer is resident per the module's
// non-goals) and extended with peek/consume/get plus marker-sentinel
// detection on refill, as required by §4.1.
package bitreader

import "github.com/go-jdec/jdec/internal/jpegerr"

// MarkerFound is returned by refill when a 0xFF byte is followed by
// something other than a stuffed 0x00 — i.e. a genuine marker. The 0xFF and
// marker byte are stepped over in the source buffer, and the marker byte is
// held for the caller (entropy decoder / orchestrator) to inspect via
// PendingMarker.
var MarkerFound = jpegerr.Sentinel("marker encountered in entropy-coded data")

// Reader is a 64-bit-accumulator bit reader over an in-memory byte slice.
type Reader struct {
	buf   []byte
	pos   int
	acc   uint64
	nBits uint
	// marker holds the pending marker byte once refill has detected one;
	// it is returned to the caller instead of being silently consumed.
	marker     byte
	haveMarker bool
}

// New wraps buf (the remainder of a scan's entropy-coded segment) for bit
// access starting at offset 0.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset reports the position of the next byte to be loaded from the
// underlying buffer. Bytes already loaded into the accumulator count as
// read even if some of their bits have not been consumed yet.
func (r *Reader) Offset() int { return r.pos }

// PendingMarker reports the marker byte detected by the most recent refill,
// if any, and whether one is pending. The caller is responsible for
// resetting it via ClearMarker after handling (e.g. after a restart).
func (r *Reader) PendingMarker() (byte, bool) { return r.marker, r.haveMarker }

// ClearMarker drops a previously detected pending marker so scanning for
// the next one can resume (used after a restart marker is consumed).
func (r *Reader) ClearMarker() { r.haveMarker = false }

// refill pulls bytes from the source into the accumulator until at least
// `need` bits are available, MSB-first, destuffing 0xFF 0x00 pairs. If a
// genuine marker (0xFF followed by a non-zero byte) is encountered, refill
// stops short, records the marker, and returns MarkerFound; the 0xFF and
// marker byte are stepped over in buf and the marker byte is kept for
// PendingMarker.
func (r *Reader) refill(need uint) error {
	for r.nBits < need {
		if r.haveMarker {
			return MarkerFound
		}
		if r.pos >= len(r.buf) {
			return jpegerr.ExhaustedData
		}
		b := r.buf[r.pos]
		if b == 0xFF {
			if r.pos+1 >= len(r.buf) {
				return jpegerr.ExhaustedData
			}
			next := r.buf[r.pos+1]
			if next == 0x00 {
				r.pos += 2
			} else if next == 0xFF {
				// Fill byte before a real marker; consume it and retry.
				r.pos++
				continue
			} else {
				r.marker = next
				r.haveMarker = true
				r.pos += 2
				return MarkerFound
			}
		} else {
			r.pos++
		}
		r.acc = (r.acc << 8) | uint64(b)
		r.nBits += 8
	}
	return nil
}

// Peek returns the top n bits (0 <= n <= 32) without consuming them.
func (r *Reader) Peek(n uint) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if err := r.refill(n); err != nil {
		return 0, err
	}
	shift := r.nBits - n
	return uint32((r.acc >> shift) & ((1 << n) - 1)), nil
}

// Consume advances the read cursor by n bits, which must already be
// available (normally via a preceding Peek).
func (r *Reader) Consume(n uint) {
	r.nBits -= n
	r.acc &= (1 << r.nBits) - 1
}

// Get reads and consumes n bits as an unsigned integer (peek + consume).
func (r *Reader) Get(n uint) (uint32, error) {
	v, err := r.Peek(n)
	if err != nil {
		return 0, err
	}
	r.Consume(n)
	return v, nil
}

// ReceiveExtend implements JPEG §F.2.2.1 RECEIVE+EXTEND: read n bits and
// sign-extend per the category rule. For n=0 it returns 0 without reading.
func (r *Reader) ReceiveExtend(n uint) (int, error) {
	if n == 0 {
		return 0, nil
	}
	bits, err := r.Get(n)
	if err != nil {
		return 0, err
	}
	v := int(bits)
	if v < (1 << (n - 1)) {
		v += (-1 << n) + 1
	}
	return v, nil
}

// Sync ensures a marker sitting immediately at the current position is
// detected without consuming any data bits. It is a no-op if bits are
// already buffered or a marker was already found; otherwise it performs a
// single-bit refill attempt, which (per refill's byte-stuffing rules)
// resolves to either buffering one real data byte or discovering a
// marker. Restart-interval handling calls this right after AlignToByte,
// where the accumulator is expected to be empty and the next bytes are
// expected to be a restart marker.
func (r *Reader) Sync() error {
	if r.nBits > 0 || r.haveMarker {
		return nil
	}
	if err := r.refill(1); err != nil && err != MarkerFound {
		return err
	}
	return nil
}

// AlignToByte discards any partial byte remaining in the accumulator and
// repositions the source cursor so the next read starts on a byte
// boundary, as required before scanning for a restart marker.
func (r *Reader) AlignToByte() {
	r.nBits -= r.nBits % 8
	r.acc &= (1 << r.nBits) - 1
}

// Reset re-points the reader at a fresh slice and position, clearing the
// accumulator and any pending marker.
func (r *Reader) Reset(buf []byte, pos int) {
	r.buf = buf
	r.pos = pos
	r.acc = 0
	r.nBits = 0
	r.haveMarker = false
	r.marker = 0
}
