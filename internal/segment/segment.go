package segment

import (
	"encoding/binary"

	"github.com/rs/zerolog"

	"github.com/go-jdec/jdec/internal/huffman"
	"github.com/go-jdec/jdec/internal/jpegerr"
)

// FrameComponent is one component's row from the SOF0 segment.
type FrameComponent struct {
	ID        byte
	H, V      byte // sampling factors, 1..4
	QuantDest byte // quantization table destination selector, 0..3
}

// Frame holds the parsed SOF0 frame header (§3 "Frame header (SOF0)").
type Frame struct {
	Precision  byte
	Height     int
	Width      int
	Components []FrameComponent
}

// ScanComponent is one component selector from the SOS segment, with its
// chosen Huffman table destinations.
type ScanComponent struct {
	ComponentID byte
	DCDest      byte
	ACDest      byte
}

// Scan holds the parsed SOS scan header (§3 "Scan header (SOS)").
type Scan struct {
	Components []ScanComponent
}

// State accumulates everything the parser has learned so far: the
// quantization and Huffman tables (latest binding per (class,destination)
// wins, per §4.7), the frame header, the restart interval, and the most
// recent scan header. It is shared, by pointer, with every onScan
// callback invocation so the MCU orchestrator can read frame/table state
// while entropy-decoding the scan that follows.
type State struct {
	Frame           *Frame
	QuantTables     [4]*[64]int32
	DCTables        [4]*huffman.Table
	ACTables        [4]*huffman.Table
	RestartInterval int
	Scan            *Scan
}

// zigZag is the standard JPEG zig-zag scan order: zigZag[i] is the
// natural-order index of the i-th zig-zag-ordered coefficient.
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

// ZigZag returns the natural-order index for zig-zag position i.
func ZigZag(i int) int { return zigZag[i] }

// reader is a minimal big-endian byte-slice cursor used only while parsing
// segments (not scan data, which is bit-serial and handled by
// internal/bitreader). It is a leaner, in-memory-only generalization of
// the teacher's jpeg/standard.Reader, which wrapped an io.Reader the
// module never needs since the whole buffer is resident.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) byte() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b := r.data[r.pos]
	r.pos++
	return b, true
}

func (r *reader) uint16() (uint16, bool) {
	if r.pos+2 > len(r.data) {
		return 0, false
	}
	v := binary.BigEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, true
}

// parseDQT parses one DQT segment body, which may define multiple tables.
func parseDQT(body []byte, st *State) error {
	r := &reader{data: body}
	for r.pos < len(r.data) {
		pqTq, ok := r.byte()
		if !ok {
			return jpegerr.DqtError
		}
		pq := pqTq >> 4
		tq := pqTq & 0xF
		if tq > 3 || pq > 1 {
			return jpegerr.DqtError
		}
		var table [64]int32
		for i := 0; i < 64; i++ {
			var v int
			if pq == 0 {
				b, ok := r.byte()
				if !ok {
					return jpegerr.DqtError
				}
				v = int(b)
			} else {
				w, ok := r.uint16()
				if !ok {
					return jpegerr.DqtError
				}
				v = int(w)
			}
			table[zigZag[i]] = int32(v)
		}
		st.QuantTables[tq] = &table
	}
	return nil
}

// parseDHT parses one DHT segment body, which may define multiple tables.
func parseDHT(body []byte, st *State) error {
	r := &reader{data: body}
	for r.pos < len(r.data) {
		tcTh, ok := r.byte()
		if !ok {
			return jpegerr.DqtError
		}
		class := tcTh >> 4
		dest := tcTh & 0xF
		if class > 1 || dest > 3 {
			return jpegerr.DqtError
		}
		var counts [16]int
		total := 0
		for i := 0; i < 16; i++ {
			b, ok := r.byte()
			if !ok {
				return jpegerr.DqtError
			}
			counts[i] = int(b)
			total += int(b)
		}
		if r.pos+total > len(r.data) {
			return jpegerr.DqtError
		}
		values := make([]byte, total)
		copy(values, r.data[r.pos:r.pos+total])
		r.pos += total

		table, err := huffman.Build(counts, values)
		if err != nil {
			return err
		}
		if class == 0 {
			st.DCTables[dest] = table
		} else {
			st.ACTables[dest] = table
		}
	}
	return nil
}

// parseSOF parses a SOF0 segment body into Frame.
func parseSOF(body []byte) (*Frame, error) {
	r := &reader{data: body}
	precision, ok := r.byte()
	if !ok {
		return nil, jpegerr.SofError
	}
	height, ok := r.uint16()
	if !ok {
		return nil, jpegerr.SofError
	}
	width, ok := r.uint16()
	if !ok {
		return nil, jpegerr.SofError
	}
	nf, ok := r.byte()
	if !ok || (nf != 1 && nf != 3) {
		return nil, jpegerr.SofError
	}
	comps := make([]FrameComponent, nf)
	for i := range comps {
		id, ok := r.byte()
		if !ok {
			return nil, jpegerr.SofError
		}
		hv, ok := r.byte()
		if !ok {
			return nil, jpegerr.SofError
		}
		h := hv >> 4
		v := hv & 0xF
		if h == 0 || h > 4 || v == 0 || v > 4 {
			return nil, jpegerr.SofError
		}
		tq, ok := r.byte()
		if !ok || tq > 3 {
			return nil, jpegerr.SofError
		}
		comps[i] = FrameComponent{ID: id, H: h, V: v, QuantDest: tq}
	}
	if precision != 8 {
		return nil, jpegerr.SofError
	}
	return &Frame{Precision: precision, Height: int(height), Width: int(width), Components: comps}, nil
}

// parseSOS parses a SOS segment body into Scan.
func parseSOS(body []byte, st *State) (*Scan, error) {
	if st.Frame == nil {
		return nil, jpegerr.SofError
	}
	r := &reader{data: body}
	ns, ok := r.byte()
	if !ok || int(ns) == 0 || int(ns) > len(st.Frame.Components) {
		return nil, jpegerr.SosError
	}
	comps := make([]ScanComponent, ns)
	for i := range comps {
		cs, ok := r.byte()
		if !ok {
			return nil, jpegerr.SosError
		}
		td, ok := r.byte()
		if !ok {
			return nil, jpegerr.SosError
		}
		dc := td >> 4
		ac := td & 0xF
		if dc > 3 || ac > 3 {
			return nil, jpegerr.SosError
		}
		if st.DCTables[dc] == nil || st.ACTables[ac] == nil {
			return nil, jpegerr.UnsetValues
		}
		comps[i] = ScanComponent{ComponentID: cs, DCDest: dc, ACDest: ac}
	}
	ss, ok := r.byte()
	se, ok2 := r.byte()
	ahAl, ok3 := r.byte()
	if !ok || !ok2 || !ok3 {
		return nil, jpegerr.SosError
	}
	// Baseline requires spectral selection 0..63 and successive
	// approximation 0,0 (§3 "Scan header (SOS)").
	if ss != 0 || se != 63 || ahAl != 0 {
		return nil, jpegerr.SosError
	}
	return &Scan{Components: comps}, nil
}

// parseDRI parses a DRI segment body into a restart interval.
func parseDRI(body []byte) (int, error) {
	if len(body) != 2 {
		return 0, jpegerr.FormatError
	}
	return int(binary.BigEndian.Uint16(body)), nil
}

// ScanHandler decodes the entropy-coded data of one SOS scan. scanData is
// the remainder of the input buffer starting immediately after the SOS
// segment header. It returns how many bytes of scanData it consumed and,
// if it stopped because the entropy decoder's bit reader identified the
// marker that ends the scan (the normal case — §4.7 "re-enter Scanning
// after the scan ends, on encountering a non-RSTn marker other than
// 0x00"), that marker's low byte, so Parse can resume its loop on an
// already-identified marker instead of re-scanning raw bytes for 0xFF.
type ScanHandler func(st *State, scanData []byte) (consumed int, trailingMarker byte, haveTrailingMarker bool, err error)

// segmentBody reads a length-prefixed segment body starting at *pos
// (which must point at the first byte after the marker itself) and
// advances *pos past it. The 2-byte length field counts itself, per
// ITU-T T.81.
func segmentBody(data []byte, pos *int, marker uint16) ([]byte, error) {
	if *pos+2 > len(data) {
		return nil, jpegerr.FormatError
	}
	length := int(binary.BigEndian.Uint16(data[*pos : *pos+2]))
	if length < 2 || *pos+length > len(data) {
		return nil, jpegerr.FormatError
	}
	body := data[*pos+2 : *pos+length]
	*pos += length
	return body, nil
}

func markerName(marker uint16) string {
	switch {
	case marker == SOI:
		return "SOI"
	case marker == EOI:
		return "EOI"
	case marker == SOF0:
		return "SOF0"
	case marker == DHT:
		return "DHT"
	case marker == DQT:
		return "DQT"
	case marker == DRI:
		return "DRI"
	case marker == SOS:
		return "SOS"
	case marker >= APP0 && marker <= APP15:
		return "APPn"
	case marker == COM:
		return "COM"
	case IsRST(marker):
		return "RSTn"
	case IsSOF(marker):
		return "SOFn"
	default:
		return "marker"
	}
}

// Parse walks the JPEG marker stream (§4.7): the initial state requires
// SOI, Scanning reads markers and dispatches table/frame/scan parsing,
// APPn/COM segments are skipped silently, an SOF other than SOF0 fails
// Unsupported with the matching scheme, SOS hands the remaining bytes to
// onScan and resumes Scanning at the marker onScan stopped on, and EOI
// reaches the terminal state. In non-strict mode a stream that runs out
// of bytes before an EOI is tolerated (§8); strict mode reports
// FormatError.
//
// log receives one debug event per marker encountered (name and byte
// offset); a zero-value zerolog.Logger is silently disabled, so callers
// that don't care about tracing can pass zerolog.Logger{} or zerolog.Nop().
func Parse(data []byte, strict bool, onScan ScanHandler, log zerolog.Logger) (*State, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		got := uint16(0)
		if len(data) >= 2 {
			got = uint16(data[0])<<8 | uint16(data[1])
		}
		return nil, &jpegerr.IllegalMagicError{Got: got}
	}

	pos := 2
	st := &State{}

	var pendingMarker uint16
	havePending := false

	nextMarker := func() (uint16, bool) {
		if havePending {
			havePending = false
			return pendingMarker, true
		}
		if pos >= len(data) || data[pos] != 0xFF {
			return 0, false
		}
		pos++
		for pos < len(data) && data[pos] == 0xFF {
			pos++ // fill bytes (§4.7 "Skip fill bytes")
		}
		if pos >= len(data) {
			return 0, false
		}
		b := data[pos]
		pos++
		return 0xFF00 | uint16(b), true
	}

	for {
		marker, ok := nextMarker()
		if !ok {
			if strict {
				return st, jpegerr.FormatError
			}
			return st, nil
		}
		log.Debug().Str("marker", markerName(marker)).Int("offset", pos).Msg("segment")

		switch {
		case marker == EOI:
			return st, nil

		case marker == SOI:
			continue

		case IsRST(marker):
			// A restart marker outside entropy-coded data has nothing to
			// resync; §4.7 only defines RSTn handling inside a scan, so a
			// stray one here is skipped rather than treated as fatal.
			continue

		case marker == DQT:
			body, err := segmentBody(data, &pos, marker)
			if err == nil {
				err = parseDQT(body, st)
			}
			if err != nil {
				return st, jpegerr.WrapSegment(err, "DQT", pos)
			}

		case marker == DHT:
			body, err := segmentBody(data, &pos, marker)
			if err == nil {
				err = parseDHT(body, st)
			}
			if err != nil {
				return st, jpegerr.WrapSegment(err, "DHT", pos)
			}

		case marker == DRI:
			body, err := segmentBody(data, &pos, marker)
			if err == nil {
				st.RestartInterval, err = parseDRI(body)
			}
			if err != nil {
				return st, jpegerr.WrapSegment(err, "DRI", pos)
			}

		case marker == SOF0:
			body, err := segmentBody(data, &pos, marker)
			if err != nil {
				return st, jpegerr.WrapSegment(err, "SOF0", pos)
			}
			frame, err := parseSOF(body)
			if err != nil {
				return st, jpegerr.WrapSegment(err, "SOF0", pos)
			}
			if frame.Width == 0 || frame.Height == 0 {
				return st, jpegerr.ZeroError
			}
			st.Frame = frame

		case IsSOF(marker):
			offset := pos
			scheme := schemeForSOF(marker)
			_, _ = segmentBody(data, &pos, marker) // skip the body; we fail regardless
			return st, &jpegerr.UnsupportedError{Scheme: scheme, Marker: marker, Offset: offset}

		case marker == SOS:
			body, err := segmentBody(data, &pos, marker)
			if err != nil {
				return st, jpegerr.WrapSegment(err, "SOS", pos)
			}
			scan, err := parseSOS(body, st)
			if err != nil {
				return st, jpegerr.WrapSegment(err, "SOS", pos)
			}
			st.Scan = scan

			consumed, trailing, haveTrailing, err := onScan(st, data[pos:])
			if err != nil {
				return st, err
			}
			pos += consumed
			if haveTrailing {
				pendingMarker = 0xFF00 | uint16(trailing)
				havePending = true
			}

		default:
			// APPn/COM and anything else with a length field: skip
			// silently (§4.7/§7 — the parser "MAY skip unrecognized APPn
			// segments"; COM is never meaningful to decoding).
			if HasLength(marker) {
				if _, err := segmentBody(data, &pos, marker); err != nil {
					return st, jpegerr.WrapSegment(err, markerName(marker), pos)
				}
			}
		}
	}
}
