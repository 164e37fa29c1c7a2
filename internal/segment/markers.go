// Package segment implements the marker/segment parser and state machine
// (§4.7): it walks the JPEG marker stream, validates framing, and
// populates the frame header, quantization tables, Huffman tables, and
// restart interval, handing scan data off to a caller-supplied callback
// at each SOS. Marker constants and the IsSOF/IsRST/HasLength helpers are
// carried over from the teacher's jpeg/common/markers.go; the marker loop
// itself generalizes the teacher's jpeg/baseline.Decoder.Decode switch
// and borrows its APPn/COM skip-silently behavior, while the overall
// Start/Scanning/EntropyCoded/End state naming follows the documented
// state machine in jrm-1535-jpeg/jpeg.go.
package segment

import "github.com/go-jdec/jdec/internal/jpegerr"

// Marker values, identical to the teacher's jpeg/common package.
const (
	SOI = 0xFFD8
	EOI = 0xFFD9

	SOF0  = 0xFFC0
	SOF1  = 0xFFC1
	SOF2  = 0xFFC2
	SOF3  = 0xFFC3
	SOF5  = 0xFFC5
	SOF6  = 0xFFC6
	SOF7  = 0xFFC7
	SOF9  = 0xFFC9
	SOF10 = 0xFFCA
	SOF11 = 0xFFCB
	SOF13 = 0xFFCD
	SOF14 = 0xFFCE
	SOF15 = 0xFFCF

	DHT = 0xFFC4
	DQT = 0xFFDB
	DRI = 0xFFDD
	SOS = 0xFFDA

	APP0  = 0xFFE0
	APP15 = 0xFFEF
	COM   = 0xFFFE

	RST0 = 0xFFD0
	RST7 = 0xFFD7
)

// IsSOF reports whether marker is any Start-of-Frame variant (baseline or
// one of the unsupported schemes).
func IsSOF(marker uint16) bool {
	return (marker >= SOF0 && marker <= SOF3) ||
		(marker >= SOF5 && marker <= SOF7) ||
		(marker >= SOF9 && marker <= SOF11) ||
		(marker >= SOF13 && marker <= SOF15)
}

// IsRST reports whether marker is one of RST0..RST7.
func IsRST(marker uint16) bool {
	return marker >= RST0 && marker <= RST7
}

// HasLength reports whether marker is followed by a 2-byte segment length.
// SOI, EOI, and RSTn carry no length field.
func HasLength(marker uint16) bool {
	if marker == SOI || marker == EOI {
		return false
	}
	return !IsRST(marker)
}

// schemeForSOF classifies a non-SOF0 Start-of-Frame marker into the
// UnsupportedScheme enumerant named in §9's open question.
func schemeForSOF(marker uint16) jpegerr.UnsupportedScheme {
	switch marker {
	case SOF1:
		return jpegerr.SchemeExtendedSequentialHuffman
	case SOF2:
		return jpegerr.SchemeProgressiveDCTHuffman
	case SOF3:
		return jpegerr.SchemeLosslessHuffman
	case SOF5:
		return jpegerr.SchemeDifferentialSequentialHuffman
	case SOF6:
		return jpegerr.SchemeDifferentialProgressiveHuffman
	case SOF7:
		return jpegerr.SchemeDifferentialLosslessHuffman
	case SOF9:
		return jpegerr.SchemeExtendedSequentialArithmetic
	case SOF10:
		return jpegerr.SchemeProgressiveDCTArithmetic
	case SOF11:
		return jpegerr.SchemeLosslessArithmetic
	case SOF13:
		return jpegerr.SchemeDifferentialSequentialArithmetic
	case SOF14:
		return jpegerr.SchemeDifferentialProgressiveArithmetic
	case SOF15:
		return jpegerr.SchemeDifferentialLosslessArithmetic
	default:
		return jpegerr.SchemeUnknown
	}
}
