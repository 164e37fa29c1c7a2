package jpegerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnsupportedScheme enumerates the SOF variants the decoder recognizes but
// refuses to decode, per §6's marker table and §9's open question about
// treating progressive JPEG as baseline-only.
type UnsupportedScheme int

const (
	SchemeUnknown UnsupportedScheme = iota
	SchemeExtendedSequentialHuffman
	SchemeProgressiveDCTHuffman
	SchemeLosslessHuffman
	SchemeDifferentialSequentialHuffman
	SchemeDifferentialProgressiveHuffman
	SchemeDifferentialLosslessHuffman
	SchemeExtendedSequentialArithmetic
	SchemeProgressiveDCTArithmetic
	SchemeLosslessArithmetic
	SchemeDifferentialSequentialArithmetic
	SchemeDifferentialProgressiveArithmetic
	SchemeDifferentialLosslessArithmetic
)

func (s UnsupportedScheme) String() string {
	switch s {
	case SchemeExtendedSequentialHuffman:
		return "ExtendedSequentialHuffman"
	case SchemeProgressiveDCTHuffman:
		return "ProgressiveDctHuffman"
	case SchemeLosslessHuffman:
		return "LosslessHuffman"
	case SchemeDifferentialSequentialHuffman:
		return "DifferentialSequentialHuffman"
	case SchemeDifferentialProgressiveHuffman:
		return "DifferentialProgressiveHuffman"
	case SchemeDifferentialLosslessHuffman:
		return "DifferentialLosslessHuffman"
	case SchemeExtendedSequentialArithmetic:
		return "ExtendedSequentialArithmetic"
	case SchemeProgressiveDCTArithmetic:
		return "ProgressiveDctArithmetic"
	case SchemeLosslessArithmetic:
		return "LosslessArithmetic"
	case SchemeDifferentialSequentialArithmetic:
		return "DifferentialSequentialArithmetic"
	case SchemeDifferentialProgressiveArithmetic:
		return "DifferentialProgressiveArithmetic"
	case SchemeDifferentialLosslessArithmetic:
		return "DifferentialLosslessArithmetic"
	default:
		return "Unknown"
	}
}

// IllegalMagicError reports the two bytes actually found where the SOI
// marker (0xFFD8) was required, per §8's "An input beginning with
// 0xFF 0xD9 → IllegalMagicBytes(0xFFD9)" scenario.
type IllegalMagicError struct {
	Got uint16
}

func (e *IllegalMagicError) Error() string {
	return fmt.Sprintf("illegal magic bytes: got 0x%04X, want 0xFFD8", e.Got)
}

func (e *IllegalMagicError) Unwrap() error { return IllegalMagicBytes }

// UnsupportedError reports a recognized but unsupported SOF marker.
type UnsupportedError struct {
	Scheme UnsupportedScheme
	Marker uint16
	Offset int
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s (marker 0x%04X) at offset %d", e.Scheme, e.Marker, e.Offset)
}

func (e *UnsupportedError) Unwrap() error { return Unsupported }

// MCUDecodeError reports a restart-marker resync failure with the MCU index
// after which a restart marker was expected and the marker actually found
// there (0 when none was found), per SPEC_FULL's restart diagnostics.
type MCUDecodeError struct {
	Cause     error
	WantAfter int
	GotMarker uint16
	MCUIndex  int
}

func (e *MCUDecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mcu %d: %s (expected restart after mcu %d, saw marker 0x%04X)",
			e.MCUIndex, e.Cause, e.WantAfter, e.GotMarker)
	}
	return fmt.Sprintf("mcu %d: expected restart after mcu %d, saw marker 0x%04X", e.MCUIndex, e.WantAfter, e.GotMarker)
}

func (e *MCUDecodeError) Unwrap() error { return MCUError }

// SegmentError wraps a sentinel error with the offending segment name and
// the byte offset it was found at, so the top-level Decode call can report
// "the offending segment and the byte offset" per the error handling design.
type SegmentError struct {
	Cause   error
	Segment string
	Offset  int
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Cause, e.Offset)
}

func (e *SegmentError) Unwrap() error { return e.Cause }

// WrapSegment annotates cause with segment/offset context. The cause is
// first run through pkg/errors.Wrapf so a stack trace is attached at the
// point of failure (SegmentError.Error prints only the message); the
// sentinel stays reachable through the Unwrap chain for errors.Is.
func WrapSegment(cause error, segment string, offset int) error {
	if cause == nil {
		return nil
	}
	return &SegmentError{
		Cause:   errors.Wrapf(cause, "parsing %s segment", segment),
		Segment: segment,
		Offset:  offset,
	}
}
