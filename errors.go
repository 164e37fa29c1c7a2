package jdec

import (
	"github.com/go-jdec/jdec/internal/jpegerr"
)

// Sentinel errors, one per error kind named in the design. Compare with
// errors.Is; the wrapped offset/segment context is available via Error().
// These alias the internal jpegerr sentinels so the same error value flows
// from internal/* packages up through the public API unchanged.
var (
	ErrIllegalMagicBytes error = jpegerr.IllegalMagicBytes
	ErrFormat            error = jpegerr.FormatError
	ErrHuffmanDecode     error = jpegerr.HuffmanDecode
	ErrDqt               error = jpegerr.DqtError
	ErrSos               error = jpegerr.SosError
	ErrSof               error = jpegerr.SofError
	ErrUnsupported       error = jpegerr.Unsupported
	ErrUnsetValues       error = jpegerr.UnsetValues
	ErrMCU               error = jpegerr.MCUError
	ErrZero              error = jpegerr.ZeroError
	ErrExhaustedData     error = jpegerr.ExhaustedData
)

// UnsupportedScheme enumerates the SOF variants the decoder recognizes but
// refuses to decode, per §6's marker table and §9's open question about
// treating progressive JPEG as baseline-only.
type UnsupportedScheme = jpegerr.UnsupportedScheme

const (
	SchemeUnknown                            = jpegerr.SchemeUnknown
	SchemeExtendedSequentialHuffman          = jpegerr.SchemeExtendedSequentialHuffman
	SchemeProgressiveDCTHuffman              = jpegerr.SchemeProgressiveDCTHuffman
	SchemeLosslessHuffman                    = jpegerr.SchemeLosslessHuffman
	SchemeDifferentialSequentialHuffman      = jpegerr.SchemeDifferentialSequentialHuffman
	SchemeDifferentialProgressiveHuffman     = jpegerr.SchemeDifferentialProgressiveHuffman
	SchemeDifferentialLosslessHuffman        = jpegerr.SchemeDifferentialLosslessHuffman
	SchemeExtendedSequentialArithmetic       = jpegerr.SchemeExtendedSequentialArithmetic
	SchemeProgressiveDCTArithmetic           = jpegerr.SchemeProgressiveDCTArithmetic
	SchemeLosslessArithmetic                 = jpegerr.SchemeLosslessArithmetic
	SchemeDifferentialSequentialArithmetic   = jpegerr.SchemeDifferentialSequentialArithmetic
	SchemeDifferentialProgressiveArithmetic  = jpegerr.SchemeDifferentialProgressiveArithmetic
	SchemeDifferentialLosslessArithmetic     = jpegerr.SchemeDifferentialLosslessArithmetic
)

// UnsupportedError reports a recognized but unsupported SOF marker.
type UnsupportedError = jpegerr.UnsupportedError

// MCUDecodeError reports a restart-marker resync failure with the MCU index
// after which a restart marker was expected and the marker actually found
// there (0 when none was found), per SPEC_FULL's restart diagnostics.
type MCUDecodeError = jpegerr.MCUDecodeError
