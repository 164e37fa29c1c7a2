// Package jpegerr holds the low-level sentinel errors shared by the
// internal decode packages. The public jdec package re-exports these as
// its own sentinels so callers never need to import an internal path.
package jpegerr

// Sentinel is a trivial comparable error type, mirroring the teacher's
// errors.New-based sentinels in jpeg/common/errors.go.
type Sentinel string

func (s Sentinel) Error() string { return string(s) }

var (
	IllegalMagicBytes = Sentinel("illegal magic bytes: not a JPEG stream")
	FormatError       = Sentinel("malformed JPEG data")
	HuffmanDecode     = Sentinel("huffman decode failure")
	DqtError          = Sentinel("invalid quantization table")
	SosError          = Sentinel("invalid start of scan")
	SofError          = Sentinel("invalid start of frame")
	Unsupported       = Sentinel("unsupported JPEG feature")
	UnsetValues       = Sentinel("table referenced before it was defined")
	MCUError          = Sentinel("MCU decode failure")
	ZeroError         = Sentinel("zero image dimension")
	ExhaustedData     = Sentinel("bit reader exhausted input")
)
