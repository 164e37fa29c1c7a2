// Package jdec decodes baseline (SOF0) JFIF/JPEG images into raw pixel
// buffers. It is a from-scratch bit-serial decoder: no cgo, no call into
// libjpeg, and no dependency on image/jpeg.
//
// The public surface is deliberately small — Decode plus an Options struct —
// mirroring the teacher's jpeg/baseline.Decoder.Decode entry point, with the
// scan loop, restart handling, and color conversion all internal.
package jdec

import (
	"github.com/rs/zerolog"

	"github.com/go-jdec/jdec/internal/colorconvert"
	"github.com/go-jdec/jdec/internal/jpegerr"
	"github.com/go-jdec/jdec/internal/mcu"
	"github.com/go-jdec/jdec/internal/segment"
)

// ColorSpace selects how decoded YCbCr samples are packed into Image.Pixels.
type ColorSpace = colorconvert.Mode

const (
	RGB              = colorconvert.RGB
	RGBA             = colorconvert.RGBA
	RGBX             = colorconvert.RGBX
	Gray             = colorconvert.Gray
	YCbCrPassthrough = colorconvert.YCbCrPassthrough
)

// Options controls Decode's behavior. The zero value is a usable default:
// RGB output, a 16384x16384 dimension cap, and strict framing disabled (a
// stream that ends after its last MCU without an EOI marker is accepted).
type Options struct {
	// ColorSpace selects the output pixel layout. Defaults to RGB.
	ColorSpace ColorSpace
	// MaxDimensions caps both width and height; headers claiming more are
	// rejected with ErrFormat before any pixel buffer is allocated. Zero
	// selects the default of 16384.
	MaxDimensions int
	// Strict, when true, rejects a stream that ends without an EOI marker
	// with ErrFormat. A stream that runs out of bytes mid-scan fails in
	// either mode; no partial image is returned.
	Strict bool
	// Logger, if set, receives one debug event per marker encountered
	// while parsing. The zero value (no logger configured) disables this.
	Logger zerolog.Logger
}

const defaultMaxDimensions = 16384

// Image is the decoded result. Pixels is packed row-major with no padding;
// its length is Width*Height*BytesPerPixel(ColorSpace).
type Image struct {
	Pixels     []byte
	Width      int
	Height     int
	Components int
	ColorSpace ColorSpace
}

// Decode parses data as a single-frame baseline JPEG and returns its
// decoded pixels under opts.ColorSpace. opts may be nil for the defaults.
//
// Decode fails with ErrIllegalMagicBytes if data does not begin with the
// SOI marker, with an *UnsupportedError if the frame uses a non-baseline
// SOF variant, and with ErrZero if the frame declares a zero width or
// height. A restart-interval resync failure surfaces as *MCUDecodeError.
func Decode(data []byte, opts *Options) (*Image, error) {
	if opts == nil {
		opts = &Options{}
	}
	maxDim := opts.MaxDimensions
	if maxDim == 0 {
		maxDim = defaultMaxDimensions
	}

	var result mcu.Result
	handler := mcu.NewScanHandler(opts.ColorSpace, maxDim, &result)

	st, err := segment.Parse(data, opts.Strict, handler, opts.Logger)
	if err != nil {
		return nil, err
	}
	if st.Frame == nil || result.Image == nil {
		return nil, jpegerr.SosError
	}

	return &Image{
		Pixels:     result.Image,
		Width:      result.Width,
		Height:     result.Height,
		Components: len(st.Frame.Components),
		ColorSpace: opts.ColorSpace,
	}, nil
}
