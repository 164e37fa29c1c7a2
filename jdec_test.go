package jdec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-jdec/jdec"
	"github.com/go-jdec/jdec/internal/testjpeg"
)

func solidImage(width, height, components int, value byte) []byte {
	pix := make([]byte, width*height*components)
	for i := range pix {
		pix[i] = value
	}
	return pix
}

func TestDecodeSolidGrayBlock(t *testing.T) {
	data, err := testjpeg.Encode(solidImage(8, 8, 1, 200), 8, 8, 1, 100, nil)
	require.NoError(t, err)

	img, err := jdec.Decode(data, &jdec.Options{ColorSpace: jdec.Gray})
	require.NoError(t, err)
	assert.Equal(t, 8, img.Width)
	assert.Equal(t, 8, img.Height)
	for _, v := range img.Pixels {
		assert.InDelta(t, 200, int(v), 3)
	}
}

func TestDecodeRGBRoundTrip444(t *testing.T) {
	width, height := 16, 16
	pix := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			pix[i+0] = byte(x * 16)
			pix[i+1] = byte(y * 16)
			pix[i+2] = 128
		}
	}

	data, err := testjpeg.Encode(pix, width, height, 3, 100, testjpeg.Sampling444())
	require.NoError(t, err)

	img, err := jdec.Decode(data, &jdec.Options{ColorSpace: jdec.RGB})
	require.NoError(t, err)
	require.Equal(t, width, img.Width)
	require.Equal(t, height, img.Height)
	require.Len(t, img.Pixels, width*height*3)

	for i := range pix {
		assert.InDelta(t, int(pix[i]), int(img.Pixels[i]), 4, "byte %d", i)
	}
}

func TestDecodeRGB420Subsampled(t *testing.T) {
	width, height := 16, 16
	pix := solidImage(width, height, 3, 0)
	for i := 0; i < len(pix); i += 3 {
		pix[i+0] = 180
		pix[i+1] = 90
		pix[i+2] = 45
	}

	data, err := testjpeg.Encode(pix, width, height, 3, 100, testjpeg.Sampling420())
	require.NoError(t, err)

	img, err := jdec.Decode(data, &jdec.Options{ColorSpace: jdec.RGB})
	require.NoError(t, err)
	assert.Equal(t, width*height*3, len(img.Pixels))
	// A flat-color image survives subsampling exactly.
	for i := 0; i < len(pix); i += 3 {
		assert.InDelta(t, 180, int(img.Pixels[i+0]), 3)
		assert.InDelta(t, 90, int(img.Pixels[i+1]), 3)
		assert.InDelta(t, 45, int(img.Pixels[i+2]), 3)
	}
}

func TestDecodeRejectsBadMagicBytes(t *testing.T) {
	_, err := jdec.Decode([]byte{0xFF, 0xD9, 0x00, 0x01}, nil)
	assert.ErrorIs(t, err, jdec.ErrIllegalMagicBytes)
}

func TestDecodeGrayscaleSkipsChromaIDCT(t *testing.T) {
	width, height := 16, 16
	pix := solidImage(width, height, 3, 0)
	for i := 0; i < len(pix); i += 3 {
		pix[i+0] = 64
		pix[i+1] = 200
		pix[i+2] = 10
	}
	data, err := testjpeg.Encode(pix, width, height, 3, 90, testjpeg.Sampling420())
	require.NoError(t, err)

	img, err := jdec.Decode(data, &jdec.Options{ColorSpace: jdec.Gray})
	require.NoError(t, err)
	assert.Equal(t, width*height, len(img.Pixels))
	// Gray output is the luma plane: (64,200,10) encodes to Y ≈ 138.
	for _, v := range img.Pixels {
		assert.InDelta(t, 138, int(v), 4)
	}
}
