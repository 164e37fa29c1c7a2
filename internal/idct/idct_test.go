package idct

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5, 0, 255))
	assert.Equal(t, 255, Clamp(300, 0, 255))
	assert.Equal(t, 128, Clamp(128, 0, 255))
}

func TestDequantize(t *testing.T) {
	var coef [64]int32
	var qt [64]int32
	for i := range coef {
		coef[i] = 2
		qt[i] = 3
	}
	Dequantize(&coef, &qt)
	for i := range coef {
		assert.Equal(t, int32(6), coef[i])
	}
}

func TestScalarDCOnlyBlockIsFlat(t *testing.T) {
	var coef [64]int32
	coef[0] = 64 // DC-only, after dequant, chosen so the level-shifted
	// output lands mid-range: dc = coef[0]<<3 = 512; (512+32)>>6 = 8; +128 = 136.
	out := make([]byte, 64)
	Scalar(&coef, out, 0, 8)
	for _, v := range out {
		assert.Equal(t, byte(136), v)
	}
}

func TestScalarAndWideAgree(t *testing.T) {
	var coef [64]int32
	// A handful of representative non-zero coefficients.
	coef[0] = 80
	coef[1] = -20
	coef[8] = 15
	coef[9] = 5
	coef[63] = -3

	scalarOut := make([]byte, 64)
	wideOut := make([]byte, 64)
	Scalar(&coef, scalarOut, 0, 8)
	Wide(&coef, wideOut, 0, 8)
	assert.Equal(t, scalarOut, wideOut)
}

func TestScalarWritesIntoSharedBuffer(t *testing.T) {
	var coef [64]int32
	coef[0] = 8 // dc = 64; (64+32)>>6=1; +128=129
	stride := 16
	out := make([]byte, stride*8)
	Scalar(&coef, out, 4, stride)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			assert.Equal(t, byte(129), out[r*stride+4+c])
		}
	}
}
