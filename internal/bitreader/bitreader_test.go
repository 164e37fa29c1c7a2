package bitreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-jdec/jdec/internal/jpegerr"
)

func TestGetReadsMSBFirst(t *testing.T) {
	// 0b10110100 0b11001010
	r := New([]byte{0xB4, 0xCA})
	v, err := r.Get(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xB), v)
	v, err = r.Get(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4), v)
	v, err = r.Get(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCA), v)
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := New([]byte{0xF0})
	v, err := r.Peek(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xF), v)
	v2, err := r.Peek(4)
	require.NoError(t, err)
	assert.Equal(t, v, v2)
}

func TestByteDestuffing(t *testing.T) {
	// 0xFF 0x00 is a stuffed 0xFF data byte, should read as a single 0xFF.
	r := New([]byte{0xFF, 0x00, 0xAB})
	v, err := r.Get(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF), v)
	v, err = r.Get(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAB), v)
}

func TestMarkerDetection(t *testing.T) {
	r := New([]byte{0xAB, 0xFF, 0xD9})
	v, err := r.Get(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAB), v)
	_, err = r.Get(8)
	assert.ErrorIs(t, err, MarkerFound)
	marker, have := r.PendingMarker()
	assert.True(t, have)
	assert.Equal(t, byte(0xD9), marker)
}

func TestReceiveExtendSignExtension(t *testing.T) {
	// category 3, value 0b011 = 3: high bit clear -> negative, 3 - 7 = -4.
	r := New([]byte{0b01100000})
	v, err := r.ReceiveExtend(3)
	require.NoError(t, err)
	assert.Equal(t, -4, v)

	// category 3, value 0b000 = 0: high bit clear -> negative, 0 - 7 = -7.
	r2 := New([]byte{0b00000000})
	v2, err := r2.ReceiveExtend(3)
	require.NoError(t, err)
	assert.Equal(t, -7, v2)
}

func TestReceiveExtendZeroCategory(t *testing.T) {
	r := New([]byte{0xFF, 0xFF})
	v, err := r.ReceiveExtend(0)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestExhaustedData(t *testing.T) {
	r := New([]byte{})
	_, err := r.Get(1)
	assert.ErrorIs(t, err, jpegerr.ExhaustedData)
}

func TestAlignToByteAndSync(t *testing.T) {
	r := New([]byte{0xAB, 0xFF, 0xD0})
	_, err := r.Get(4)
	require.NoError(t, err)
	r.AlignToByte()
	require.NoError(t, r.Sync())
	marker, have := r.PendingMarker()
	assert.True(t, have)
	assert.Equal(t, byte(0xD0), marker)
}
