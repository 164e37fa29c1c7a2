package upsample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity1x1(t *testing.T) {
	src := []byte{1, 2, 3}
	assert.Equal(t, src, Identity1x1(src))
}

func TestH2V1FlatRowStaysFlat(t *testing.T) {
	src := []byte{100, 100, 100, 100}
	out := H2V1(src)
	assert.Len(t, out, 8)
	for _, v := range out {
		assert.Equal(t, byte(100), v)
	}
}

func TestH2V1EdgeReplication(t *testing.T) {
	src := []byte{50, 200}
	out := H2V1(src)
	// Left edge of first sample replicates itself: (3*50+50+2)/4 = 50.
	assert.Equal(t, byte(50), out[0])
	// Right edge of last sample replicates itself: (3*200+200+2)/4 = 200.
	assert.Equal(t, byte(200), out[3])
}

func TestV1V2FlatColumnStaysFlat(t *testing.T) {
	cur := []byte{80, 80}
	top, bottom := V1V2(nil, cur, nil)
	assert.Equal(t, []byte{80, 80}, top)
	assert.Equal(t, []byte{80, 80}, bottom)
}

func TestV1V2UsesNeighborsWhenPresent(t *testing.T) {
	prev := []byte{0}
	cur := []byte{100}
	next := []byte{200}
	top, bottom := V1V2(prev, cur, next)
	assert.Equal(t, byte((3*100+0+2)/4), top[0])
	assert.Equal(t, byte((3*100+200+2)/4), bottom[0])
}

func TestH2V2ComposesBothAxes(t *testing.T) {
	cur := []byte{100, 100}
	top, bottom := H2V2(nil, cur, nil)
	assert.Len(t, top, 4)
	assert.Len(t, bottom, 4)
	for _, v := range top {
		assert.Equal(t, byte(100), v)
	}
	for _, v := range bottom {
		assert.Equal(t, byte(100), v)
	}
}
