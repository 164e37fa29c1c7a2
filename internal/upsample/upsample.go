// Package upsample implements the chroma upsampling kernels (§4.5): for
// each non-luma component, the variant is chosen from the pair
// (Hmax/Hi, Vmax/Vi). None of the example pack's JPEG decoders (the
// teacher included) implement fancy upsampling explicitly — its decoder
// only handles 4:4:4 — so this package is grounded directly in spec.md's
// §4.5 formula rather than adapted teacher code; DESIGN.md records that.
package upsample

// clamp8 restricts v to a valid byte range.
func clamp8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// Identity1x1 returns src unchanged; used when Hi=Hmax and Vi=Vmax.
func Identity1x1(src []byte) []byte { return src }

// H2V1 doubles src horizontally using the box-plus-linear tap
// (3a+b+2)/4, (a+3b+2)/4, where b is the appropriate edge neighbor.
// The output has length 2*len(src).
func H2V1(src []byte) []byte {
	n := len(src)
	out := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		a := int(src[i])
		left := a
		if i > 0 {
			left = int(src[i-1])
		}
		right := a
		if i < n-1 {
			right = int(src[i+1])
		}
		out[2*i] = clamp8((3*a + left + 2) / 4)
		out[2*i+1] = clamp8((3*a + right + 2) / 4)
	}
	return out
}

// V1V2 produces the two output rows (top half-row, bottom half-row)
// generated from one source row given its vertical neighbors, using the
// same box-plus-linear tap mirrored across rows.
func V1V2(prev, cur, next []byte) (top, bottom []byte) {
	n := len(cur)
	top = make([]byte, n)
	bottom = make([]byte, n)
	for i := 0; i < n; i++ {
		c := int(cur[i])
		p := c
		if prev != nil {
			p = int(prev[i])
		}
		nx := c
		if next != nil {
			nx = int(next[i])
		}
		top[i] = clamp8((3*c + p + 2) / 4)
		bottom[i] = clamp8((3*c + nx + 2) / 4)
	}
	return top, bottom
}

// H2V2 upsamples both dimensions by 2: it expands prev/cur/next
// horizontally first, then applies the vertical tap to the expanded rows,
// composing the two 1-D kernels as §4.5 describes them.
func H2V2(prev, cur, next []byte) (top, bottom []byte) {
	var prevW, nextW []byte
	curW := H2V1(cur)
	if prev != nil {
		prevW = H2V1(prev)
	}
	if next != nil {
		nextW = H2V1(next)
	}
	return V1V2(prevW, curW, nextW)
}
