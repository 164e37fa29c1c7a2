// Package kernels implements the capability-set dispatch described in
// §9 DESIGN NOTES: "model kernels as a capability set {idct,
// color_convert_single, color_convert_wide, upsample} supplied to the
// orchestrator at scan setup. CPU-feature detection chooses an
// implementation variant once per decode." The registry shape (a
// mutex-protected name-keyed map with Register/Get) is adapted from the
// teacher's codec/registry.go, which indexed transfer-syntax codecs by
// UID; here it indexes kernel capability sets by name and is driven by
// klauspost/cpuid instead of a caller-supplied UID.
package kernels

import (
	"sync"

	"github.com/klauspost/cpuid/v2"

	"github.com/go-jdec/jdec/internal/colorconvert"
	"github.com/go-jdec/jdec/internal/idct"
	"github.com/go-jdec/jdec/internal/upsample"
)

// IDCTFunc performs a dequantized-coefficient inverse DCT, writing the
// samples into out at the given row offset/stride.
type IDCTFunc func(coef *[64]int32, out []byte, offset, stride int)

// ColorConvertFunc converts one row of samples into out starting at
// cursor, returning the advanced cursor.
type ColorConvertFunc func(mode colorconvert.Mode, y, cb, cr []byte, out []byte, cursor int) int

// Upsamplers bundles the chroma upsampling variants required by §4.5.
// Every registered capability shares the same upsample implementation:
// upsampling is a memory-bound box filter, not an arithmetic kernel the
// pack's examples ever vectorize, so there is nothing CPU-feature-specific
// to dispatch on here.
type Upsamplers struct {
	H2V1 func(src []byte) []byte
	V1V2 func(prev, cur, next []byte) (top, bottom []byte)
	H2V2 func(prev, cur, next []byte) (top, bottom []byte)
}

// Capability is the full kernel set the orchestrator calls through
// without further branching once chosen, per §9.
type Capability struct {
	Name               string
	IDCT               IDCTFunc
	ColorConvertSingle ColorConvertFunc
	ColorConvertWide   ColorConvertFunc
	Upsample           Upsamplers
}

var (
	mu       sync.RWMutex
	registry = map[string]Capability{}
)

// Register adds or replaces a named capability set.
func Register(c Capability) {
	mu.Lock()
	defer mu.Unlock()
	registry[c.Name] = c
}

// Get looks up a capability set by name.
func Get(name string) (Capability, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[name]
	return c, ok
}

var sharedUpsamplers = Upsamplers{
	H2V1: upsample.H2V1,
	V1V2: upsample.V1V2,
	H2V2: upsample.H2V2,
}

func init() {
	Register(Capability{
		Name:               "scalar",
		IDCT:               idct.Scalar,
		ColorConvertSingle: colorconvert.RowScalar,
		ColorConvertWide:   colorconvert.RowScalar,
		Upsample:           sharedUpsamplers,
	})
	Register(Capability{
		Name:               "sse2",
		IDCT:               idct.Wide,
		ColorConvertSingle: colorconvert.RowScalar,
		ColorConvertWide:   colorconvert.RowWide,
		Upsample:           sharedUpsamplers,
	})
	Register(Capability{
		Name:               "avx2",
		IDCT:               idct.Wide,
		ColorConvertSingle: colorconvert.RowScalar,
		ColorConvertWide:   colorconvert.RowWide,
		Upsample:           sharedUpsamplers,
	})
}

// Select picks the best capability set for the running CPU, falling back
// to "scalar" (the mandatory fallback per §4.4) when no wider ISA is
// detected. Detection runs through klauspost/cpuid/v2's package-level
// cpuid.CPU, populated once at process init.
func Select() Capability {
	name := "scalar"
	if cpuid.CPU.Supports(cpuid.AVX2) {
		name = "avx2"
	} else if cpuid.CPU.Supports(cpuid.SSE2) {
		name = "sse2"
	}
	c, ok := Get(name)
	if !ok {
		c, _ = Get("scalar")
	}
	return c
}
