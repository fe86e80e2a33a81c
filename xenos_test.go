package xenos

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xenos/translator"
	"github.com/gogpu/xenos/ucode"
)

// A small but representative pixel shader: a texture sample, a predicated
// blend against a float constant and a color export.
const sampleListing = `xps_3_0
alloc colors size(1)
cexec b7 addr(2) cnt(2)
    tfetch2d r0, r1, tf2 mag(linear) min(linear)
    (p0) mul r0, r0, c19
exece addr(4) cnt(1)
    mad oC0, r0, c3, c4
`

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	dwords, err := Assemble(sampleListing)
	require.NoError(t, err)

	program, err := Decode(ucode.ShaderPixel, dwords)
	require.NoError(t, err)
	assert.Equal(t, sampleListing, Disassemble(program))

	reassembled, err := Assemble(Disassemble(program))
	require.NoError(t, err)
	assert.Equal(t, dwords, reassembled)
}

func TestShaderAnalysis(t *testing.T) {
	dwords, err := Assemble(sampleListing)
	require.NoError(t, err)

	sh := NewShader(ucode.ShaderPixel, dwords)
	assert.Equal(t, HashMicrocode(dwords), sh.UcodeDataHash())

	require.NoError(t, translator.Translate(sh, translator.Options{}))
	require.True(t, sh.IsValid())

	assert.True(t, sh.WritesColorTarget(0))
	assert.True(t, sh.ImplicitEarlyZAllowed())

	require.Len(t, sh.TextureBindings(), 1)
	assert.Equal(t, uint32(2), sh.TextureBindings()[0].FetchConstant)

	m := sh.ConstantRegisterMap()
	assert.True(t, m.BoolBitmap.Test(7))
	assert.Equal(t, uint32(3), m.FloatCount)
	assert.Equal(t, uint32(0), m.PackedFloatConstantIndex(3))
	assert.Equal(t, uint32(1), m.PackedFloatConstantIndex(4))
	assert.Equal(t, uint32(2), m.PackedFloatConstantIndex(19))

	assert.True(t, strings.HasPrefix(sh.UcodeDisassembly(), "xps_3_0\n"))
}

func TestParseRejectsBadHeader(t *testing.T) {
	_, err := Parse("vs_3_0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shader model")
}
