package translator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xenos/asm"
	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/shader"
	"github.com/gogpu/xenos/ucode"
)

func assemble(t *testing.T, source string) []uint32 {
	t.Helper()
	program, err := asm.Parse(source)
	require.NoError(t, err)
	dwords, err := asm.Encode(program)
	require.NoError(t, err)
	return dwords
}

func translate(t *testing.T, shaderType ucode.ShaderType, source string) *shader.Shader {
	t.Helper()
	sh := shader.New(shaderType, assemble(t, source))
	require.NoError(t, Translate(sh, Options{}))
	require.True(t, sh.IsValid())
	return sh
}

func TestVertexBindings(t *testing.T) {
	sh := translate(t, ucode.ShaderVertex, `xvs_3_0
loop_start i3 skip(3)
cexec b12 addr(2) cnt(3)
    vfetch_full r1, r0.x, vf9 fmt(32_32_FLOAT) stride(8)
    vfetch_mini r2
    vfetch_full r3, r0.x, vf10 fmt(8_8_8_8) stride(1)
loop_end i3 addr(1)
exece addr(5) cnt(1)
    mad oPos, r1, c4, c200
`)
	bindings := sh.VertexBindings()
	require.Len(t, bindings, 2)

	assert.Equal(t, uint32(9), bindings[0].FetchConstant)
	assert.Equal(t, uint32(8), bindings[0].StrideWords)
	require.Len(t, bindings[0].Attributes, 2, "mini fetches join the preceding full fetch's binding")
	assert.Equal(t, 0, bindings[0].Attributes[0].AttribIndex)
	assert.Equal(t, 1, bindings[0].Attributes[1].AttribIndex)
	assert.Equal(t, uint32(2), bindings[0].Attributes[0].SizeWords)
	assert.Equal(t, uint32(2), bindings[0].Attributes[1].SizeWords,
		"mini fetches inherit the full fetch's format")

	assert.Equal(t, uint32(10), bindings[1].FetchConstant)
	require.Len(t, bindings[1].Attributes, 1)
	assert.Equal(t, 2, bindings[1].Attributes[0].AttribIndex)
	assert.Equal(t, uint32(1), bindings[1].Attributes[0].SizeWords)

	m := sh.ConstantRegisterMap()
	assert.True(t, m.BoolBitmap.Test(12))
	assert.True(t, m.LoopBitmap.Test(3))
	assert.Equal(t, uint32(2), m.FloatCount)
	assert.Equal(t, uint32(0), m.PackedFloatConstantIndex(4))
	assert.Equal(t, uint32(1), m.PackedFloatConstantIndex(200))

	assert.True(t, strings.HasPrefix(sh.UcodeDisassembly(), "xvs_3_0\n"))
}

func TestTextureBindingsDeduplicate(t *testing.T) {
	sh := translate(t, ucode.ShaderPixel, `xps_3_0
alloc colors size(1)
exec addr(2) cnt(2)
    tfetch2d r1, r0, tf7
    tfetch2d r2, r0, tf7
exece addr(4) cnt(2)
    add oC0, r1, r2
    kill_gt _.____, r1, c3
`)
	bindings := sh.TextureBindings()
	require.Len(t, bindings, 1)
	assert.Equal(t, uint32(7), bindings[0].FetchConstant)
	assert.Equal(t, ucode.Dimension2D, bindings[0].FetchInstr.Dimension)

	assert.True(t, sh.WritesColorTarget(0))
	assert.False(t, sh.WritesColorTarget(1))
	assert.False(t, sh.WritesDepth())
	assert.False(t, sh.ImplicitEarlyZAllowed(), "kills disable implicit early-z")
}

func TestImplicitEarlyZ(t *testing.T) {
	plain := translate(t, ucode.ShaderPixel, `xps_3_0
alloc colors size(1)
exece addr(1) cnt(1)
    mul oC0, r0, c0
`)
	assert.True(t, plain.ImplicitEarlyZAllowed())

	depth := translate(t, ucode.ShaderPixel, `xps_3_0
exece addr(1) cnt(1)
    max oDepth.x___, r0, r0
`)
	assert.True(t, depth.WritesDepth())
	assert.False(t, depth.ImplicitEarlyZAllowed(), "depth writes disable implicit early-z")
}

func TestMemExportStreams(t *testing.T) {
	sh := translate(t, ucode.ShaderPixel, `xps_3_0
alloc export size(2)
exece addr(1) cnt(3)
    mad eA, r0, r1, c5
    mad eA, r0, r1, c9
    mad eA, r0, r1, c5
`)
	assert.Equal(t, []uint32{5, 9}, sh.MemExportStreamConstants(),
		"stream constants are distinct and in first-use order")
	assert.False(t, sh.ImplicitEarlyZAllowed(), "memexport writes disable implicit early-z")
}

func TestDynamicFloatAddressing(t *testing.T) {
	sh := translate(t, ucode.ShaderVertex, `xvs_3_0
exece addr(1) cnt(1)
    add r0, c[a0+5], r1
`)
	m := sh.ConstantRegisterMap()
	assert.True(t, m.FloatDynamicAddressing)
	assert.Equal(t, uint32(shader.FloatConstantCount), m.FloatCount)
	assert.Equal(t, uint32(77), m.PackedFloatConstantIndex(77))
}

func TestDecodeFailureIsFatal(t *testing.T) {
	sh := shader.New(ucode.ShaderPixel, []uint32{0, 0, 0})
	err := Translate(sh, Options{})
	require.Error(t, err)
	assert.True(t, sh.IsTranslated())
	assert.False(t, sh.IsValid())
	require.NotEmpty(t, sh.Errors())
	assert.True(t, sh.Errors()[0].Fatal)

	assert.Error(t, Translate(sh, Options{}), "a shader translates at most once")
}

type fakeBackend struct {
	err error
}

func (b fakeBackend) Translate(p *ir.Program) ([]byte, string, string, error) {
	if b.err != nil {
		return nil, "", "backend log", b.err
	}
	return []byte("translated source"), "host disassembly", "", nil
}

func TestBackendOutput(t *testing.T) {
	src := "xvs_3_0\nexece addr(1) cnt(1)\n    nop\n"

	sh := shader.New(ucode.ShaderVertex, assemble(t, src))
	require.NoError(t, Translate(sh, Options{Backend: fakeBackend{}}))
	assert.True(t, sh.IsValid())
	assert.Equal(t, "translated source", sh.TranslatedBinaryString())
	assert.Equal(t, "host disassembly", sh.HostDisassembly())

	failed := shader.New(ucode.ShaderVertex, assemble(t, src))
	backendErr := errors.New("no translation for opcode")
	err := Translate(failed, Options{Backend: fakeBackend{err: backendErr}})
	assert.ErrorIs(t, err, backendErr)
	assert.True(t, failed.IsTranslated())
	assert.False(t, failed.IsValid())
	assert.Equal(t, "backend log", failed.HostErrorLog())
}
