package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xenos/decoder"
	"github.com/gogpu/xenos/disasm"
	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/ucode"
)

const vertexListing = `xvs_3_0
exec addr(1) cnt(2)
    vfetch_full r1, r0.x, vf95 fmt(16_16_16_16_FLOAT) stride(4)
    (s) vfetch_mini r2
alloc position size(0)
exece addr(3) cnt(1)
    mad oPos, r1, c0, c1
`

const pixelListing = `xps_3_0
alloc colors size(0)
exec addr(2) cnt(2)
    tfetch2d r0, r1, tf3 mag(linear) lodbias(-0.5)
    (p0) add r2, r0, c7
+ muls r2.___w, r3.w
exece addr(4) cnt(1)
    kill_gt _.____, r2, c200
`

const controlFlowListing = `xvs_3_0
loop_start i5 skip(4)
cexec !b14 addr(2) cnt(0)
cexec_pred p0 addr(2) cnt(0) yield
loop_end i5 addr(1) break(!p0)
ccall b3 addr(5)
cjmp !p0 addr(6)
ret
exece addr(2) cnt(1)
    nop
`

// Assembling a canonical listing and disassembling the resulting words
// must reproduce the listing byte for byte, and the decoded instructions
// must match the parsed ones.
func TestTextRoundTrip(t *testing.T) {
	listings := map[string]string{
		"vertex":       vertexListing,
		"pixel":        pixelListing,
		"control flow": controlFlowListing,
	}
	for name, src := range listings {
		t.Run(name, func(t *testing.T) {
			program, err := Parse(src)
			require.NoError(t, err)
			dwords, err := Encode(program)
			require.NoError(t, err)

			decoded, err := decoder.Decode(program.ShaderType, dwords)
			require.NoError(t, err)
			assert.Equal(t, program, decoded)
			assert.Equal(t, src, disasm.Program(decoded))
		})
	}
}

// Words decoded, printed, reparsed and re-encoded must come back identical.
func TestBinaryRoundTrip(t *testing.T) {
	for name, src := range map[string]string{"vertex": vertexListing, "pixel": pixelListing} {
		t.Run(name, func(t *testing.T) {
			program, err := Parse(src)
			require.NoError(t, err)
			dwords, err := Encode(program)
			require.NoError(t, err)

			decoded, err := decoder.Decode(program.ShaderType, dwords)
			require.NoError(t, err)
			reparsed, err := Parse(disasm.Program(decoded))
			require.NoError(t, err)
			dwords2, err := Encode(reparsed)
			require.NoError(t, err)
			assert.Equal(t, dwords, dwords2)
		})
	}
}

func TestParseOperandForms(t *testing.T) {
	src := `xps_3_0
exece addr(1) cnt(1)
    dp4 r2.x___, -|c[a0+3]|, r[aL+1].wzyx
`
	program, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, program.Instructions, 2)
	alu, ok := program.Instructions[1].(ir.AluInstruction)
	require.True(t, ok)

	op := alu.VectorOperands[0]
	assert.Equal(t, ir.SourceConstantFloat, op.StorageSource)
	assert.Equal(t, uint32(3), op.StorageIndex)
	assert.Equal(t, ir.AddressAbsolute, op.StorageAddressingMode)
	assert.True(t, op.Negate)
	assert.True(t, op.AbsoluteValue)
	assert.True(t, op.IsStandardSwizzle())

	op = alu.VectorOperands[1]
	assert.Equal(t, ir.AddressRelative, op.StorageAddressingMode)
	assert.Equal(t, [4]ir.SwizzleSource{ir.SwizzleW, ir.SwizzleZ, ir.SwizzleY, ir.SwizzleX}, op.Components)

	assert.Equal(t, uint32(0b0001), alu.VectorAndConstantResult.OriginalWriteMask)

	dwords, err := Encode(program)
	require.NoError(t, err)
	decoded, err := decoder.Decode(program.ShaderType, dwords)
	require.NoError(t, err)
	assert.Equal(t, src, disasm.Program(decoded))
}

// A short operand swizzle replicates its last lane into the unspecified
// ones.
func TestOperandSwizzleReplication(t *testing.T) {
	program, err := Parse(`xvs_3_0
exece addr(1) cnt(1)
    mul r1, r2.yz, c9.w
`)
	require.NoError(t, err)
	alu := program.Instructions[1].(ir.AluInstruction)
	assert.Equal(t, uint32(2), alu.VectorOperands[0].ComponentCount)
	assert.Equal(t,
		[4]ir.SwizzleSource{ir.SwizzleY, ir.SwizzleZ, ir.SwizzleZ, ir.SwizzleZ},
		alu.VectorOperands[0].Components)
	assert.Equal(t,
		[4]ir.SwizzleSource{ir.SwizzleW, ir.SwizzleW, ir.SwizzleW, ir.SwizzleW},
		alu.VectorOperands[1].Components)
}

// An omitted ALU half parses to the canonical default so reassembly is
// exact.
func TestOmittedAluHalves(t *testing.T) {
	program, err := Parse(`xvs_3_0
exece addr(1) cnt(2)
    add r1, r2, r3
    rcp r4.x___, c2.w
`)
	require.NoError(t, err)
	vectorOnly := program.Instructions[1].(ir.AluInstruction)
	assert.True(t, vectorOnly.IsScalarOpDefaultNop())
	assert.False(t, vectorOnly.IsVectorOpDefaultNop())

	scalarOnly := program.Instructions[2].(ir.AluInstruction)
	assert.True(t, scalarOnly.IsVectorOpDefaultNop())
	assert.False(t, scalarOnly.IsScalarOpDefaultNop())
	assert.Equal(t, ucode.AluScalarRcp, scalarOnly.ScalarOpcode)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing header", "exec addr(1) cnt(0)\n"},
		{"unknown mnemonic", "xvs_3_0\nexece addr(1) cnt(1)\n    frobnicate r0\n"},
		{"exec too large", "xvs_3_0\nexece addr(1) cnt(7)\n"},
		{"mini without full", "xvs_3_0\nexece addr(1) cnt(1)\n    vfetch_mini r2\n"},
		{"bad swizzle", "xvs_3_0\nexece addr(1) cnt(1)\n    add r1, r2.q, r3\n"},
		{"short result mask", "xvs_3_0\nexece addr(1) cnt(1)\n    add r1.x, r2, r3\n"},
		{"too many operands", "xvs_3_0\nexece addr(1) cnt(1)\n    add r1, r2, r3, r4, r5\n"},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.src); err == nil {
			t.Errorf("%s: Parse accepted invalid input", tt.name)
		}
	}
}

func TestEncodeRejectsOverlap(t *testing.T) {
	program, err := Parse("xvs_3_0\nexece addr(0) cnt(1)\n    nop\n")
	require.NoError(t, err)
	_, err = Encode(program)
	assert.Error(t, err, "slot 0 overlaps the control flow words")
}

func TestCommentsAndBlankLines(t *testing.T) {
	src := "xvs_3_0  ; header\n\n; whole-line comment\nexece addr(1) cnt(1)\n    nop ; trailing\n"
	program, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, program.Instructions, 2)
}
