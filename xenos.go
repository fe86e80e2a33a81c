// Package xenos analyzes Xbox 360 Xenos GPU shader microcode. It decodes
// the binary stream into parsed instructions, disassembles and reassembles
// the text form, and derives the metadata a host renderer needs to run a
// guest shader.
//
// The subpackages do the work; this package is the small front door:
//
//	ucode      raw word formats and opcode tables
//	ir         parsed instructions and their derived properties
//	decoder    binary to parsed instructions
//	disasm     parsed instructions to assembly text
//	asm        assembly text back to binary
//	shader     the analyzed shader aggregate
//	translator the analysis pass and backend hook
package xenos

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/gogpu/xenos/asm"
	"github.com/gogpu/xenos/decoder"
	"github.com/gogpu/xenos/disasm"
	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/shader"
	"github.com/gogpu/xenos/ucode"
)

// HashMicrocode returns the content hash used to identify a microcode
// stream, over its little-endian byte form.
func HashMicrocode(dwords []uint32) uint64 {
	buf := make([]byte, 4*len(dwords))
	for i, d := range dwords {
		binary.LittleEndian.PutUint32(buf[4*i:], d)
	}
	return xxhash.Sum64(buf)
}

// Decode parses a microcode stream.
func Decode(shaderType ucode.ShaderType, dwords []uint32) (*ir.Program, error) {
	return decoder.Decode(shaderType, dwords)
}

// Disassemble renders a parsed program as assembly text.
func Disassemble(p *ir.Program) string {
	return disasm.Program(p)
}

// Parse assembles source text into a parsed program.
func Parse(source string) (*ir.Program, error) {
	return asm.Parse(source)
}

// Assemble turns assembly text into microcode words.
func Assemble(source string) ([]uint32, error) {
	p, err := asm.Parse(source)
	if err != nil {
		return nil, err
	}
	return asm.Encode(p)
}

// NewShader wraps a microcode stream in an untranslated shader.
func NewShader(shaderType ucode.ShaderType, dwords []uint32) *shader.Shader {
	return shader.New(shaderType, dwords)
}
