// Package shader holds the analyzed form of one Xenos shader: its
// microcode, the bindings and constant registers translation discovered,
// and whatever a host backend produced from it.
package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/gogpu/xenos/ucode"
)

// Error is one diagnostic produced during translation. Fatal errors make
// the shader unusable; the rest are advisory.
type Error struct {
	Fatal   bool
	Message string
}

func (e Error) Error() string { return e.Message }

// HostVertexShaderType says what pipeline stage a vertex shader is
// translated for on the host. Tessellated draws run the microcode in a
// domain stage, so one guest shader may need several host translations.
type HostVertexShaderType int

const (
	HostVertexShaderVertex HostVertexShaderType = iota
	HostVertexShaderPointList
	HostVertexShaderRectangleList
	HostVertexShaderLineDomain
	HostVertexShaderTriangleDomain
	HostVertexShaderQuadDomain
)

func (t HostVertexShaderType) String() string {
	switch t {
	case HostVertexShaderVertex:
		return "vertex"
	case HostVertexShaderPointList:
		return "point list"
	case HostVertexShaderRectangleList:
		return "rectangle list"
	case HostVertexShaderLineDomain:
		return "line domain"
	case HostVertexShaderTriangleDomain:
		return "triangle domain"
	case HostVertexShaderQuadDomain:
		return "quad domain"
	}
	return "unknown"
}

// Shader is one guest shader. It starts as bare microcode; translation
// fills in the analyzed metadata and host output exactly once.
type Shader struct {
	shaderType ucode.ShaderType
	ucodeData  []uint32
	ucodeHash  uint64

	translated bool
	isValid    bool
	errors     []Error

	vertexBindings           []VertexBinding
	textureBindings          []TextureBinding
	constantMap              *ConstantRegisterMap
	memExportStreamConstants []uint32
	writesColorTargets       [4]bool
	writesDepth              bool
	implicitEarlyZAllowed    bool
	ucodeDisassembly         string

	hostVertexShaderType HostVertexShaderType
	translatedBinary     []byte
	hostDisassembly      string
	hostErrorLog         string
	hostBinary           []byte
}

// New wraps a microcode stream. The dwords are copied.
func New(shaderType ucode.ShaderType, dwords []uint32) *Shader {
	data := make([]uint32, len(dwords))
	copy(data, dwords)
	return &Shader{
		shaderType:  shaderType,
		ucodeData:   data,
		ucodeHash:   xxhash.Sum64(dwordBytes(data)),
		constantMap: NewConstantRegisterMap(),
	}
}

// Translation is everything one translation pass produces. Metadata fields
// are only meaningful when Valid is set.
type Translation struct {
	Errors []Error
	Valid  bool

	VertexBindings           []VertexBinding
	TextureBindings          []TextureBinding
	ConstantRegisterMap      *ConstantRegisterMap
	MemExportStreamConstants []uint32
	WritesColorTargets       [4]bool
	WritesDepth              bool
	ImplicitEarlyZAllowed    bool
	UcodeDisassembly         string

	HostVertexShaderType HostVertexShaderType
	TranslatedBinary     []byte
	HostDisassembly      string
	HostErrorLog         string
}

// ApplyTranslation installs a translation result. A shader is translated
// at most once; repeat calls fail.
func (s *Shader) ApplyTranslation(t *Translation) error {
	if s.translated {
		return fmt.Errorf("shader %016x is already translated", s.ucodeHash)
	}
	s.translated = true
	s.errors = t.Errors
	s.isValid = t.Valid
	for _, e := range t.Errors {
		if e.Fatal {
			s.isValid = false
		}
	}
	s.vertexBindings = t.VertexBindings
	s.textureBindings = t.TextureBindings
	if t.ConstantRegisterMap != nil {
		s.constantMap = t.ConstantRegisterMap
	}
	s.memExportStreamConstants = t.MemExportStreamConstants
	s.writesColorTargets = t.WritesColorTargets
	s.writesDepth = t.WritesDepth
	s.implicitEarlyZAllowed = t.ImplicitEarlyZAllowed
	s.ucodeDisassembly = t.UcodeDisassembly
	s.hostVertexShaderType = t.HostVertexShaderType
	s.translatedBinary = t.TranslatedBinary
	s.hostDisassembly = t.HostDisassembly
	s.hostErrorLog = t.HostErrorLog
	return nil
}

func (s *Shader) Type() ucode.ShaderType { return s.shaderType }
func (s *Shader) UcodeData() []uint32    { return s.ucodeData }
func (s *Shader) UcodeDataHash() uint64  { return s.ucodeHash }

// IsTranslated reports whether a translation has been applied, successful
// or not.
func (s *Shader) IsTranslated() bool { return s.translated }

// IsValid reports whether translation succeeded without fatal errors.
func (s *Shader) IsValid() bool { return s.isValid }

func (s *Shader) Errors() []Error { return s.errors }

func (s *Shader) VertexBindings() []VertexBinding   { return s.vertexBindings }
func (s *Shader) TextureBindings() []TextureBinding { return s.textureBindings }

func (s *Shader) ConstantRegisterMap() *ConstantRegisterMap { return s.constantMap }

// MemExportStreamConstants lists the float constants recognized as
// memexport stream descriptors, in first-use order without duplicates.
func (s *Shader) MemExportStreamConstants() []uint32 { return s.memExportStreamConstants }

// WritesColorTarget reports whether the shader writes render target i.
func (s *Shader) WritesColorTarget(i int) bool {
	return i >= 0 && i < len(s.writesColorTargets) && s.writesColorTargets[i]
}

func (s *Shader) WritesDepth() bool { return s.writesDepth }

// ImplicitEarlyZAllowed reports whether the host may run depth/stencil
// before this pixel shader without changing observable behavior.
func (s *Shader) ImplicitEarlyZAllowed() bool { return s.implicitEarlyZAllowed }

func (s *Shader) UcodeDisassembly() string { return s.ucodeDisassembly }

func (s *Shader) HostVertexShaderType() HostVertexShaderType { return s.hostVertexShaderType }

func (s *Shader) TranslatedBinary() []byte { return s.translatedBinary }

// TranslatedBinaryString returns the translated binary as text, for
// backends whose output form is source code.
func (s *Shader) TranslatedBinaryString() string { return string(s.translatedBinary) }

func (s *Shader) HostDisassembly() string { return s.hostDisassembly }
func (s *Shader) HostErrorLog() string    { return s.hostErrorLog }

// HostBinary is the host-API compiled object, attached after translation
// by whoever compiles the translated source.
func (s *Shader) HostBinary() []byte       { return s.hostBinary }
func (s *Shader) SetHostBinary(bin []byte) { s.hostBinary = bin }

func dwordBytes(dwords []uint32) []byte {
	buf := make([]byte, 4*len(dwords))
	for i, d := range dwords {
		binary.LittleEndian.PutUint32(buf[4*i:], d)
	}
	return buf
}
