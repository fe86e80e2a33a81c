package ir

import "github.com/gogpu/xenos/ucode"

// VertexFetchAttributes describe how a vertex fetch reads and converts its
// element.
type VertexFetchAttributes struct {
	DataFormat ucode.VertexFormat
	// Offset of the element within the bound buffer, in bytes.
	Offset uint32
	// Stride of the binding, in words.
	Stride uint32
	// ExpAdjust is added to the exponent of fetched floating-point data.
	ExpAdjust int32
	// IsIndexRounded rounds the source index instead of truncating it.
	IsIndexRounded bool
	IsSigned       bool
	IsInteger      bool
	PrefetchCount  uint32
}

// VertexFetchInstruction reads an element from a vertex buffer described by
// a vertex fetch constant.
type VertexFetchInstruction struct {
	Opcode ucode.FetchOpcode

	// MiniFetch reuses the addressing of the previous full fetch. The
	// operands and attributes below are populated from that fetch.
	MiniFetch bool

	// Predicated executes only when the predicate register matches
	// PredicateCondition.
	Predicated         bool
	PredicateCondition bool

	Result InstructionResult

	OperandCount uint32
	Operands     [2]InstructionOperand

	Attributes VertexFetchAttributes
}

// TextureFetchAttributes describe sampling state overrides for one texture
// fetch. Filter fields left at FilterUseFetchConst defer to the bound
// sampler state.
type TextureFetchAttributes struct {
	FetchValidOnly          bool
	UnnormalizedCoordinates bool
	MagFilter               ucode.TextureFilter
	MinFilter               ucode.TextureFilter
	MipFilter               ucode.TextureFilter
	AnisoFilter             ucode.AnisoFilter
	VolMagFilter            ucode.TextureFilter
	VolMinFilter            ucode.TextureFilter
	UseComputedLOD          bool
	UseRegisterLOD          bool
	UseRegisterGradients    bool
	LODBias                 float32
	OffsetX                 float32
	OffsetY                 float32
	OffsetZ                 float32
}

// TextureFetchInstruction samples a texture described by a texture fetch
// constant.
type TextureFetchInstruction struct {
	Opcode ucode.FetchOpcode
	// Dimension only carries meaning for opcodes that have multiple
	// dimension forms; it is preserved for the rest.
	Dimension ucode.TextureDimension

	Predicated         bool
	PredicateCondition bool

	Result InstructionResult

	OperandCount uint32
	Operands     [2]InstructionOperand

	Attributes TextureFetchAttributes
}

// HasResult reports whether the fetch stores anything.
func (t TextureFetchInstruction) HasResult() bool {
	return t.Result.StorageTarget != TargetNone
}
