package shader

import "github.com/gogpu/xenos/ir"

// VertexBindingAttribute is one vertex fetch within a binding, in fetch
// order. SizeWords is derived from the fetch's data format.
type VertexBindingAttribute struct {
	// AttribIndex is unique across all bindings of the shader.
	AttribIndex int
	FetchInstr  ir.VertexFetchInstruction
	SizeWords   uint32
}

// VertexBinding groups the vertex fetches that read through one fetch
// constant. All fetches of a binding share its stride.
type VertexBinding struct {
	BindingIndex  int
	FetchConstant uint32
	StrideWords   uint32
	Attributes    []VertexBindingAttribute
}

// TextureBinding is one texture fetch constant reference, with the first
// fetch instruction that uses it.
type TextureBinding struct {
	BindingIndex  int
	FetchConstant uint32
	FetchInstr    ir.TextureFetchInstruction
}
