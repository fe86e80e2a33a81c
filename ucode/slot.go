package ucode

// Operand is the wire form of one source operand descriptor, packed into a
// 30-bit word: kind 0..1, index 2..10, addressing mode 11..12, negate 13,
// absolute 14, component count 15..17, swizzle 18..29 (three bits per lane).
type Operand struct {
	Kind           uint32 // register, float constant, vfetch constant, tfetch constant
	Index          uint32 // 9 bits
	AddressingMode uint32 // static, a0, aL
	Negate         bool
	Absolute       bool
	ComponentCount uint32 // 1..4
	Swizzle        [4]uint32
}

// PackOperand encodes an operand descriptor word.
func PackOperand(o Operand) uint32 {
	var v uint64
	v = setBits(v, 0, 2, o.Kind)
	v = setBits(v, 2, 9, o.Index)
	v = setBits(v, 11, 2, o.AddressingMode)
	v = setFlag(v, 13, o.Negate)
	v = setFlag(v, 14, o.Absolute)
	v = setBits(v, 15, 3, o.ComponentCount)
	for i := uint(0); i < 4; i++ {
		v = setBits(v, 18+3*i, 3, o.Swizzle[i])
	}
	return uint32(v)
}

// UnpackOperand decodes an operand descriptor word.
func UnpackOperand(word uint32) Operand {
	v := uint64(word)
	o := Operand{
		Kind:           getBits(v, 0, 2),
		Index:          getBits(v, 2, 9),
		AddressingMode: getBits(v, 11, 2),
		Negate:         getFlag(v, 13),
		Absolute:       getFlag(v, 14),
		ComponentCount: getBits(v, 15, 3),
	}
	for i := uint(0); i < 4; i++ {
		o.Swizzle[i] = getBits(v, 18+3*i, 3)
	}
	return o
}

// Result is the wire form of one result descriptor, packed into a 29-bit
// word: target 0..3, index 4..9, addressing mode 10..11, clamp 12,
// write mask 13..16, swizzle 17..28 (three bits per lane).
type Result struct {
	Target         uint32
	Index          uint32 // 6 bits
	AddressingMode uint32
	Clamp          bool
	WriteMask      uint32 // authored mask, 4 bits
	Swizzle        [4]uint32
}

// PackResult encodes a result descriptor word.
func PackResult(r Result) uint32 {
	var v uint64
	v = setBits(v, 0, 4, r.Target)
	v = setBits(v, 4, 6, r.Index)
	v = setBits(v, 10, 2, r.AddressingMode)
	v = setFlag(v, 12, r.Clamp)
	v = setBits(v, 13, 4, r.WriteMask)
	for i := uint(0); i < 4; i++ {
		v = setBits(v, 17+3*i, 3, r.Swizzle[i])
	}
	return uint32(v)
}

// UnpackResult decodes a result descriptor word.
func UnpackResult(word uint32) Result {
	v := uint64(word)
	r := Result{
		Target:         getBits(v, 0, 4),
		Index:          getBits(v, 4, 6),
		AddressingMode: getBits(v, 10, 2),
		Clamp:          getFlag(v, 12),
		WriteMask:      getBits(v, 13, 4),
	}
	for i := uint(0); i < 4; i++ {
		r.Swizzle[i] = getBits(v, 17+3*i, 3)
	}
	return r
}

// AluSlot is the wire form of one ALU instruction slot.
//
//	d0: vector opcode 0..5, scalar opcode 6..11, predicated 12,
//	    predicate condition 13, vector operand count 14..15,
//	    scalar operand count 16..17
//	d1: vector result word
//	d2: scalar result word
//	d3..d5: vector operand words
//	d6..d7: scalar operand words
type AluSlot struct {
	VectorOpcode       AluVectorOpcode
	ScalarOpcode       AluScalarOpcode
	Predicated         bool
	PredicateCondition bool
	VectorOperandCount uint32
	ScalarOperandCount uint32
	VectorResult       Result
	ScalarResult       Result
	VectorOperands     [3]Operand
	ScalarOperands     [2]Operand
}

// Pack encodes the slot into its eight dwords.
func (s AluSlot) Pack() Slot {
	var d0 uint64
	d0 = setBits(d0, 0, 6, uint32(s.VectorOpcode))
	d0 = setBits(d0, 6, 6, uint32(s.ScalarOpcode))
	d0 = setFlag(d0, 12, s.Predicated)
	d0 = setFlag(d0, 13, s.PredicateCondition)
	d0 = setBits(d0, 14, 2, s.VectorOperandCount)
	d0 = setBits(d0, 16, 2, s.ScalarOperandCount)
	var slot Slot
	slot[0] = uint32(d0)
	slot[1] = PackResult(s.VectorResult)
	slot[2] = PackResult(s.ScalarResult)
	for i, op := range s.VectorOperands {
		slot[3+i] = PackOperand(op)
	}
	for i, op := range s.ScalarOperands {
		slot[6+i] = PackOperand(op)
	}
	return slot
}

// UnpackAluSlot decodes an ALU instruction slot.
func UnpackAluSlot(slot Slot) AluSlot {
	d0 := uint64(slot[0])
	s := AluSlot{
		VectorOpcode:       AluVectorOpcode(getBits(d0, 0, 6)),
		ScalarOpcode:       AluScalarOpcode(getBits(d0, 6, 6)),
		Predicated:         getFlag(d0, 12),
		PredicateCondition: getFlag(d0, 13),
		VectorOperandCount: getBits(d0, 14, 2),
		ScalarOperandCount: getBits(d0, 16, 2),
		VectorResult:       UnpackResult(slot[1]),
		ScalarResult:       UnpackResult(slot[2]),
	}
	for i := range s.VectorOperands {
		s.VectorOperands[i] = UnpackOperand(slot[3+i])
	}
	for i := range s.ScalarOperands {
		s.ScalarOperands[i] = UnpackOperand(slot[6+i])
	}
	return s
}

// VertexFetchSlot is the wire form of one vertex fetch instruction slot.
//
//	d0: opcode 0..4, mini 5, predicated 6, predicate condition 7,
//	    operand count 8..9, data format 10..15, signed 16, integer 17,
//	    index rounded 18, prefetch count 19..21, exponent adjust 22..27
//	d1: result word
//	d2: byte offset 0..15, word stride 16..23
//	d3..d4: operand words
type VertexFetchSlot struct {
	Opcode             FetchOpcode
	MiniFetch          bool
	Predicated         bool
	PredicateCondition bool
	OperandCount       uint32
	DataFormat         VertexFormat
	Signed             bool
	Integer            bool
	IndexRounded       bool
	PrefetchCount      uint32 // 0..7
	ExpAdjust          int32  // -32..31
	Result             Result
	Offset             uint32 // bytes, 16 bits
	Stride             uint32 // words, 8 bits
	Operands           [2]Operand
}

// Pack encodes the slot into its eight dwords.
func (s VertexFetchSlot) Pack() Slot {
	var d0 uint64
	d0 = setBits(d0, 0, 5, uint32(s.Opcode))
	d0 = setFlag(d0, 5, s.MiniFetch)
	d0 = setFlag(d0, 6, s.Predicated)
	d0 = setFlag(d0, 7, s.PredicateCondition)
	d0 = setBits(d0, 8, 2, s.OperandCount)
	d0 = setBits(d0, 10, 6, uint32(s.DataFormat))
	d0 = setFlag(d0, 16, s.Signed)
	d0 = setFlag(d0, 17, s.Integer)
	d0 = setFlag(d0, 18, s.IndexRounded)
	d0 = setBits(d0, 19, 3, s.PrefetchCount)
	d0 = setBits(d0, 22, 6, uint32(s.ExpAdjust))
	var slot Slot
	slot[0] = uint32(d0)
	slot[1] = PackResult(s.Result)
	slot[2] = uint32(setBits(setBits(0, 0, 16, s.Offset), 16, 8, s.Stride))
	for i, op := range s.Operands {
		slot[3+i] = PackOperand(op)
	}
	return slot
}

// UnpackVertexFetchSlot decodes a vertex fetch instruction slot.
func UnpackVertexFetchSlot(slot Slot) VertexFetchSlot {
	d0 := uint64(slot[0])
	s := VertexFetchSlot{
		Opcode:             FetchOpcode(getBits(d0, 0, 5)),
		MiniFetch:          getFlag(d0, 5),
		Predicated:         getFlag(d0, 6),
		PredicateCondition: getFlag(d0, 7),
		OperandCount:       getBits(d0, 8, 2),
		DataFormat:         VertexFormat(getBits(d0, 10, 6)),
		Signed:             getFlag(d0, 16),
		Integer:            getFlag(d0, 17),
		IndexRounded:       getFlag(d0, 18),
		PrefetchCount:      getBits(d0, 19, 3),
		ExpAdjust:          signExtend(getBits(d0, 22, 6), 6),
		Result:             UnpackResult(slot[1]),
		Offset:             getBits(uint64(slot[2]), 0, 16),
		Stride:             getBits(uint64(slot[2]), 16, 8),
	}
	for i := range s.Operands {
		s.Operands[i] = UnpackOperand(slot[3+i])
	}
	return s
}

// TextureFetchSlot is the wire form of one texture fetch instruction slot.
//
//	d0: opcode 0..4, dimension 5..6, predicated 7, predicate condition 8,
//	    operand count 9..10, fetch valid only 11, unnormalized 12,
//	    computed LOD 13, register LOD 14, register gradients 15,
//	    mag 16..17, min 18..19, mip 20..21, vol mag 22..23, vol min 24..25,
//	    aniso 26..28
//	d1: result word
//	d2: LOD bias 0..6 (signed, 1/32 units), offsets x/y/z 7..21
//	    (signed five-bit fields, 1/2 units)
//	d3..d4: operand words
type TextureFetchSlot struct {
	Opcode                  FetchOpcode
	Dimension               TextureDimension
	Predicated              bool
	PredicateCondition      bool
	OperandCount            uint32
	FetchValidOnly          bool
	UnnormalizedCoordinates bool
	UseComputedLod          bool
	UseRegisterLod          bool
	UseRegisterGradients    bool
	MagFilter               TextureFilter
	MinFilter               TextureFilter
	MipFilter               TextureFilter
	VolMagFilter            TextureFilter
	VolMinFilter            TextureFilter
	AnisoFilter             AnisoFilter
	LodBias                 int32 // signed 7-bit, value/32
	OffsetX                 int32 // signed 5-bit, value/2
	OffsetY                 int32
	OffsetZ                 int32
	Result                  Result
	Operands                [2]Operand
}

// Pack encodes the slot into its eight dwords.
func (s TextureFetchSlot) Pack() Slot {
	var d0 uint64
	d0 = setBits(d0, 0, 5, uint32(s.Opcode))
	d0 = setBits(d0, 5, 2, uint32(s.Dimension))
	d0 = setFlag(d0, 7, s.Predicated)
	d0 = setFlag(d0, 8, s.PredicateCondition)
	d0 = setBits(d0, 9, 2, s.OperandCount)
	d0 = setFlag(d0, 11, s.FetchValidOnly)
	d0 = setFlag(d0, 12, s.UnnormalizedCoordinates)
	d0 = setFlag(d0, 13, s.UseComputedLod)
	d0 = setFlag(d0, 14, s.UseRegisterLod)
	d0 = setFlag(d0, 15, s.UseRegisterGradients)
	d0 = setBits(d0, 16, 2, uint32(s.MagFilter))
	d0 = setBits(d0, 18, 2, uint32(s.MinFilter))
	d0 = setBits(d0, 20, 2, uint32(s.MipFilter))
	d0 = setBits(d0, 22, 2, uint32(s.VolMagFilter))
	d0 = setBits(d0, 24, 2, uint32(s.VolMinFilter))
	d0 = setBits(d0, 26, 3, uint32(s.AnisoFilter))
	var d2 uint64
	d2 = setBits(d2, 0, 7, uint32(s.LodBias))
	d2 = setBits(d2, 7, 5, uint32(s.OffsetX))
	d2 = setBits(d2, 12, 5, uint32(s.OffsetY))
	d2 = setBits(d2, 17, 5, uint32(s.OffsetZ))
	var slot Slot
	slot[0] = uint32(d0)
	slot[1] = PackResult(s.Result)
	slot[2] = uint32(d2)
	for i, op := range s.Operands {
		slot[3+i] = PackOperand(op)
	}
	return slot
}

// UnpackTextureFetchSlot decodes a texture fetch instruction slot.
func UnpackTextureFetchSlot(slot Slot) TextureFetchSlot {
	d0 := uint64(slot[0])
	d2 := uint64(slot[2])
	s := TextureFetchSlot{
		Opcode:                  FetchOpcode(getBits(d0, 0, 5)),
		Dimension:               TextureDimension(getBits(d0, 5, 2)),
		Predicated:              getFlag(d0, 7),
		PredicateCondition:      getFlag(d0, 8),
		OperandCount:            getBits(d0, 9, 2),
		FetchValidOnly:          getFlag(d0, 11),
		UnnormalizedCoordinates: getFlag(d0, 12),
		UseComputedLod:          getFlag(d0, 13),
		UseRegisterLod:          getFlag(d0, 14),
		UseRegisterGradients:    getFlag(d0, 15),
		MagFilter:               TextureFilter(getBits(d0, 16, 2)),
		MinFilter:               TextureFilter(getBits(d0, 18, 2)),
		MipFilter:               TextureFilter(getBits(d0, 20, 2)),
		VolMagFilter:            TextureFilter(getBits(d0, 22, 2)),
		VolMinFilter:            TextureFilter(getBits(d0, 24, 2)),
		AnisoFilter:             AnisoFilter(getBits(d0, 26, 3)),
		LodBias:                 signExtend(getBits(d2, 0, 7), 7),
		OffsetX:                 signExtend(getBits(d2, 7, 5), 5),
		OffsetY:                 signExtend(getBits(d2, 12, 5), 5),
		OffsetZ:                 signExtend(getBits(d2, 17, 5), 5),
		Result:                  UnpackResult(slot[1]),
	}
	for i := range s.Operands {
		s.Operands[i] = UnpackOperand(slot[3+i])
	}
	return s
}

// IsVertexFetchSlot reports whether a fetch slot holds a vertex fetch, based
// on its opcode bits.
func IsVertexFetchSlot(slot Slot) bool {
	return FetchOpcode(getBits(uint64(slot[0]), 0, 5)) == FetchVertex
}
