package ucode

// ControlFlowOpcode enumerates the control-flow instruction set. One opcode
// occupies the top four bits of each 48-bit control-flow word.
type ControlFlowOpcode uint32

const (
	CfNop ControlFlowOpcode = iota
	CfExec
	CfExecEnd
	CfCondExec
	CfCondExecEnd
	CfCondExecPred
	CfCondExecPredEnd
	CfLoopStart
	CfLoopEnd
	CfCondCall
	CfReturn
	CfCondJmp
	CfAlloc
	CfCondExecPredClean
	CfCondExecPredCleanEnd
	CfMarkVsFetchDone
)

var cfOpcodeNames = [16]string{
	"nop",
	"exec",
	"exece",
	"cexec",
	"cexece",
	"cexec_pred",
	"cexec_prede",
	"loop_start",
	"loop_end",
	"ccall",
	"ret",
	"cjmp",
	"alloc",
	"cexec_pred_clean",
	"cexec_pred_cleane",
	"vfetch_done",
}

// String returns the assembly mnemonic of the opcode.
func (o ControlFlowOpcode) String() string {
	if o > CfMarkVsFetchDone {
		return "unknown"
	}
	return cfOpcodeNames[o]
}

// IsExec reports whether the opcode runs a block of ALU/fetch instructions.
func (o ControlFlowOpcode) IsExec() bool {
	switch o {
	case CfExec, CfExecEnd, CfCondExec, CfCondExecEnd, CfCondExecPred,
		CfCondExecPredEnd, CfCondExecPredClean, CfCondExecPredCleanEnd:
		return true
	}
	return false
}

// IsEnd reports whether the opcode terminates the shader.
func (o ControlFlowOpcode) IsEnd() bool {
	switch o {
	case CfExecEnd, CfCondExecEnd, CfCondExecPredEnd, CfCondExecPredCleanEnd:
		return true
	}
	return false
}

// IsConditionalExec reports whether execution is gated on a boolean constant.
func (o ControlFlowOpcode) IsConditionalExec() bool {
	return o == CfCondExec || o == CfCondExecEnd
}

// IsPredicatedExec reports whether execution is gated on the predicate
// register.
func (o ControlFlowOpcode) IsPredicatedExec() bool {
	switch o {
	case CfCondExecPred, CfCondExecPredEnd, CfCondExecPredClean,
		CfCondExecPredCleanEnd:
		return true
	}
	return false
}

// ResetsPredicate reports whether the exec resets the current predicate
// before running its block. The non-clean predicated variants keep it.
func (o ControlFlowOpcode) ResetsPredicate() bool {
	return o != CfCondExecPred && o != CfCondExecPredEnd
}

// AllocType enumerates the export resources an alloc instruction reserves.
// The same encoding covers interpolators in vertex shaders and color targets
// in pixel shaders.
type AllocType uint32

const (
	AllocNone AllocType = iota
	AllocPosition
	AllocInterpolators
	AllocMemory
)

// AllocColors aliases AllocInterpolators for pixel-stage allocs.
const AllocColors = AllocInterpolators

// AluVectorOpcode enumerates the vector half of an ALU instruction.
type AluVectorOpcode uint32

const (
	AluVectorAdd AluVectorOpcode = iota
	AluVectorMul
	AluVectorMax
	AluVectorMin
	AluVectorSeq
	AluVectorSgt
	AluVectorSge
	AluVectorSne
	AluVectorFrc
	AluVectorTrunc
	AluVectorFloor
	AluVectorMad
	AluVectorCndEq
	AluVectorCndGe
	AluVectorCndGt
	AluVectorDp4
	AluVectorDp3
	AluVectorDp2Add
	AluVectorCube
	AluVectorMax4
	AluVectorSetpEqPush
	AluVectorSetpNePush
	AluVectorSetpGtPush
	AluVectorSetpGePush
	AluVectorKillEq
	AluVectorKillGt
	AluVectorKillGe
	AluVectorKillNe
	AluVectorDst
	AluVectorMaxA

	aluVectorOpcodeCount
)

var aluVectorNames = [aluVectorOpcodeCount]string{
	"add", "mul", "max", "min", "seq", "sgt", "sge", "sne",
	"frc", "trunc", "floor", "mad", "cndeq", "cndge", "cndgt",
	"dp4", "dp3", "dp2add", "cube", "max4",
	"setp_eq_push", "setp_ne_push", "setp_gt_push", "setp_ge_push",
	"kill_eq", "kill_gt", "kill_ge", "kill_ne",
	"dst", "maxa",
}

var aluVectorOperandCounts = [aluVectorOpcodeCount]uint32{
	2, 2, 2, 2, 2, 2, 2, 2,
	1, 1, 1, 3, 3, 3, 3,
	2, 2, 3, 2, 1,
	2, 2, 2, 2,
	2, 2, 2, 2,
	2, 2,
}

// String returns the assembly mnemonic of the opcode.
func (o AluVectorOpcode) String() string {
	if o >= aluVectorOpcodeCount {
		return "unknown"
	}
	return aluVectorNames[o]
}

// OperandCount returns the number of source operands the opcode reads.
func (o AluVectorOpcode) OperandCount() uint32 {
	if o >= aluVectorOpcodeCount {
		return 0
	}
	return aluVectorOperandCounts[o]
}

// HasSideEffects reports whether the opcode does more than write its result:
// predicate stack pushes, pixel kills and a0 writes all count. Translators
// must not elide such operations even with an empty write mask.
func (o AluVectorOpcode) HasSideEffects() bool {
	switch o {
	case AluVectorSetpEqPush, AluVectorSetpNePush, AluVectorSetpGtPush,
		AluVectorSetpGePush, AluVectorKillEq, AluVectorKillGt,
		AluVectorKillGe, AluVectorKillNe, AluVectorMaxA:
		return true
	}
	return false
}

// AluScalarOpcode enumerates the scalar half of an ALU instruction.
type AluScalarOpcode uint32

const (
	AluScalarAdds AluScalarOpcode = iota
	AluScalarAddsPrev
	AluScalarMuls
	AluScalarMulsPrev
	AluScalarMulsPrev2
	AluScalarMaxs
	AluScalarMins
	AluScalarSeqs
	AluScalarSgts
	AluScalarSges
	AluScalarSnes
	AluScalarFrcs
	AluScalarTruncs
	AluScalarFloors
	AluScalarExp
	AluScalarLogc
	AluScalarLog
	AluScalarRcpc
	AluScalarRcpf
	AluScalarRcp
	AluScalarRsqc
	AluScalarRsqf
	AluScalarRsq
	AluScalarMaxAs
	AluScalarMaxAsf
	AluScalarSubs
	AluScalarSubsPrev
	AluScalarSetpEq
	AluScalarSetpNe
	AluScalarSetpGt
	AluScalarSetpGe
	AluScalarSetpInv
	AluScalarSetpPop
	AluScalarSetpClr
	AluScalarSetpRstr
	AluScalarKillsEq
	AluScalarKillsGt
	AluScalarKillsGe
	AluScalarKillsNe
	AluScalarKillsOne
	AluScalarSqrt
	aluScalarReserved41
	AluScalarMulsc0
	AluScalarMulsc1
	AluScalarAddsc0
	AluScalarAddsc1
	AluScalarSubsc0
	AluScalarSubsc1
	AluScalarSin
	AluScalarCos
	AluScalarRetainPrev

	aluScalarOpcodeCount
)

var aluScalarNames = [aluScalarOpcodeCount]string{
	"adds", "adds_prev", "muls", "muls_prev", "muls_prev2",
	"maxs", "mins", "seqs", "sgts", "sges", "snes",
	"frcs", "truncs", "floors",
	"exp", "logc", "log", "rcpc", "rcpf", "rcp", "rsqc", "rsqf", "rsq",
	"maxas", "maxasf", "subs", "subs_prev",
	"setp_eq", "setp_ne", "setp_gt", "setp_ge",
	"setp_inv", "setp_pop", "setp_clr", "setp_rstr",
	"kills_eq", "kills_gt", "kills_ge", "kills_ne", "kills_one",
	"sqrt", "reserved41",
	"mulsc0", "mulsc1", "addsc0", "addsc1", "subsc0", "subsc1",
	"sin", "cos", "retain_prev",
}

// String returns the assembly mnemonic of the opcode.
func (o AluScalarOpcode) String() string {
	if o >= aluScalarOpcodeCount {
		return "unknown"
	}
	return aluScalarNames[o]
}

// OperandCount returns the number of source operands the opcode reads.
func (o AluScalarOpcode) OperandCount() uint32 {
	switch o {
	case AluScalarMulsc0, AluScalarMulsc1, AluScalarAddsc0, AluScalarAddsc1,
		AluScalarSubsc0, AluScalarSubsc1:
		return 2
	case AluScalarSetpClr, AluScalarRetainPrev:
		return 0
	}
	return 1
}

// FetchOpcode enumerates the fetch instruction set. VertexFetch is the only
// vertex-stream opcode; everything else reads through a texture fetch
// constant.
type FetchOpcode uint32

const (
	FetchVertex  FetchOpcode = 0
	FetchTexture FetchOpcode = 1

	FetchGetTextureBorderColorFrac FetchOpcode = 16
	FetchGetTextureComputedLod     FetchOpcode = 17
	FetchGetTextureGradients       FetchOpcode = 18
	FetchGetTextureWeights         FetchOpcode = 19

	FetchSetTextureLod           FetchOpcode = 24
	FetchSetTextureGradientsHorz FetchOpcode = 25
	FetchSetTextureGradientsVert FetchOpcode = 26
)

// String returns the assembly mnemonic of the opcode, without the
// dimension suffix the disassembler appends to texture forms.
func (o FetchOpcode) String() string {
	switch o {
	case FetchVertex:
		return "vfetch"
	case FetchTexture:
		return "tfetch"
	case FetchGetTextureBorderColorFrac:
		return "getBCF"
	case FetchGetTextureComputedLod:
		return "getCompTexLOD"
	case FetchGetTextureGradients:
		return "getGradients"
	case FetchGetTextureWeights:
		return "getWeights"
	case FetchSetTextureLod:
		return "setTexLOD"
	case FetchSetTextureGradientsHorz:
		return "setGradientH"
	case FetchSetTextureGradientsVert:
		return "setGradientV"
	}
	return "unknown"
}

// Valid reports whether the opcode is part of the fetch instruction set.
func (o FetchOpcode) Valid() bool {
	return o.String() != "unknown"
}
