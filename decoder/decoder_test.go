package decoder

import (
	"strings"
	"testing"

	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/ucode"
)

func execEndWord(addr, count, sequence uint32) ucode.CfWord {
	var w ucode.CfWord
	w.SetOpcode(ucode.CfExecEnd)
	w.SetAddress(addr)
	w.SetExecCount(count)
	w.SetExecSequence(sequence)
	return w
}

func stream(pair [3]uint32, extra int) []uint32 {
	return append(pair[:], make([]uint32, extra)...)
}

func TestDecodeEmptyStream(t *testing.T) {
	if _, err := Decode(ucode.ShaderVertex, nil); err == nil {
		t.Fatal("expected an error for an empty stream")
	}
}

func TestDecodeRunsPastEnd(t *testing.T) {
	// Two nop control flow words and no terminating exec: the walk falls off
	// the end of the stream instead of looping forever.
	_, err := Decode(ucode.ShaderVertex, []uint32{0, 0, 0})
	if err == nil || !strings.Contains(err.Error(), "past the end") {
		t.Fatalf("expected a past-the-end error, got %v", err)
	}

	// A truncated control flow pair fails the same way.
	if _, err := Decode(ucode.ShaderVertex, []uint32{0, 0}); err == nil {
		t.Fatal("expected an error for a truncated control flow pair")
	}
}

func TestDecodeSlotPastEnd(t *testing.T) {
	pair := ucode.PackCfPair(execEndWord(1, 1, 0), ucode.CfWord{})
	_, err := Decode(ucode.ShaderVertex, pair[:])
	if err == nil || !strings.Contains(err.Error(), "slot 1") {
		t.Fatalf("expected a slot bounds error, got %v", err)
	}
}

func TestDecodeStopsAtEndExec(t *testing.T) {
	// The second word of the pair would run past the stream, but the first
	// word ends the program so it must never be looked at.
	var bad ucode.CfWord
	bad.SetOpcode(ucode.CfExec)
	bad.SetAddress(4000)
	bad.SetExecCount(6)
	pair := ucode.PackCfPair(execEndWord(1, 1, 0), bad)
	p, err := Decode(ucode.ShaderPixel, stream(pair, 2*ucode.SlotDwords-3))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Instructions) != 2 {
		t.Fatalf("got %d instructions, want exec plus one gated instruction", len(p.Instructions))
	}
	exec, ok := p.Instructions[0].(ir.ExecInstruction)
	if !ok || !exec.End {
		t.Fatalf("first instruction is %T, want a terminating exec", p.Instructions[0])
	}
}

func TestDecodeSkipsNopWords(t *testing.T) {
	// Nop words produce no instruction but still occupy a control flow
	// index, so instructions after padding keep their stream position.
	pair := ucode.PackCfPair(ucode.CfWord{}, execEndWord(0, 0, 0))
	p, err := Decode(ucode.ShaderVertex, pair[:])
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(p.Instructions))
	}
	if got := p.Instructions[0].(ir.ExecInstruction).DwordIndex; got != 1 {
		t.Fatalf("exec DwordIndex = %d, want 1", got)
	}
}

func TestDecodeMasksSequence(t *testing.T) {
	// Sequence bits beyond the gated count are stream noise. Bit 0 stays
	// clear so the single gated instruction decodes as ALU.
	pair := ucode.PackCfPair(execEndWord(1, 1, 0xFFE), ucode.CfWord{})
	p, err := Decode(ucode.ShaderVertex, stream(pair, 2*ucode.SlotDwords-3))
	if err != nil {
		t.Fatal(err)
	}
	exec := p.Instructions[0].(ir.ExecInstruction)
	if exec.Sequence != 0b10 {
		t.Fatalf("Sequence = %#x, want 0b10", exec.Sequence)
	}
	if _, ok := p.Instructions[1].(ir.AluInstruction); !ok {
		t.Fatalf("gated instruction is %T, want ALU", p.Instructions[1])
	}
}

func TestDecodeClampsMalformedFields(t *testing.T) {
	// A zeroed slot carries component count 0, which no real encoder emits;
	// the decoded operand still satisfies the IR's 1..4 contract.
	pair := ucode.PackCfPair(execEndWord(1, 1, 0), ucode.CfWord{})
	p, err := Decode(ucode.ShaderVertex, stream(pair, 2*ucode.SlotDwords-3))
	if err != nil {
		t.Fatal(err)
	}
	alu := p.Instructions[1].(ir.AluInstruction)
	for i, op := range alu.VectorOperands {
		if op.ComponentCount < 1 || op.ComponentCount > 4 {
			t.Fatalf("vector operand %d component count = %d", i, op.ComponentCount)
		}
	}
}
