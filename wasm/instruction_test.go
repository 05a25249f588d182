package wasm

import (
	"reflect"
	"testing"
)

func TestInstructionRoundTrip(t *testing.T) {
	instrs := []Instruction{
		{Opcode: OpNop},
		{Opcode: OpBlock, Imm: BlockImm{Type: BlockTypeVoid}},
		{Opcode: OpIf, Imm: BlockImm{Type: BlockTypeI32}},
		{Opcode: OpBr, Imm: BranchImm{LabelIdx: 2}},
		{Opcode: OpBrTable, Imm: BrTableImm{Labels: []uint32{0, 1, 2}, Default: 3}},
		{Opcode: OpCall, Imm: CallImm{FuncIdx: 7}},
		{Opcode: OpCallIndirect, Imm: CallIndirectImm{TypeIdx: 1, TableIdx: 0}},
		{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: 4}},
		{Opcode: OpGlobalSet, Imm: GlobalImm{GlobalIdx: 9}},
		{Opcode: OpI32Load, Imm: MemoryImm{Align: 2, Offset: 16}},
		{Opcode: OpI64Store, Imm: MemoryImm{Align: 3, Offset: 1024}},
		{Opcode: OpI32Const, Imm: I32Imm{Value: -42}},
		{Opcode: OpI64Const, Imm: I64Imm{Value: 1 << 40}},
		{Opcode: OpF32Const, Imm: F32Imm{Value: 1.5}},
		{Opcode: OpF64Const, Imm: F64Imm{Value: -2.25}},
		{Opcode: OpI32Add},
		{Opcode: OpF64Mul},
		{Opcode: OpRefNull, Imm: RefNullImm{HeapType: -16}},
		{Opcode: OpRefFunc, Imm: RefFuncImm{FuncIdx: 3}},
		{Opcode: OpSelectType, Imm: SelectTypeImm{Types: []ValType{ValI64}}},
		{Opcode: OpEnd},
	}

	encoded := EncodeInstructions(instrs)
	decoded, err := DecodeInstructions(encoded)
	if err != nil {
		t.Fatalf("DecodeInstructions: %v", err)
	}
	if !reflect.DeepEqual(instrs, decoded) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", decoded, instrs)
	}
}

func TestInstructionRoundTripPrefixed(t *testing.T) {
	mem := MemoryImm{Align: 2, Offset: 8}
	instrs := []Instruction{
		{Opcode: OpPrefixMisc, Imm: MiscImm{SubOpcode: MiscI32TruncSatF32S}},
		{Opcode: OpPrefixMisc, Imm: MiscImm{SubOpcode: MiscMemoryFill, Operands: []uint32{0}}},
		{Opcode: OpPrefixMisc, Imm: MiscImm{SubOpcode: MiscMemoryCopy, Operands: []uint32{0, 0}}},
		{Opcode: OpPrefixSIMD, Imm: SIMDImm{SubOpcode: SimdV128Load, MemArg: &mem}},
		{Opcode: OpPrefixSIMD, Imm: SIMDImm{SubOpcode: SimdV128Const, V128Bytes: make([]byte, 16)}},
		{Opcode: OpPrefixAtomic, Imm: AtomicImm{SubOpcode: AtomicI32RmwAdd, MemArg: &mem}},
		{Opcode: OpPrefixAtomic, Imm: AtomicImm{SubOpcode: AtomicFence}},
		{Opcode: OpEnd},
	}

	encoded := EncodeInstructions(instrs)
	decoded, err := DecodeInstructions(encoded)
	if err != nil {
		t.Fatalf("DecodeInstructions: %v", err)
	}
	if !reflect.DeepEqual(instrs, decoded) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", decoded, instrs)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	if _, err := DecodeInstructions([]byte{0x06}); err == nil {
		t.Error("expected error for unsupported opcode")
	}
	if _, err := DecodeInstructions([]byte{0xFB, 0x00}); err == nil {
		t.Error("expected error for GC prefix")
	}
}

func TestGetCallTarget(t *testing.T) {
	call := Instruction{Opcode: OpCall, Imm: CallImm{FuncIdx: 5}}
	if idx, ok := call.GetCallTarget(); !ok || idx != 5 {
		t.Errorf("GetCallTarget = %d, %v", idx, ok)
	}
	if _, ok := (Instruction{Opcode: OpNop}).GetCallTarget(); ok {
		t.Error("GetCallTarget on nop should be false")
	}
	if !(Instruction{Opcode: OpCallIndirect}).IsIndirectCall() {
		t.Error("IsIndirectCall should be true")
	}
}
