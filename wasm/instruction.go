package wasm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	qbinary "github.com/qubolab/wasm-qubo/wasm/internal/binary"
)

// Instruction represents a decoded WebAssembly instruction
type Instruction struct {
	Imm    interface{}
	Opcode byte
}

// BlockImm holds the block type for block, loop, and if instructions.
type BlockImm struct {
	Type int32 // Block type: -64=void, -1=i32, -2=i64, -3=f32, -4=f64, >=0=type index
}

// BranchImm holds the label index for br and br_if instructions.
type BranchImm struct {
	LabelIdx uint32
}

// BrTableImm holds the label table for br_table instruction.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallImm holds the function index for call instruction.
type CallImm struct {
	FuncIdx uint32
}

// CallIndirectImm holds type and table indices for call_indirect instruction.
type CallIndirectImm struct {
	TypeIdx  uint32
	TableIdx uint32
}

// LocalImm holds the local index for local.get, local.set, local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm holds the global index for global.get and global.set.
type GlobalImm struct {
	GlobalIdx uint32
}

// MemoryImm holds memory access parameters for load and store instructions.
type MemoryImm struct {
	Offset uint64
	Align  uint32
	MemIdx uint32
}

// MemoryIdxImm holds memory index for memory.size, memory.grow
type MemoryIdxImm struct {
	MemIdx uint32
}

// I32Imm holds the constant value for i32.const instruction.
type I32Imm struct {
	Value int32
}

// I64Imm holds the constant value for i64.const instruction.
type I64Imm struct {
	Value int64
}

// F32Imm holds the constant value for f32.const instruction.
type F32Imm struct {
	Value float32
}

// F64Imm holds the constant value for f64.const instruction.
type F64Imm struct {
	Value float64
}

// MiscImm holds the sub-opcode and immediates for 0xFC prefix instructions
type MiscImm struct {
	Operands  []uint32
	SubOpcode uint32
}

// TableImm holds table index for table.get/table.set
type TableImm struct {
	TableIdx uint32
}

// RefNullImm holds the heap type for ref.null
type RefNullImm struct {
	HeapType int64 // funcref=-16, externref=-17
}

// RefFuncImm holds the function index for ref.func
type RefFuncImm struct {
	FuncIdx uint32
}

// SelectTypeImm holds value types for typed select
type SelectTypeImm struct {
	Types []ValType
}

// SIMDImm holds SIMD instruction immediates
type SIMDImm struct {
	MemArg    *MemoryImm
	LaneIdx   *byte
	V128Bytes []byte
	SubOpcode uint32
}

// AtomicImm holds atomic instruction immediates
type AtomicImm struct {
	MemArg    *MemoryImm
	SubOpcode uint32
}

// GetCallTarget returns the call target if this is a call instruction
func (i Instruction) GetCallTarget() (uint32, bool) {
	if i.Opcode == OpCall {
		if imm, ok := i.Imm.(CallImm); ok {
			return imm.FuncIdx, true
		}
	}
	return 0, false
}

// IsIndirectCall returns true if this is a call_indirect instruction
func (i Instruction) IsIndirectCall() bool {
	return i.Opcode == OpCallIndirect
}

// readInstruction decodes a single instruction from the reader.
// The reader's position advances past the opcode and its immediates.
func readInstruction(r *qbinary.Reader) (Instruction, error) {
	op, err := r.ReadByte()
	if err != nil {
		return Instruction{}, err
	}

	instr := Instruction{Opcode: op}

	switch op {
	case OpBlock, OpLoop, OpIf:
		bt, err := r.ReadS32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = BlockImm{Type: bt}

	case OpBr, OpBrIf:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = BranchImm{LabelIdx: idx}

	case OpBrTable:
		count, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		labels := make([]uint32, count)
		for i := uint32(0); i < count; i++ {
			labels[i], err = r.ReadU32()
			if err != nil {
				return Instruction{}, err
			}
		}
		def, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = BrTableImm{Labels: labels, Default: def}

	case OpCall:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = CallImm{FuncIdx: idx}

	case OpCallIndirect:
		typeIdx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		tableIdx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = CallIndirectImm{TypeIdx: typeIdx, TableIdx: tableIdx}

	case OpLocalGet, OpLocalSet, OpLocalTee:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = LocalImm{LocalIdx: idx}

	case OpGlobalGet, OpGlobalSet:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = GlobalImm{GlobalIdx: idx}

	case OpTableGet, OpTableSet:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = TableImm{TableIdx: idx}

	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		memImm, err := readMemArg(r)
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = memImm

	case OpMemorySize, OpMemoryGrow:
		// Memory index (0 for single memory, can be non-zero for multi-memory)
		memIdx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = MemoryIdxImm{MemIdx: memIdx}

	case OpI32Const:
		val, err := r.ReadS32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = I32Imm{Value: val}

	case OpI64Const:
		val, err := r.ReadS64()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = I64Imm{Value: val}

	case OpF32Const:
		raw, err := r.ReadBytes(4)
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = F32Imm{Value: math.Float32frombits(binary.LittleEndian.Uint32(raw))}

	case OpF64Const:
		raw, err := r.ReadBytes(8)
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = F64Imm{Value: math.Float64frombits(binary.LittleEndian.Uint64(raw))}

	case OpRefNull:
		heapType, err := r.ReadS64()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = RefNullImm{HeapType: heapType}

	case OpRefFunc:
		funcIdx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = RefFuncImm{FuncIdx: funcIdx}

	case OpSelectType:
		count, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		types := make([]ValType, count)
		for i := uint32(0); i < count; i++ {
			t, err := r.ReadByte()
			if err != nil {
				return Instruction{}, err
			}
			types[i] = ValType(t)
		}
		instr.Imm = SelectTypeImm{Types: types}

	// Instructions with no immediates - do nothing
	case OpUnreachable, OpNop, OpElse, OpEnd, OpReturn, OpDrop, OpSelect, OpRefIsNull,
		OpI32Eqz, OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU,
		OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU,
		OpI64Eqz, OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU,
		OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU,
		OpF32Eq, OpF32Ne, OpF32Lt, OpF32Gt, OpF32Le, OpF32Ge,
		OpF64Eq, OpF64Ne, OpF64Lt, OpF64Gt, OpF64Le, OpF64Ge,
		OpI32Clz, OpI32Ctz, OpI32Popcnt, OpI32Add, OpI32Sub, OpI32Mul,
		OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU, OpI32And, OpI32Or, OpI32Xor,
		OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr,
		OpI64Clz, OpI64Ctz, OpI64Popcnt, OpI64Add, OpI64Sub, OpI64Mul,
		OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU, OpI64And, OpI64Or, OpI64Xor,
		OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr,
		OpF32Abs, OpF32Neg, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest, OpF32Sqrt,
		OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign,
		OpF64Abs, OpF64Neg, OpF64Ceil, OpF64Floor, OpF64Trunc, OpF64Nearest, OpF64Sqrt,
		OpF64Add, OpF64Sub, OpF64Mul, OpF64Div, OpF64Min, OpF64Max, OpF64Copysign,
		OpI32WrapI64, OpI32TruncF32S, OpI32TruncF32U, OpI32TruncF64S, OpI32TruncF64U,
		OpI64ExtendI32S, OpI64ExtendI32U, OpI64TruncF32S, OpI64TruncF32U,
		OpI64TruncF64S, OpI64TruncF64U,
		OpF32ConvertI32S, OpF32ConvertI32U, OpF32ConvertI64S, OpF32ConvertI64U, OpF32DemoteF64,
		OpF64ConvertI32S, OpF64ConvertI32U, OpF64ConvertI64S, OpF64ConvertI64U, OpF64PromoteF32,
		OpI32ReinterpretF32, OpI64ReinterpretF64, OpF32ReinterpretI32, OpF64ReinterpretI64,
		OpI32Extend8S, OpI32Extend16S, OpI64Extend8S, OpI64Extend16S, OpI64Extend32S:
		// No immediate

	case OpPrefixMisc:
		imm, err := readMiscImmediate(r)
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = imm

	case OpPrefixSIMD:
		imm, err := readSIMDImmediate(r)
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = imm

	case OpPrefixAtomic:
		imm, err := readAtomicImmediate(r)
		if err != nil {
			return Instruction{}, err
		}
		instr.Imm = imm

	default:
		return Instruction{}, fmt.Errorf("unknown opcode: 0x%02x", op)
	}

	return instr, nil
}

// DecodeInstructions decodes a sequence of instructions from raw bytes
func DecodeInstructions(code []byte) ([]Instruction, error) {
	r := qbinary.NewReader(bytes.NewReader(code))
	// Pre-allocate based on estimation: roughly 2 bytes per instruction on average
	instrs := make([]Instruction, 0, len(code)/2)

	for r.Position() < len(code) {
		instr, err := readInstruction(r)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
	}

	return instrs, nil
}

func readMiscImmediate(r *qbinary.Reader) (MiscImm, error) {
	subOp, err := r.ReadU32()
	if err != nil {
		return MiscImm{}, err
	}
	imm := MiscImm{SubOpcode: subOp}
	switch subOp {
	case MiscI32TruncSatF32S, MiscI32TruncSatF32U,
		MiscI32TruncSatF64S, MiscI32TruncSatF64U,
		MiscI64TruncSatF32S, MiscI64TruncSatF32U,
		MiscI64TruncSatF64S, MiscI64TruncSatF64U:
		// Saturating truncations: no additional operands
	case MiscMemoryInit, MiscMemoryCopy, MiscTableInit, MiscTableCopy:
		a, err := r.ReadU32()
		if err != nil {
			return MiscImm{}, err
		}
		b, err := r.ReadU32()
		if err != nil {
			return MiscImm{}, err
		}
		imm.Operands = []uint32{a, b}
	case MiscDataDrop, MiscMemoryFill, MiscElemDrop,
		MiscTableGrow, MiscTableSize, MiscTableFill:
		a, err := r.ReadU32()
		if err != nil {
			return MiscImm{}, err
		}
		imm.Operands = []uint32{a}
	default:
		return MiscImm{}, fmt.Errorf("unknown 0xFC sub-opcode: 0x%02x", subOp)
	}
	return imm, nil
}

func readSIMDImmediate(r *qbinary.Reader) (SIMDImm, error) {
	subOp, err := r.ReadU32()
	if err != nil {
		return SIMDImm{}, err
	}

	imm := SIMDImm{SubOpcode: subOp}

	switch {
	case subOp <= SimdV128Load64Splat || subOp == SimdV128Store:
		// Basic memory operations: memarg
		memArg, err := readMemArg(r)
		if err != nil {
			return SIMDImm{}, err
		}
		imm.MemArg = &memArg

	case subOp == SimdV128Const, subOp == SimdI8x16Shuffle:
		// 16 bytes of constant data or lane indices
		raw, err := r.ReadBytes(16)
		if err != nil {
			return SIMDImm{}, err
		}
		imm.V128Bytes = raw

	case subOp >= SimdI8x16ExtractLaneS && subOp <= SimdF64x2ReplaceLane:
		// Lane extract/replace: lane index (1 byte)
		b, err := r.ReadByte()
		if err != nil {
			return SIMDImm{}, err
		}
		imm.LaneIdx = &b

	case subOp >= SimdV128Load8Lane && subOp <= SimdV128Store64Lane:
		// Lane load/store: memarg + laneidx
		memArg, err := readMemArg(r)
		if err != nil {
			return SIMDImm{}, err
		}
		imm.MemArg = &memArg
		b, err := r.ReadByte()
		if err != nil {
			return SIMDImm{}, err
		}
		imm.LaneIdx = &b

	case subOp == SimdV128Load32Zero || subOp == SimdV128Load64Zero:
		// Zero-extending loads: memarg only
		memArg, err := readMemArg(r)
		if err != nil {
			return SIMDImm{}, err
		}
		imm.MemArg = &memArg

	default:
		// Most SIMD instructions have no immediates
	}

	return imm, nil
}

func readAtomicImmediate(r *qbinary.Reader) (AtomicImm, error) {
	subOp, err := r.ReadU32()
	if err != nil {
		return AtomicImm{}, err
	}

	imm := AtomicImm{SubOpcode: subOp}

	if subOp == AtomicFence {
		// atomic.fence has a single reserved byte
		if _, err := r.ReadByte(); err != nil {
			return AtomicImm{}, err
		}
	} else {
		// All other atomic ops have memarg
		memArg, err := readMemArg(r)
		if err != nil {
			return AtomicImm{}, err
		}
		imm.MemArg = &memArg
	}

	return imm, nil
}

// Multi-memory memarg bit flag
const memArgMultiMemBit = 0x40

// readMemArg reads a memarg with multi-memory support.
// If bit 6 of align is set, a separate memidx LEB128 follows.
func readMemArg(r *qbinary.Reader) (MemoryImm, error) {
	alignRaw, err := r.ReadU32()
	if err != nil {
		return MemoryImm{}, err
	}

	var memIdx uint32
	if alignRaw&memArgMultiMemBit != 0 {
		memIdx, err = r.ReadU32()
		if err != nil {
			return MemoryImm{}, err
		}
	}

	offset, err := r.ReadU64()
	if err != nil {
		return MemoryImm{}, err
	}

	return MemoryImm{
		Align:  alignRaw & ^uint32(memArgMultiMemBit),
		Offset: offset,
		MemIdx: memIdx,
	}, nil
}

// writeMemArg writes a memarg with multi-memory support.
func writeMemArg(buf *bytes.Buffer, imm MemoryImm) {
	alignRaw := imm.Align
	if imm.MemIdx != 0 {
		alignRaw |= memArgMultiMemBit
	}
	WriteLEB128u(buf, alignRaw)
	if imm.MemIdx != 0 {
		WriteLEB128u(buf, imm.MemIdx)
	}
	WriteLEB128u64(buf, imm.Offset)
}

// EncodeInstructionTo writes a single instruction to the provided buffer.
func EncodeInstructionTo(buf *bytes.Buffer, instr *Instruction) {
	buf.WriteByte(instr.Opcode)

	switch instr.Opcode {
	case OpBlock, OpLoop, OpIf:
		imm := instr.Imm.(BlockImm)
		WriteLEB128s(buf, imm.Type)

	case OpBr, OpBrIf:
		imm := instr.Imm.(BranchImm)
		WriteLEB128u(buf, imm.LabelIdx)

	case OpBrTable:
		imm := instr.Imm.(BrTableImm)
		WriteLEB128u(buf, uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			WriteLEB128u(buf, l)
		}
		WriteLEB128u(buf, imm.Default)

	case OpCall:
		imm := instr.Imm.(CallImm)
		WriteLEB128u(buf, imm.FuncIdx)

	case OpCallIndirect:
		imm := instr.Imm.(CallIndirectImm)
		WriteLEB128u(buf, imm.TypeIdx)
		WriteLEB128u(buf, imm.TableIdx)

	case OpLocalGet, OpLocalSet, OpLocalTee:
		imm := instr.Imm.(LocalImm)
		WriteLEB128u(buf, imm.LocalIdx)

	case OpGlobalGet, OpGlobalSet:
		imm := instr.Imm.(GlobalImm)
		WriteLEB128u(buf, imm.GlobalIdx)

	case OpTableGet, OpTableSet:
		imm := instr.Imm.(TableImm)
		WriteLEB128u(buf, imm.TableIdx)

	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		imm := instr.Imm.(MemoryImm)
		writeMemArg(buf, imm)

	case OpMemorySize, OpMemoryGrow:
		imm := instr.Imm.(MemoryIdxImm)
		WriteLEB128u(buf, imm.MemIdx)

	case OpI32Const:
		imm := instr.Imm.(I32Imm)
		WriteLEB128s(buf, imm.Value)

	case OpI64Const:
		imm := instr.Imm.(I64Imm)
		WriteLEB128s64(buf, imm.Value)

	case OpF32Const:
		imm := instr.Imm.(F32Imm)
		WriteFloat32(buf, imm.Value)

	case OpF64Const:
		imm := instr.Imm.(F64Imm)
		WriteFloat64(buf, imm.Value)

	case OpRefNull:
		imm := instr.Imm.(RefNullImm)
		WriteLEB128s64(buf, imm.HeapType)

	case OpRefFunc:
		imm := instr.Imm.(RefFuncImm)
		WriteLEB128u(buf, imm.FuncIdx)

	case OpSelectType:
		imm := instr.Imm.(SelectTypeImm)
		WriteLEB128u(buf, uint32(len(imm.Types)))
		for _, t := range imm.Types {
			buf.WriteByte(byte(t))
		}

	case OpPrefixMisc:
		imm := instr.Imm.(MiscImm)
		WriteLEB128u(buf, imm.SubOpcode)
		for _, operand := range imm.Operands {
			WriteLEB128u(buf, operand)
		}

	case OpPrefixSIMD:
		imm := instr.Imm.(SIMDImm)
		WriteLEB128u(buf, imm.SubOpcode)
		if imm.MemArg != nil {
			writeMemArg(buf, *imm.MemArg)
		}
		if len(imm.V128Bytes) > 0 {
			buf.Write(imm.V128Bytes)
		}
		if imm.LaneIdx != nil {
			buf.WriteByte(*imm.LaneIdx)
		}

	case OpPrefixAtomic:
		imm := instr.Imm.(AtomicImm)
		WriteLEB128u(buf, imm.SubOpcode)
		if imm.SubOpcode == AtomicFence {
			buf.WriteByte(0) // reserved byte
		} else if imm.MemArg != nil {
			writeMemArg(buf, *imm.MemArg)
		}
	}
}

// EncodeInstructionsTo writes multiple instructions to the provided buffer.
func EncodeInstructionsTo(buf *bytes.Buffer, instrs []Instruction) {
	for i := range instrs {
		EncodeInstructionTo(buf, &instrs[i])
	}
}

// EncodeInstructions encodes instructions to bytes
func EncodeInstructions(instrs []Instruction) []byte {
	var buf bytes.Buffer
	buf.Grow(len(instrs) * 3) // estimate 3 bytes per instruction
	EncodeInstructionsTo(&buf, instrs)
	return buf.Bytes()
}
