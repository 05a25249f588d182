package mapper

import (
	"github.com/qubolab/wasm-qubo/wasm"
)

// handleAtomic classifies 0xFE-prefixed thread operations. Atomic loads and
// stores are memory couplings like their plain counterparts, and the rmw-add
// family is a simulatable addition. Everything else passes through.
func handleAtomic(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.AtomicImm)
	if imm.MemArg == nil {
		return nil
	}
	offset := int(imm.MemArg.Offset)

	switch imm.SubOpcode {
	case wasm.AtomicI32Load, wasm.AtomicI32Load8U, wasm.AtomicI32Load16U:
		varID := ctx.node.AddInputVariable(wasm.ValI32)
		ctx.node.AddInputDataCoupling(offset, varID)

	case wasm.AtomicI64Load, wasm.AtomicI64Load8U, wasm.AtomicI64Load16U, wasm.AtomicI64Load32U:
		varID := ctx.node.AddInputVariable(wasm.ValI64)
		ctx.node.AddInputDataCoupling(offset, varID)

	case wasm.AtomicI32Store, wasm.AtomicI32Store8, wasm.AtomicI32Store16:
		varID := ctx.node.AddOutputVariable(wasm.ValI32)
		ctx.node.AddOutputDataCoupling(offset, varID)

	case wasm.AtomicI64Store, wasm.AtomicI64Store8, wasm.AtomicI64Store16, wasm.AtomicI64Store32:
		varID := ctx.node.AddOutputVariable(wasm.ValI64)
		ctx.node.AddOutputDataCoupling(offset, varID)

	case wasm.AtomicI32RmwAdd, wasm.AtomicI32Rmw8AddU, wasm.AtomicI32Rmw16AddU:
		ctx.node.AddOperation(ctx.step, Operation{Kind: OpAdd, Type: wasm.ValI32})

	case wasm.AtomicI64RmwAdd, wasm.AtomicI64Rmw8AddU, wasm.AtomicI64Rmw16AddU, wasm.AtomicI64Rmw32AddU:
		ctx.node.AddOperation(ctx.step, Operation{Kind: OpAdd, Type: wasm.ValI64})
	}
	return nil
}

// handleSIMD classifies 0xFD-prefixed vector operations. Whole-vector loads
// and stores are v128 memory couplings and v128.const registers a constant.
// Lane accesses and vector arithmetic pass through.
func handleSIMD(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.SIMDImm)

	switch {
	case imm.SubOpcode == wasm.SimdV128Const:
		ctx.node.AddConstant(wasm.ValV128)

	case imm.SubOpcode == wasm.SimdV128Store:
		if imm.MemArg != nil {
			varID := ctx.node.AddOutputVariable(wasm.ValV128)
			ctx.node.AddOutputDataCoupling(int(imm.MemArg.Offset), varID)
		}

	case imm.SubOpcode <= wasm.SimdV128Load64Splat,
		imm.SubOpcode == wasm.SimdV128Load32Zero,
		imm.SubOpcode == wasm.SimdV128Load64Zero:
		if imm.MemArg != nil {
			varID := ctx.node.AddInputVariable(wasm.ValV128)
			ctx.node.AddInputDataCoupling(int(imm.MemArg.Offset), varID)
		}
	}
	return nil
}
