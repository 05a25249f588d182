package mapper

import (
	"go.uber.org/zap"

	"github.com/qubolab/wasm-qubo/wasm"
)

// constHandler registers a locally scoped constant of the literal's type.
type constHandler struct {
	ty wasm.ValType
}

func (h constHandler) handle(ctx *opContext, instr wasm.Instruction) error {
	ctx.node.AddConstant(h.ty)
	return nil
}

// loadHandler registers an input variable of the load's result type and
// couples it to the accessed memory offset.
type loadHandler struct {
	ty wasm.ValType
}

func (h loadHandler) handle(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.MemoryImm)
	varID := ctx.node.AddInputVariable(h.ty)
	ctx.node.AddInputDataCoupling(int(imm.Offset), varID)
	return nil
}

// storeHandler registers an output variable of the stored value's type and
// couples it to the accessed memory offset.
type storeHandler struct {
	ty wasm.ValType
}

func (h storeHandler) handle(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.MemoryImm)
	varID := ctx.node.AddOutputVariable(h.ty)
	ctx.node.AddOutputDataCoupling(int(imm.Offset), varID)
	return nil
}

// arithHandler records a simulatable add or mul of a given operand type.
type arithHandler struct {
	kind OpKind
	ty   wasm.ValType
}

func (h arithHandler) handle(ctx *opContext, instr wasm.Instruction) error {
	ctx.node.AddOperation(ctx.step, Operation{Kind: h.kind, Type: h.ty})
	return nil
}

func handleGlobalGet(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.GlobalImm)
	gt, ok := ctx.res.Global(imm.GlobalIdx)
	if !ok {
		Logger().Warn("global.get references unknown global",
			zap.Uint32("global", imm.GlobalIdx),
			zap.Int("node", ctx.node.ID()))
		return nil
	}
	varID := ctx.node.AddInputVariable(gt.ValType)
	ctx.node.AddGlobalInputDataCoupling(int(imm.GlobalIdx), varID)
	return nil
}

func handleGlobalSet(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.GlobalImm)
	gt, ok := ctx.res.Global(imm.GlobalIdx)
	if !ok {
		Logger().Warn("global.set references unknown global",
			zap.Uint32("global", imm.GlobalIdx),
			zap.Int("node", ctx.node.ID()))
		return nil
	}
	varID := ctx.node.AddOutputVariable(gt.ValType)
	ctx.node.AddGlobalOutputDataCoupling(int(imm.GlobalIdx), varID)
	return nil
}

// handleLocalGet spins the input variable that signature attachment assigned
// to the parameter. Locals beyond the parameters carry no variable mapping.
func handleLocalGet(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.LocalImm)
	if int(imm.LocalIdx) >= len(ctx.params) {
		return nil
	}
	ctx.node.AddOperation(ctx.step, Operation{Kind: OpSpin, Var: ctx.params[imm.LocalIdx]})
	return nil
}

func handleBranch(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.BranchImm)
	ctx.node.AddBranch(ctx.pos, int(imm.LabelIdx))
	return nil
}

func handleBrTable(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.BrTableImm)
	for _, depth := range imm.Labels {
		ctx.node.AddBranch(ctx.pos, int(depth))
	}
	return nil
}

func handleCall(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.CallImm)
	ctx.node.AddCall(ctx.pos, int(imm.FuncIdx))
	return nil
}

// handleCallIndirect records the table index as the callee id. Distinct
// call sites into the same table therefore share a callee; the expander
// treats ids it cannot resolve as unexpandable and keeps the edge.
func handleCallIndirect(ctx *opContext, instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.CallIndirectImm)
	ctx.node.AddCall(ctx.pos, int(imm.TableIdx))
	return nil
}
