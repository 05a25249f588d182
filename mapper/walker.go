package mapper

import (
	"go.uber.org/zap"

	qerrors "github.com/qubolab/wasm-qubo/errors"
	"github.com/qubolab/wasm-qubo/wasm"
)

// walker drives one function body through the classifier, recursing on
// structured control flow. A single walker instance is threaded through the
// whole recursive chain: every nested region shares the same operator
// reader, so a child walk advances the cursor past the region and the
// parent resumes right after it.
type walker struct {
	m      *Mapper
	ops    *wasm.OperatorReader
	buf    []byte
	res    *wasm.Resources
	base   int   // absolute offset of the body's first byte
	params []int // parameter index -> input variable id of the function
}

// run walks operators into the node until a terminator.
//
// The node's start must be set; a zero end means the walk deduces it from
// the terminator position (function nodes carry their end from the body
// range up front). On return the node holds its byte slice of the module.
func (w *walker) run(node *Node) error {
	step := 0

	for {
		pos := w.base + w.ops.Position()
		instr, err := w.ops.Next()
		if err != nil {
			return qerrors.New(qerrors.PhaseMap, qerrors.KindBadWasm).
				Node(node.ID()).
				Offset(pos).
				Cause(err).
				Detail("bad wasm code").
				Build()
		}
		step++

		switch instr.Opcode {
		case wasm.OpBlock, wasm.OpLoop:
			// Blocks and loops carry no condition, so they register as
			// plain child regions starting right after the header.
			child := NewNode()
			child.SetStart(w.base + w.ops.Position())
			if err := w.run(child); err != nil {
				return err
			}
			blockID := w.m.addBlock(child)
			node.AddBlock(child.Start()-node.Start(), blockID)

		case wasm.OpIf:
			ty := blockValType(instr.Imm.(wasm.BlockImm).Type)

			// The condition is one data dependency: an internal variable
			// in the enclosing scope coupled to the clause's single input.
			outerID := node.AddInternalVariable(ty)
			child := NewNode()
			innerID := child.AddInputVariable(ty)
			child.AddFlowControlCoupling(outerID, innerID)
			child.AddOperation(0, Operation{Kind: OpSpin, Var: innerID})
			child.SetStart(w.base + w.ops.Position())

			if err := w.run(child); err != nil {
				return err
			}
			blockID := w.m.addBlock(child)
			node.AddBlock(child.Start()-node.Start(), blockID)
			node.AddOperation(step, Operation{Kind: OpSpin, Var: outerID})

		case wasm.OpElse:
			// Valid only while this walk is inside an if-clause, detected
			// by the clause's signature: one coupling, one input variable.
			innerIfID, okCoupling := node.FirstFlowControlCoupling()
			inputTy, okInput := node.FirstInputVariableType()
			if !okCoupling || !okInput ||
				len(node.FlowControlCouplings()) != 1 || len(node.InputVariables()) != 1 {
				Logger().Debug("else outside an if-clause, ignoring",
					zap.Int("node", node.ID()),
					zap.Int("offset", pos))
				continue
			}

			elseNode := NewNode()
			elseInput := elseNode.AddInputVariable(inputTy)
			elseNode.AddFlowControlCoupling(innerIfID, elseInput)
			elseNode.AddOperation(0, Operation{Kind: OpSpin, Var: elseInput})
			elseNode.SetStart(w.base + w.ops.Position())

			if err := w.run(elseNode); err != nil {
				return err
			}

			// The else's end also terminates the if-clause.
			node.SetEnd(elseNode.End())
			blockID := w.m.addBlock(elseNode)
			node.AddBlock(elseNode.Start()-node.Start(), blockID)
			node.SetInstrs(w.buf[node.Start():node.End()])
			return nil

		case wasm.OpEnd, wasm.OpReturn:
			// Function nodes carry their end from the body metadata;
			// block nodes deduce it from the terminator position.
			if node.End() == 0 {
				node.SetEnd(w.base + w.ops.Position())
			}
			node.SetInstrs(w.buf[node.Start():node.End()])
			return nil

		default:
			if h := classifier.get(instr.Opcode); h != nil {
				ctx := &opContext{
					node:   node,
					res:    w.res,
					params: w.params,
					step:   step,
					pos:    pos - node.Start(),
				}
				if err := h.handle(ctx, instr); err != nil {
					return err
				}
			}
		}
	}
}

// blockValType maps a block type immediate to the value type of its result.
// Void blocks and type-index blocks fall back to i32 for coupling purposes.
func blockValType(blockType int32) wasm.ValType {
	switch blockType {
	case wasm.BlockTypeI32:
		return wasm.ValI32
	case wasm.BlockTypeI64:
		return wasm.ValI64
	case wasm.BlockTypeF32:
		return wasm.ValF32
	case wasm.BlockTypeF64:
		return wasm.ValF64
	case wasm.BlockTypeV128:
		return wasm.ValV128
	default:
		return wasm.ValI32
	}
}
