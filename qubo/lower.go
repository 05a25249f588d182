package qubo

import (
	"sort"

	"go.uber.org/zap"

	qerrors "github.com/qubolab/wasm-qubo/errors"
	"github.com/qubolab/wasm-qubo/mapper"
)

// Lower compiles a node's abstract operation list into a physical
// expression skeleton.
//
// Operations are visited in walk order. Each add or mul consumes the two
// most recent spin operands; an operand whose variable type disagrees with
// the operation's type is an error. Flow-control-coupled children are
// lowered recursively when the policy allows, each gated by its condition
// spin; a declined child contributes an empty sub-expression.
//
// The result stops at the expression tree: emitting annealer input from it
// belongs to the downstream code generator.
func Lower(n *mapper.Node, policy mapper.Policy) (QUBO, error) {
	q := QUBO{NodeID: n.ID()}

	if !policy.ShouldLower(n.ID()) {
		return q, nil
	}

	inputs := n.InputVariables()
	internals := n.InternalVariables()
	constants := n.Constants()
	Logger().Info("lowering node",
		zap.Int("node", n.ID()),
		zap.Int("inputs", len(inputs)),
		zap.Int("internals", len(internals)),
		zap.Int("constants", len(constants)))

	ops := n.Operations()
	steps := n.OperationSteps()

	// Spins seen so far, most recent last; adds and muls pop from here.
	var operands []PhysicalExpression
	var operandVars []int

	for _, step := range steps {
		op := ops[step]

		switch op.Kind {
		case mapper.OpSpin:
			operands = append(operands, Spin{ID: op.Var})
			operandVars = append(operandVars, op.Var)

		case mapper.OpNum:
			operands = append(operands, Num{Val: op.Val})
			operandVars = append(operandVars, -1)

		case mapper.OpAdd, mapper.OpMul:
			if len(operands) < 2 {
				return q, qerrors.New(qerrors.PhaseLower, qerrors.KindInvalidOperand).
					Node(n.ID()).
					Detail("missing operands for %s near step %d", op, step).
					Build()
			}
			two := operands[len(operands)-1]
			one := operands[len(operands)-2]
			for _, varID := range operandVars[len(operandVars)-2:] {
				if varID < 0 {
					continue
				}
				ty, ok := n.VariableType(varID)
				if ok && ty != op.Type {
					return q, qerrors.New(qerrors.PhaseLower, qerrors.KindInvalidOperand).
						Node(n.ID()).
						Detail("invalid %s operand for %s near step %d", ty, op, step).
						Build()
				}
			}
			operands = operands[:len(operands)-2]
			operandVars = operandVars[:len(operandVars)-2]

			var expr PhysicalExpression
			if op.Kind == mapper.OpAdd {
				expr = Add{One: one, Two: two}
			} else {
				expr = Mul{One: one, Two: two}
			}
			q.Expression = sum(q.Expression, expr)
		}
	}

	// Descend into flow-coupled children: each child's expression is gated
	// by the condition spin its coupling points back to.
	for _, id := range sortedChildIDs(n) {
		child, _ := n.Child(id)
		couplings := child.FlowControlCouplings()
		if len(couplings) == 0 {
			continue
		}

		sub, err := Lower(child, policy)
		if err != nil {
			return q, err
		}
		if sub.Expression == nil {
			continue
		}
		for outer := range couplings {
			q.Expression = sum(q.Expression, Mul{One: Spin{ID: outer}, Two: sub.Expression})
			break
		}
	}

	return q, nil
}

func sum(acc, next PhysicalExpression) PhysicalExpression {
	if acc == nil {
		return next
	}
	return Add{One: acc, Two: next}
}

func sortedChildIDs(n *mapper.Node) []int {
	children := n.Children()
	ids := make([]int, 0, len(children))
	for id := range children {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
