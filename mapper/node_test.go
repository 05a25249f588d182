package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qubolab/wasm-qubo/mapper"
	"github.com/qubolab/wasm-qubo/wasm"
)

func TestNodeVariableIDsAreDense(t *testing.T) {
	n := mapper.NewNode()

	in := n.AddInputVariable(wasm.ValI32)
	out := n.AddOutputVariable(wasm.ValI64)
	internal := n.AddInternalVariable(wasm.ValF32)
	c := n.AddConstant(wasm.ValF64)

	require.Equal(t, []int{0, 1, 2, 3}, []int{in, out, internal, c})
	require.Equal(t, 4, n.VariableCount())

	ty, ok := n.VariableType(out)
	require.True(t, ok)
	require.Equal(t, wasm.ValI64, ty)
	_, ok = n.VariableType(99)
	require.False(t, ok)
}

func TestNodeGettersReturnCopies(t *testing.T) {
	n := mapper.NewNode()
	n.AddCall(4, 7)

	calls := n.Calls()
	calls[4] = 99
	calls[5] = 1

	fresh := n.Calls()
	require.Equal(t, map[int]int{4: 7}, fresh)
}

func TestNodeSpliceOutShiftsRecords(t *testing.T) {
	n := mapper.NewNode()
	n.SetInstrs([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	n.AddCall(1, 10)  // before the span
	n.AddCall(3, 11)  // inside the span, dropped
	n.AddCall(6, 12)  // after the span, shifts down
	n.AddBranch(7, 0) // after the span, shifts down

	n.SpliceOut(2, 5)

	require.Equal(t, []byte{0, 1, 5, 6, 7}, n.Instrs())
	require.Equal(t, map[int]int{1: 10, 3: 12}, n.Calls())
	require.Equal(t, map[int]int{4: 0}, n.Branches())
}

func TestNodeSpliceInShiftsRecords(t *testing.T) {
	n := mapper.NewNode()
	n.SetInstrs([]byte{0, 1, 2, 3})
	n.AddCall(1, 10)
	n.AddCall(2, 11)

	n.SpliceIn(2, []byte{8, 9})

	require.Equal(t, []byte{0, 1, 8, 9, 2, 3}, n.Instrs())
	require.Equal(t, map[int]int{1: 10, 4: 11}, n.Calls())
}

func TestNodeSpliceRoundTrip(t *testing.T) {
	n := mapper.NewNode()
	original := []byte{0, 1, 2, 3, 4, 5}
	n.SetInstrs(original)

	removed := make([]byte, 3)
	copy(removed, original[2:5])
	n.SpliceOut(2, 5)
	n.SpliceIn(2, removed)

	require.Equal(t, original, n.Instrs())
}

func TestNodeFirstAccessors(t *testing.T) {
	n := mapper.NewNode()
	_, ok := n.FirstInputVariableType()
	require.False(t, ok)
	_, ok = n.FirstFlowControlCoupling()
	require.False(t, ok)

	n.AddInputVariable(wasm.ValI64)
	n.AddInputVariable(wasm.ValF32)
	ty, ok := n.FirstInputVariableType()
	require.True(t, ok)
	require.Equal(t, wasm.ValI64, ty)

	n.AddFlowControlCoupling(5, 1)
	n.AddFlowControlCoupling(3, 0)
	inner, ok := n.FirstFlowControlCoupling()
	require.True(t, ok)
	require.Equal(t, 0, inner, "lowest outer id wins")
}

func TestNodeOperationOrdering(t *testing.T) {
	n := mapper.NewNode()
	n.AddOperation(5, mapper.Operation{Kind: mapper.OpAdd, Type: wasm.ValI32})
	n.AddOperation(1, mapper.Operation{Kind: mapper.OpSpin, Var: 0})
	n.AddOperation(3, mapper.Operation{Kind: mapper.OpSpin, Var: 1})

	require.Equal(t, []int{1, 3, 5}, n.OperationSteps())
}
