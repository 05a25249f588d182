package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qubolab/wasm-qubo/mapper"
	"github.com/qubolab/wasm-qubo/wasm"
)

func TestExpandResolvesCall(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{Results: []wasm.ValType{wasm.ValI32}}},
		Funcs: []uint32{0, 0},
		Code: []wasm.FuncBody{
			{Code: []byte{wasm.OpI32Const, 0x01, wasm.OpEnd}},
			{Code: []byte{wasm.OpCall, 0x00, wasm.OpEnd}},
		},
	}

	mp, _ := mapModule(t, m)
	tree := mp.Expand(mapper.ExpandAll)

	require.Len(t, tree, 2)
	child, ok := tree[1].Child(0)
	require.True(t, ok, "node 1 attaches node 0 after expansion")
	require.Same(t, tree[0], child)
	require.Empty(t, tree[0].Children())
}

func TestExpandPrunesSelfReference(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0},
		Code:  []wasm.FuncBody{{Code: []byte{wasm.OpCall, 0x00, wasm.OpEnd}}},
	}

	mp, nodes := mapModule(t, m)
	require.Len(t, nodes[0].Calls(), 1)

	tree := mp.Expand(mapper.ExpandAll)
	require.Empty(t, tree[0].Children(), "self reference pruned")
	require.Len(t, tree[0].Calls(), 1, "call edge retained")
}

func TestExpandPrunesReferenceLoop(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0, 0},
		Code: []wasm.FuncBody{
			{Code: []byte{wasm.OpCall, 0x01, wasm.OpEnd}},
			{Code: []byte{wasm.OpCall, 0x00, wasm.OpEnd}},
		},
	}

	mp, _ := mapModule(t, m)
	tree := mp.Expand(mapper.ExpandAll)

	// Node 0 is expanded first and includes node 1; node 1's expansion hit
	// node 0 on the path and pruned the back edge.
	require.Len(t, tree[0].Children(), 1)
	require.True(t, tree[0].HasChild(1))
	require.Empty(t, tree[1].Children())
	require.Len(t, tree[1].Calls(), 1, "back edge retained as a call record")

	requireAcyclic(t, tree)
}

func TestExpandSkipsDuplicateEdges(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0, 0},
		Code: []wasm.FuncBody{
			{Code: []byte{wasm.OpEnd}},
			{Code: []byte{
				wasm.OpCall, 0x00,
				wasm.OpCall, 0x00,
				wasm.OpEnd,
			}},
		},
	}

	mp, nodes := mapModule(t, m)
	require.Len(t, nodes[1].Calls(), 2, "two distinct call sites")

	tree := mp.Expand(mapper.ExpandAll)
	require.Len(t, tree[1].Children(), 1, "one child per callee")
}

func TestExpandLiftsBlocks(t *testing.T) {
	code := []byte{
		wasm.OpBlock, 0x40,
		wasm.OpI32Const, 0x05,
		wasm.OpEnd,
		wasm.OpEnd,
	}
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0},
		Code:  []wasm.FuncBody{{Code: code}},
	}

	mp, nodes := mapModule(t, m)
	original := nodes[0].Instrs()

	tree := mp.Expand(mapper.ExpandAll)
	root := tree[0]

	// Blocks are gone, replaced by a call edge to a fresh first-class node.
	require.Empty(t, root.Blocks())
	calls := root.Calls()
	require.Len(t, calls, 1)
	require.Len(t, root.Children(), 1)

	blockID := calls[3]
	require.Equal(t, 1, blockID, "block ids continue after the function ids")
	child, ok := root.Child(blockID)
	require.True(t, ok)
	require.Equal(t, blockID, child.ID())
	require.Equal(t, []byte{wasm.OpI32Const, 0x05, wasm.OpEnd}, child.Instrs())

	// The block's bytes were split out of the root.
	require.Equal(t, []byte{0x00, wasm.OpBlock, 0x40, wasm.OpEnd}, root.Instrs())
	require.Equal(t, len(original), root.InstrLen()+child.InstrLen())

	// The lifted block is registered as a first-class node.
	registered, ok := mp.Node(blockID)
	require.True(t, ok)
	require.Same(t, child, registered)
}

func TestExpandLoop(t *testing.T) {
	code := []byte{
		wasm.OpLoop, 0x40,
		wasm.OpBr, 0x00,
		wasm.OpEnd,
		wasm.OpEnd,
	}
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0},
		Code:  []wasm.FuncBody{{Code: code}},
	}

	mp, _ := mapModule(t, m)
	tree := mp.Expand(mapper.ExpandAll)

	require.Len(t, tree[0].Children(), 1)
	requireAcyclic(t, tree)
}

func TestExpandIdempotent(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0, 0},
		Code: []wasm.FuncBody{
			{Code: []byte{
				wasm.OpBlock, 0x40,
				wasm.OpEnd,
				wasm.OpEnd,
			}},
			{Code: []byte{wasm.OpCall, 0x00, wasm.OpEnd}},
		},
	}

	mp, _ := mapModule(t, m)
	first := mp.Expand(mapper.ExpandAll)

	snapshot := make(map[int][]byte)
	childCounts := make(map[int]int)
	for id, n := range first {
		snapshot[id] = n.Instrs()
		childCounts[id] = len(n.Children())
	}

	second := mp.Expand(mapper.ExpandAll)
	require.Equal(t, len(first), len(second))
	for id, n := range second {
		require.Equal(t, snapshot[id], n.Instrs(), "node %d bytes stable", id)
		require.Equal(t, childCounts[id], len(n.Children()), "node %d children stable", id)
	}
}

func TestExpandPolicyGatesTopLevel(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0},
		Code: []wasm.FuncBody{
			{Code: []byte{
				wasm.OpBlock, 0x40,
				wasm.OpEnd,
				wasm.OpEnd,
			}},
		},
	}

	mp, _ := mapModule(t, m)
	tree := mp.Expand(mapper.ExpandNone)
	require.Len(t, tree[0].Blocks(), 1, "nothing lifted when policy declines")
	require.Empty(t, tree[0].Children())
}

func TestExpandUnresolvableCallee(t *testing.T) {
	// Node ids count defined bodies only, so with an imported function in
	// front the callee id resolves to no registered node.
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Imports: []wasm.Import{
			{Module: "env", Name: "host", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}},
		},
		Funcs: []uint32{0},
		Code:  []wasm.FuncBody{{Code: []byte{wasm.OpCall, 0x01, wasm.OpEnd}}},
	}

	mp, _ := mapModule(t, m)
	tree := mp.Expand(mapper.ExpandAll)

	require.Empty(t, tree[0].Children())
	require.Len(t, tree[0].Calls(), 1, "unresolved edge retained")
}

// requireAcyclic walks every node depth-first and fails on a cycle along
// the current path.
func requireAcyclic(t *testing.T, tree map[int]*mapper.Node) {
	t.Helper()
	var visit func(n *mapper.Node, path map[int]bool)
	visit = func(n *mapper.Node, path map[int]bool) {
		require.False(t, path[n.ID()], "cycle through node %d", n.ID())
		path[n.ID()] = true
		for _, child := range n.Children() {
			visit(child, path)
		}
		delete(path, n.ID())
	}
	for _, n := range tree {
		visit(n, map[int]bool{})
	}
}
