package wasmqubo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	wasmqubo "github.com/qubolab/wasm-qubo"
	"github.com/qubolab/wasm-qubo/wasm"
)

func TestMapBytesEmptyModule(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	nodes, err := wasmqubo.MapBytes(context.Background(), data)
	require.NoError(t, err)
	require.Empty(t, nodes)
}

func TestMapBytesRejectsInvalidModule(t *testing.T) {
	_, err := wasmqubo.MapBytes(context.Background(), []byte{0x00, 0x61, 0x73, 0x6D})
	require.Error(t, err)
}

func TestMapBytesExpandsCallGraph(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{Results: []wasm.ValType{wasm.ValI32}}},
		Funcs: []uint32{0, 0},
		Code: []wasm.FuncBody{
			{Code: []byte{wasm.OpI32Const, 0x01, wasm.OpEnd}},
			{Code: []byte{wasm.OpCall, 0x00, wasm.OpI32Const, 0x02, wasm.OpI32Add, wasm.OpEnd}},
		},
	}

	nodes, err := wasmqubo.MapBytes(context.Background(), m.Encode())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.True(t, nodes[1].HasChild(0))
}
