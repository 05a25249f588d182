package wasmqubo

import (
	"context"
	"os"

	"github.com/qubolab/wasm-qubo/mapper"
)

// MapBytes validates the module, maps every defined function, and expands
// the node tree into its feed-forward form.
//
// The returned map is keyed by node id: function nodes first, then the
// block nodes expansion lifted out of them, reachable through children.
func MapBytes(ctx context.Context, buf []byte) (map[int]*mapper.Node, error) {
	if err := mapper.Validate(ctx, buf); err != nil {
		return nil, err
	}

	m := mapper.New()
	if _, err := m.Map(buf); err != nil {
		return nil, err
	}
	return m.Expand(mapper.ExpandAll), nil
}

// MapFile reads a .wasm file and maps it with MapBytes.
func MapFile(ctx context.Context, path string) (map[int]*mapper.Node, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return MapBytes(ctx, buf)
}
