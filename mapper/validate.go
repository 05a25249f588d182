package mapper

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	qerrors "github.com/qubolab/wasm-qubo/errors"
)

// Validate checks the module with wazero's compiler without executing it.
//
// The mapper's own decoder is structural only; running the bytes through a
// real validator first establishes the precondition that the walk operates
// on well-typed WASM. Nothing is instantiated and no code runs.
func Validate(ctx context.Context, buf []byte) error {
	cfg := wazero.NewRuntimeConfigInterpreter().WithCoreFeatures(api.CoreFeaturesV2)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, buf)
	if err != nil {
		return qerrors.New(qerrors.PhaseDecode, qerrors.KindBadWasm).
			Cause(err).
			Detail("module failed validation").
			Build()
	}
	return compiled.Close(ctx)
}
