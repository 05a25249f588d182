// Package wasmqubo maps binary WebAssembly modules into a hierarchical
// program representation for quantum-annealer code generation.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	wasmqubo/        Root package with the high-level mapping API
//	├── mapper/      Node model, operator classifier, walker, expander, collapser
//	├── qubo/        Abstract-to-physical expression lowering
//	├── wasm/        WASM binary layer: streaming module and operator readers
//	└── errors/      Structured error types
//
// # Quick Start
//
// Map a module and inspect the expanded node tree:
//
//	nodes, err := wasmqubo.MapFile(ctx, "program.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for id, node := range nodes {
//	    fmt.Println(id, len(node.Calls()), len(node.Children()))
//	}
//
// Interactive drivers plug their own mapper.Policy into a Mapper directly;
// MapFile and MapBytes expand everything.
//
// # Concurrency
//
// Mapping is single-threaded and cooperative. A Mapper must not be shared
// across goroutines.
package wasmqubo
