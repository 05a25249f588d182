// Package wasm provides the WebAssembly binary layer for the flow mapper.
//
// It covers the core binary format (MVP) plus the threads, bulk memory,
// reference types, and SIMD extensions. GC and exception handling are not
// supported; an unknown opcode or type form is a decode error.
//
// Two access styles are provided:
//
//   - ParseModule / (*Module).Encode decode and encode a whole module at
//     once. Tests and tools build Module values directly and encode them.
//
//   - ModuleReader / OperatorReader stream a module: the ModuleReader
//     yields top-level events (function-section entries, code body ranges)
//     without decoding bodies, and an OperatorReader walks one body a
//     single instruction at a time with byte-accurate positions. This is
//     the interface the mapper consumes.
package wasm
