// Package mapper builds a hierarchical program representation from binary
// WebAssembly, as input to a quantum-annealer code generator.
//
// The pipeline has three phases:
//
//  1. Map walks every defined function body through an operator classifier,
//     producing one Node per function. A Node records the segment's byte
//     range, branches, call edges, inline blocks, variables, data couplings
//     (memory, global, flow control), and an ordered list of abstract
//     operations.
//
//  2. Expand lifts inline blocks (block/loop/if/else) into first-class
//     nodes and resolves call edges into child references, pruning self
//     references and reference loops so the result is a feed-forward graph.
//
//  3. Collapse optionally inlines a node's resolved callees back into its
//     instruction bytes, reversing the byte split that expansion performed.
//
// The mapper is in-memory only and single-threaded; interactive choices are
// injected through the Policy interface.
package mapper
