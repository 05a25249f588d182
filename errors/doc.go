// Package errors provides structured error types for the flow mapper.
//
// Errors carry a processing phase (decode, map, expand, collapse, lower),
// a kind, and optional node/offset context so a failure can be traced back
// to the offending position in the source module.
//
// A walk failure is constructed like:
//
//	errors.New(errors.PhaseMap, errors.KindBadWasm).
//	    Node(funcID).
//	    Offset(pos).
//	    Cause(err).
//	    Build()
//
// Matching uses errors.Is against a (phase, kind) prototype.
package errors
