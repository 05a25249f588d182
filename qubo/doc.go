// Package qubo lowers mapped nodes into quantum-annealer expression
// skeletons.
//
// A mapped Node carries an ordered list of abstract operations (spins over
// its variables, typed adds and muls). Lower folds that list into a
// PhysicalExpression tree and recurses into flow-control-coupled children,
// producing one QUBO value per node. Emitting concrete annealer input from
// the tree is out of scope here.
package qubo
