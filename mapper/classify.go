package mapper

import (
	"github.com/qubolab/wasm-qubo/wasm"
)

// opContext carries the walk state a classifier handler may read or mutate.
//
// Handlers are stateless and shared across walks; everything mutable flows
// through the context. The node is the only thing a handler writes to.
type opContext struct {
	node   *Node
	res    *wasm.Resources
	params []int // parameter index -> input variable id of the enclosing function
	step   int   // walk-step ordinal of the current instruction
	pos    int   // byte offset of the current instruction, relative to node start
}

// opHandler classifies a single operator into its effect on the Node.
//
// Control-flow operators (block/loop/if/else/end/return) never reach a
// handler; the walker owns those because they recurse or terminate the walk.
type opHandler interface {
	handle(ctx *opContext, instr wasm.Instruction) error
}

// opHandlerFunc adapts a function to the opHandler interface.
type opHandlerFunc func(ctx *opContext, instr wasm.Instruction) error

func (f opHandlerFunc) handle(ctx *opContext, instr wasm.Instruction) error {
	return f(ctx, instr)
}

// opRegistry maps opcodes to their classifier handlers. Opcodes without a
// handler are semantically irrelevant to the mapping and pass through.
type opRegistry struct {
	handlers [256]opHandler
}

func (r *opRegistry) register(opcode byte, h opHandler) {
	r.handlers[opcode] = h
}

func (r *opRegistry) registerBulk(opcodes []byte, h opHandler) {
	for _, op := range opcodes {
		r.handlers[op] = h
	}
}

func (r *opRegistry) get(opcode byte) opHandler {
	return r.handlers[opcode]
}

// classifier is the shared operator classifier. It covers the MVP opcode
// set plus threads, bulk memory, reference types, and SIMD; everything the
// table leaves out is a deliberate pass-through.
var classifier = newClassifier()

func newClassifier() *opRegistry {
	r := &opRegistry{}

	// Constants register a locally scoped constant of the literal's type.
	r.register(wasm.OpI32Const, constHandler{wasm.ValI32})
	r.register(wasm.OpI64Const, constHandler{wasm.ValI64})
	r.register(wasm.OpF32Const, constHandler{wasm.ValF32})
	r.register(wasm.OpF64Const, constHandler{wasm.ValF64})

	// Loads couple a fresh input variable to the accessed memory offset.
	r.registerBulk([]byte{
		wasm.OpI32Load, wasm.OpI32Load8S, wasm.OpI32Load8U,
		wasm.OpI32Load16S, wasm.OpI32Load16U,
	}, loadHandler{wasm.ValI32})
	r.registerBulk([]byte{
		wasm.OpI64Load, wasm.OpI64Load8S, wasm.OpI64Load8U,
		wasm.OpI64Load16S, wasm.OpI64Load16U,
		wasm.OpI64Load32S, wasm.OpI64Load32U,
	}, loadHandler{wasm.ValI64})
	r.register(wasm.OpF32Load, loadHandler{wasm.ValF32})
	r.register(wasm.OpF64Load, loadHandler{wasm.ValF64})

	// Stores couple a fresh output variable to the accessed memory offset.
	r.registerBulk([]byte{
		wasm.OpI32Store, wasm.OpI32Store8, wasm.OpI32Store16,
	}, storeHandler{wasm.ValI32})
	r.registerBulk([]byte{
		wasm.OpI64Store, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32,
	}, storeHandler{wasm.ValI64})
	r.register(wasm.OpF32Store, storeHandler{wasm.ValF32})
	r.register(wasm.OpF64Store, storeHandler{wasm.ValF64})

	// Globals couple against the global slot index.
	r.register(wasm.OpGlobalGet, opHandlerFunc(handleGlobalGet))
	r.register(wasm.OpGlobalSet, opHandlerFunc(handleGlobalSet))

	// Parameter reads become spins on the signature's input variables.
	r.register(wasm.OpLocalGet, opHandlerFunc(handleLocalGet))

	// Branch targets.
	r.register(wasm.OpBr, opHandlerFunc(handleBranch))
	r.register(wasm.OpBrIf, opHandlerFunc(handleBranch))
	r.register(wasm.OpBrTable, opHandlerFunc(handleBrTable))

	// Call edges.
	r.register(wasm.OpCall, opHandlerFunc(handleCall))
	r.register(wasm.OpCallIndirect, opHandlerFunc(handleCallIndirect))

	// Simulatable arithmetic.
	r.register(wasm.OpI32Add, arithHandler{OpAdd, wasm.ValI32})
	r.register(wasm.OpI64Add, arithHandler{OpAdd, wasm.ValI64})
	r.register(wasm.OpF32Add, arithHandler{OpAdd, wasm.ValF32})
	r.register(wasm.OpF64Add, arithHandler{OpAdd, wasm.ValF64})
	r.register(wasm.OpI32Mul, arithHandler{OpMul, wasm.ValI32})
	r.register(wasm.OpI64Mul, arithHandler{OpMul, wasm.ValI64})
	r.register(wasm.OpF32Mul, arithHandler{OpMul, wasm.ValF32})
	r.register(wasm.OpF64Mul, arithHandler{OpMul, wasm.ValF64})

	// Prefixed instruction sets.
	r.register(wasm.OpPrefixAtomic, opHandlerFunc(handleAtomic))
	r.register(wasm.OpPrefixSIMD, opHandlerFunc(handleSIMD))

	return r
}
