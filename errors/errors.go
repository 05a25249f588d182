package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // binary parsing
	PhaseMap      Phase = "map"      // operator walk
	PhaseExpand   Phase = "expand"   // tree expansion
	PhaseCollapse Phase = "collapse" // node inlining
	PhaseLower    Phase = "lower"    // expression lowering
)

// Kind categorizes the error
type Kind string

const (
	KindBadWasm         Kind = "bad_wasm"
	KindUnknownFuncType Kind = "unknown_func_type"
	KindMissingChild    Kind = "missing_child"
	KindBadElse         Kind = "bad_else"
	KindInvalidOperand  Kind = "invalid_operand"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
)

// Error is the structured error type used throughout the mapper
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Node   int
	Offset int

	hasNode   bool
	hasOffset bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.hasNode {
		fmt.Fprintf(&b, " node %d", e.Node)
	}
	if e.hasOffset {
		fmt.Fprintf(&b, " at offset 0x%x", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Node sets the node id the error refers to
func (b *Builder) Node(id int) *Builder {
	b.err.Node = id
	b.err.hasNode = true
	return b
}

// Offset sets the byte offset in the source module
func (b *Builder) Offset(pos int) *Builder {
	b.err.Offset = pos
	b.err.hasOffset = true
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}
