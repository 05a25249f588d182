package wasm

import (
	"bytes"
	"errors"
	"io"

	qbinary "github.com/qubolab/wasm-qubo/wasm/internal/binary"
)

// ErrEndOfBody is returned by OperatorReader.Next when the body is exhausted.
var ErrEndOfBody = errors.New("wasm: end of function body")

// OperatorReader decodes a function body one instruction at a time.
//
// The reader is positioned over a body slice as produced by ModuleReader
// (local declarations followed by code). The local declaration vector is
// consumed on construction, so the first Next returns the first operator.
//
// Position reports the byte offset from the start of the body slice,
// including the local declarations. After a Next call it points just past
// the decoded instruction, which makes the offset captured *before* a call
// the offset of that instruction.
type OperatorReader struct {
	r      *qbinary.Reader
	locals []LocalEntry
	size   int
}

// NewOperatorReader creates an OperatorReader over a function body slice.
//
// The local declaration vector at the head of the body is decoded eagerly;
// a malformed vector is reported here rather than on the first Next.
func NewOperatorReader(body []byte) (*OperatorReader, error) {
	r := qbinary.NewReader(bytes.NewReader(body))

	localCount, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("local declarations", err)
	}
	var locals []LocalEntry
	for i := uint32(0); i < localCount; i++ {
		n, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("local declarations", err)
		}
		t, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("local declarations", err)
		}
		locals = append(locals, LocalEntry{Count: n, ValType: ValType(t)})
	}

	return &OperatorReader{r: r, locals: locals, size: len(body)}, nil
}

// Next decodes and returns the next operator.
//
// Returns ErrEndOfBody once the body slice is exhausted. Any other error
// means the body is malformed at the current position.
func (o *OperatorReader) Next() (Instruction, error) {
	if o.r.Position() >= o.size {
		return Instruction{}, ErrEndOfBody
	}
	instr, err := readInstruction(o.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Instruction{}, o.r.WrapError("operator", io.ErrUnexpectedEOF)
		}
		return Instruction{}, o.r.WrapError("operator", err)
	}
	return instr, nil
}

// Position returns the byte offset within the body slice, counting the
// local declaration vector.
func (o *OperatorReader) Position() int {
	return o.r.Position()
}

// Locals returns the decoded local declarations.
func (o *OperatorReader) Locals() []LocalEntry {
	return o.locals
}
