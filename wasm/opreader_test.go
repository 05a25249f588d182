package wasm_test

import (
	"errors"
	"testing"

	"github.com/qubolab/wasm-qubo/wasm"
)

func TestOperatorReaderPositions(t *testing.T) {
	// No locals: 0x00, then i32.const 1, i32.const 2, i32.add, end.
	body := []byte{
		0x00,
		wasm.OpI32Const, 0x01,
		wasm.OpI32Const, 0x02,
		wasm.OpI32Add,
		wasm.OpEnd,
	}

	r, err := wasm.NewOperatorReader(body)
	if err != nil {
		t.Fatalf("NewOperatorReader: %v", err)
	}
	if r.Position() != 1 {
		t.Errorf("initial position = %d, want 1 (past locals)", r.Position())
	}

	wantOps := []byte{wasm.OpI32Const, wasm.OpI32Const, wasm.OpI32Add, wasm.OpEnd}
	wantPos := []int{3, 5, 6, 7}
	for i, wantOp := range wantOps {
		instr, err := r.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if instr.Opcode != wantOp {
			t.Errorf("op %d = 0x%02x, want 0x%02x", i, instr.Opcode, wantOp)
		}
		if r.Position() != wantPos[i] {
			t.Errorf("position after op %d = %d, want %d", i, r.Position(), wantPos[i])
		}
	}

	if _, err := r.Next(); !errors.Is(err, wasm.ErrEndOfBody) {
		t.Errorf("expected ErrEndOfBody, got %v", err)
	}
}

func TestOperatorReaderLocals(t *testing.T) {
	body := []byte{
		0x02, // two local groups
		0x01, byte(wasm.ValI32),
		0x03, byte(wasm.ValF64),
		wasm.OpEnd,
	}

	r, err := wasm.NewOperatorReader(body)
	if err != nil {
		t.Fatalf("NewOperatorReader: %v", err)
	}

	locals := r.Locals()
	if len(locals) != 2 {
		t.Fatalf("locals = %d groups, want 2", len(locals))
	}
	if locals[0].Count != 1 || locals[0].ValType != wasm.ValI32 {
		t.Errorf("locals[0] = %+v", locals[0])
	}
	if locals[1].Count != 3 || locals[1].ValType != wasm.ValF64 {
		t.Errorf("locals[1] = %+v", locals[1])
	}

	instr, err := r.Next()
	if err != nil || instr.Opcode != wasm.OpEnd {
		t.Errorf("Next = %v, %v", instr, err)
	}
}

func TestOperatorReaderMalformed(t *testing.T) {
	// Truncated immediate: i32.const with no payload.
	body := []byte{0x00, wasm.OpI32Const}
	r, err := wasm.NewOperatorReader(body)
	if err != nil {
		t.Fatalf("NewOperatorReader: %v", err)
	}
	if _, err := r.Next(); err == nil {
		t.Error("expected error for truncated immediate")
	}

	// Unsupported opcode (exception handling).
	body = []byte{0x00, 0x06}
	r, err = wasm.NewOperatorReader(body)
	if err != nil {
		t.Fatalf("NewOperatorReader: %v", err)
	}
	if _, err := r.Next(); err == nil {
		t.Error("expected error for unsupported opcode")
	}
}
