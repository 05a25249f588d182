package wasm_test

import (
	"bytes"
	"testing"

	"github.com/qubolab/wasm-qubo/wasm"
)

func TestParseMinimalModule(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if m == nil {
		t.Fatal("expected non-nil module")
	}
}

func TestParseInvalidMagic(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	_, err := wasm.ParseModule(data)
	if err == nil {
		t.Error("expected error for invalid magic")
	}
}

func TestParseInvalidVersion(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}
	_, err := wasm.ParseModule(data)
	if err == nil {
		t.Error("expected error for invalid version")
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73}
	_, err := wasm.ParseModule(data)
	if err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
			{},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "tick", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 1}},
		},
		Funcs:    []uint32{0},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Globals: []wasm.Global{
			{
				Type: wasm.GlobalType{ValType: wasm.ValI64, Mutable: true},
				Init: []byte{wasm.OpI64Const, 0x00, wasm.OpEnd},
			},
		},
		Exports: []wasm.Export{{Name: "run", Kind: wasm.KindFunc, Idx: 1}},
		Code: []wasm.FuncBody{
			{
				Locals: []wasm.LocalEntry{{Count: 2, ValType: wasm.ValI64}},
				Code: wasm.EncodeInstructions([]wasm.Instruction{
					{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
					{Opcode: wasm.OpEnd},
				}),
			},
		},
	}

	data := m.Encode()
	parsed, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	if len(parsed.Types) != 2 {
		t.Errorf("types = %d, want 2", len(parsed.Types))
	}
	if len(parsed.Imports) != 1 || parsed.Imports[0].Name != "tick" {
		t.Errorf("imports = %v", parsed.Imports)
	}
	if parsed.NumImportedFuncs() != 1 {
		t.Errorf("NumImportedFuncs = %d, want 1", parsed.NumImportedFuncs())
	}
	if len(parsed.Funcs) != 1 || parsed.Funcs[0] != 0 {
		t.Errorf("funcs = %v", parsed.Funcs)
	}
	if len(parsed.Globals) != 1 || parsed.Globals[0].Type.ValType != wasm.ValI64 {
		t.Errorf("globals = %v", parsed.Globals)
	}
	if len(parsed.Code) != 1 || len(parsed.Code[0].Locals) != 1 {
		t.Errorf("code = %v", parsed.Code)
	}
	if !bytes.Equal(parsed.Code[0].Code, m.Code[0].Code) {
		t.Errorf("body bytes differ: %x vs %x", parsed.Code[0].Code, m.Code[0].Code)
	}

	// Encoding the parsed module reproduces the same bytes.
	if !bytes.Equal(parsed.Encode(), data) {
		t.Error("re-encoded module differs from original bytes")
	}
}

func TestGetFuncType(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Results: []wasm.ValType{wasm.ValF64}},
			{Params: []wasm.ValType{wasm.ValI32}},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "f", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 1}},
		},
		Funcs: []uint32{0},
	}

	imported := m.GetFuncType(0)
	if imported == nil || len(imported.Params) != 1 {
		t.Errorf("imported type = %v", imported)
	}
	defined := m.GetFuncType(1)
	if defined == nil || len(defined.Results) != 1 {
		t.Errorf("defined type = %v", defined)
	}
	if m.GetFuncType(2) != nil {
		t.Error("out-of-range func index should have nil type")
	}
}

func TestValidateCatchesBadIndices(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{3}, // no such type
		Code:  []wasm.FuncBody{{Code: []byte{wasm.OpEnd}}},
	}
	if err := m.Validate(); err == nil {
		t.Error("expected validation error for bad type index")
	}

	ok := &wasm.Module{
		Types: []wasm.FuncType{{}},
		Funcs: []uint32{0},
		Code:  []wasm.FuncBody{{Code: []byte{wasm.OpEnd}}},
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseSectionOutOfOrder(t *testing.T) {
	// Function section before type section.
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x03, 0x02, 0x01, 0x00, // function section
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section
	}
	if _, err := wasm.ParseModule(data); err == nil {
		t.Error("expected section ordering error")
	}
}
