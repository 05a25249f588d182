package wasm_test

import (
	"bytes"
	"testing"

	"github.com/qubolab/wasm-qubo/wasm"
)

func drain(t *testing.T, mr *wasm.ModuleReader) []wasm.Event {
	t.Helper()
	var events []wasm.Event
	for i := 0; i < 1000; i++ {
		ev := mr.Next()
		events = append(events, ev)
		if ev.Kind == wasm.EventEnd {
			return events
		}
	}
	t.Fatal("module reader did not terminate")
	return nil
}

func TestModuleReaderEmptyModule(t *testing.T) {
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	mr, err := wasm.NewModuleReader(data)
	if err != nil {
		t.Fatalf("NewModuleReader: %v", err)
	}

	ev := mr.Next()
	if ev.Kind != wasm.EventEnd {
		t.Errorf("event = %v, want EventEnd", ev.Kind)
	}
	// Terminal state is sticky.
	if mr.Next().Kind != wasm.EventEnd {
		t.Error("EventEnd should repeat")
	}
}

func TestModuleReaderBadHeader(t *testing.T) {
	if _, err := wasm.NewModuleReader([]byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}); err == nil {
		t.Error("expected version error")
	}
	if _, err := wasm.NewModuleReader([]byte{0xde, 0xad}); err == nil {
		t.Error("expected header error")
	}
}

func TestModuleReaderFunctionsAndBodies(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Results: []wasm.ValType{wasm.ValI32}},
			{Params: []wasm.ValType{wasm.ValI32}},
		},
		Funcs: []uint32{0, 1},
		Code: []wasm.FuncBody{
			{Code: []byte{wasm.OpI32Const, 0x2A, wasm.OpEnd}},
			{Code: []byte{wasm.OpEnd}},
		},
	}
	data := m.Encode()

	mr, err := wasm.NewModuleReader(data)
	if err != nil {
		t.Fatalf("NewModuleReader: %v", err)
	}

	var entries []uint32
	var bodies []wasm.Range
	for _, ev := range drain(t, mr) {
		switch ev.Kind {
		case wasm.EventFuncEntry:
			entries = append(entries, ev.TypeIndex)
		case wasm.EventFuncBody:
			bodies = append(bodies, ev.Body)
		case wasm.EventError:
			t.Fatalf("unexpected parse error: %v", ev.Err)
		}
	}

	if len(entries) != 2 || entries[0] != 0 || entries[1] != 1 {
		t.Errorf("function entries = %v, want [0 1]", entries)
	}
	if len(bodies) != 2 {
		t.Fatalf("bodies = %d, want 2", len(bodies))
	}
	if mr.CurrentFuncIndex() != 1 {
		t.Errorf("CurrentFuncIndex = %d, want 1", mr.CurrentFuncIndex())
	}

	// The first body range covers the locals vector plus the code bytes.
	want := append([]byte{0x00}, m.Code[0].Code...)
	got := data[bodies[0].Start:bodies[0].End]
	if !bytes.Equal(got, want) {
		t.Errorf("body 0 bytes = %x, want %x", got, want)
	}

	// Resources were collected from the type section.
	res := mr.Resources()
	if len(res.Types) != 2 {
		t.Fatalf("resource types = %d, want 2", len(res.Types))
	}
	if ft, ok := res.FuncType(0); !ok || len(ft.Results) != 1 {
		t.Errorf("FuncType(0) = %v, %v", ft, ok)
	}

	// An operator reader over the recorded range sees the body's operators.
	ops, err := mr.OperatorReader(bodies[0])
	if err != nil {
		t.Fatalf("OperatorReader: %v", err)
	}
	instr, err := ops.Next()
	if err != nil || instr.Opcode != wasm.OpI32Const {
		t.Errorf("first op = %v, %v", instr, err)
	}
}

func TestModuleReaderResourcesGlobals(t *testing.T) {
	m := &wasm.Module{
		Imports: []wasm.Import{
			{
				Module: "env", Name: "g0",
				Desc: wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &wasm.GlobalType{ValType: wasm.ValF32}},
			},
		},
		Globals: []wasm.Global{
			{
				Type: wasm.GlobalType{ValType: wasm.ValI64, Mutable: true},
				Init: []byte{wasm.OpI64Const, 0x00, wasm.OpEnd},
			},
		},
	}
	mr, err := wasm.NewModuleReader(m.Encode())
	if err != nil {
		t.Fatalf("NewModuleReader: %v", err)
	}
	drain(t, mr)

	res := mr.Resources()
	if len(res.Globals) != 2 {
		t.Fatalf("globals = %d, want 2 (imported first)", len(res.Globals))
	}
	if gt, _ := res.Global(0); gt.ValType != wasm.ValF32 {
		t.Errorf("global 0 = %v, want f32 import", gt)
	}
	if gt, _ := res.Global(1); gt.ValType != wasm.ValI64 || !gt.Mutable {
		t.Errorf("global 1 = %v, want mutable i64", gt)
	}
}

func TestModuleReaderSkipsCustomSections(t *testing.T) {
	m := &wasm.Module{
		CustomSections: []wasm.CustomSection{{Name: "name", Data: []byte{1, 2, 3}}},
	}
	mr, err := wasm.NewModuleReader(m.Encode())
	if err != nil {
		t.Fatalf("NewModuleReader: %v", err)
	}

	events := drain(t, mr)
	if events[0].Kind != wasm.EventOther || events[0].SectionID != wasm.SectionCustom {
		t.Errorf("first event = %+v, want skipped custom section", events[0])
	}
}
