package binary

import (
	"bytes"
	"testing"
)

func TestReaderPositionTracking(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x80, 0x02, 0xAA}))

	if _, err := r.ReadByte(); err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if r.Position() != 1 {
		t.Errorf("position = %d, want 1", r.Position())
	}

	v, err := r.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if v != 256 {
		t.Errorf("ReadU32 = %d, want 256", v)
	}
	if r.Position() != 3 {
		t.Errorf("position = %d, want 3", r.Position())
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x6D736100)
	w.WriteU32(624485)
	w.WriteName("memory")
	w.Byte(0x0B)

	r := NewReader(bytes.NewReader(w.Bytes()))

	magic, err := r.ReadU32LE()
	if err != nil || magic != 0x6D736100 {
		t.Errorf("ReadU32LE = %x, %v", magic, err)
	}
	v, err := r.ReadU32()
	if err != nil || v != 624485 {
		t.Errorf("ReadU32 = %d, %v", v, err)
	}
	name, err := r.ReadName()
	if err != nil || name != "memory" {
		t.Errorf("ReadName = %q, %v", name, err)
	}
	b, err := r.ReadByte()
	if err != nil || b != 0x0B {
		t.Errorf("ReadByte = %x, %v", b, err)
	}
}

func TestReadNameRejectsBadUTF8(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x02, 0xFF, 0xFE}))
	if _, err := r.ReadName(); err == nil {
		t.Error("expected UTF-8 error")
	}
}
