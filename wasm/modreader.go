package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	qbinary "github.com/qubolab/wasm-qubo/wasm/internal/binary"
)

// Parsing errors returned by NewModuleReader.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// EventKind identifies a top-level parse state reported by ModuleReader.
type EventKind int

const (
	// EventOther is any section the caller does not act on (skipped whole).
	EventOther EventKind = iota
	// EventFuncEntry is one function-section entry carrying a type index.
	EventFuncEntry
	// EventFuncBody is the beginning of one code-section body. The body
	// itself is skipped; use OperatorReader to walk it.
	EventFuncBody
	// EventEnd is the end of the module.
	EventEnd
	// EventError is a recoverable decode problem; the reader skips the
	// offending section and continues.
	EventError
)

// Range is a half-open byte range into the module buffer.
type Range struct {
	Start int
	End   int
}

// Event is one top-level parse state.
type Event struct {
	Err       error
	Body      Range
	TypeIndex uint32
	SectionID byte
	Kind      EventKind
}

// Resources exposes the module-level tables an operator walk needs:
// function signatures and global types, in index-space order.
type Resources struct {
	Types   []FuncType
	Globals []GlobalType

	// ImportedFuncs is the number of imported functions preceding the
	// defined ones in the function index space.
	ImportedFuncs int
}

// FuncType returns the signature at the given type index.
func (r *Resources) FuncType(typeIdx uint32) (FuncType, bool) {
	if int(typeIdx) >= len(r.Types) {
		return FuncType{}, false
	}
	return r.Types[typeIdx], true
}

// Global returns the type of the global at the given slot index.
func (r *Resources) Global(idx uint32) (GlobalType, bool) {
	if int(idx) >= len(r.Globals) {
		return GlobalType{}, false
	}
	return r.Globals[idx], true
}

// ModuleReader drives a streaming pass over a binary module.
//
// Next yields one Event per call: function-section entries and code-section
// bodies are reported individually, everything else one section at a time.
// Function bodies are never decoded here; the reader records their byte
// range and skips them, the way a driver would request SkipFunctionBody.
//
// Type, import, and global sections populate Resources as they are passed,
// so by the time the code section is reached the signature and global
// tables are complete for a well-formed module.
type ModuleReader struct {
	buf []byte
	r   *qbinary.Reader
	res Resources

	// remaining entries of the section currently being streamed
	mode       readerMode
	remaining  uint32
	sectionEnd int

	funcIndex int
	done      bool
}

type readerMode int

const (
	modeSections readerMode = iota
	modeFuncEntries
	modeCodeBodies
)

// NewModuleReader creates a ModuleReader over the given module bytes.
// The header is checked eagerly; a bad magic or version is fatal.
func NewModuleReader(buf []byte) (*ModuleReader, error) {
	r := qbinary.NewReader(bytes.NewReader(buf))

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	return &ModuleReader{buf: buf, r: r, funcIndex: -1}, nil
}

// Resources returns the module-level tables collected so far.
func (mr *ModuleReader) Resources() *Resources {
	return &mr.res
}

// CurrentFuncIndex returns the zero-based index of the most recently
// reported function body, counting only defined bodies.
func (mr *ModuleReader) CurrentFuncIndex() int {
	return mr.funcIndex
}

// OperatorReader returns a streaming operator reader over a body range
// previously reported by an EventFuncBody.
func (mr *ModuleReader) OperatorReader(body Range) (*OperatorReader, error) {
	if body.Start < 0 || body.End > len(mr.buf) || body.Start > body.End {
		return nil, fmt.Errorf("wasm: body range [%d,%d) out of bounds", body.Start, body.End)
	}
	return NewOperatorReader(mr.buf[body.Start:body.End])
}

// Next advances to the next top-level state.
func (mr *ModuleReader) Next() Event {
	if mr.done {
		return Event{Kind: EventEnd}
	}

	switch mr.mode {
	case modeFuncEntries:
		if mr.remaining > 0 {
			mr.remaining--
			typeIdx, err := mr.r.ReadU32()
			if err != nil {
				return mr.failSection(SectionFunction, err)
			}
			return Event{Kind: EventFuncEntry, TypeIndex: typeIdx}
		}
		mr.mode = modeSections

	case modeCodeBodies:
		if mr.remaining > 0 {
			mr.remaining--
			bodySize, err := mr.r.ReadU32()
			if err != nil {
				return mr.failSection(SectionCode, err)
			}
			start := mr.r.Position()
			if err := mr.r.SkipBytes(int(bodySize)); err != nil {
				return mr.failSection(SectionCode, err)
			}
			mr.funcIndex++
			return Event{Kind: EventFuncBody, Body: Range{Start: start, End: start + int(bodySize)}}
		}
		mr.mode = modeSections
	}

	return mr.nextSection()
}

func (mr *ModuleReader) nextSection() Event {
	sectionID, err := mr.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			mr.done = true
			return Event{Kind: EventEnd}
		}
		mr.done = true
		return Event{Kind: EventError, Err: mr.r.WrapError("section header", err)}
	}

	sectionSize, err := mr.r.ReadU32()
	if err != nil {
		mr.done = true
		return Event{Kind: EventError, Err: mr.r.WrapError("section size", err)}
	}
	mr.sectionEnd = mr.r.Position() + int(sectionSize)
	if mr.sectionEnd > len(mr.buf) {
		mr.done = true
		return Event{Kind: EventError, Err: fmt.Errorf("wasm: section %d overruns module", sectionID)}
	}

	switch sectionID {
	case SectionType:
		if err := mr.readTypeSection(); err != nil {
			return mr.failSection(sectionID, err)
		}
	case SectionImport:
		if err := mr.readImportSection(); err != nil {
			return mr.failSection(sectionID, err)
		}
	case SectionGlobal:
		if err := mr.readGlobalSection(); err != nil {
			return mr.failSection(sectionID, err)
		}
	case SectionFunction:
		count, err := mr.r.ReadU32()
		if err != nil {
			return mr.failSection(sectionID, err)
		}
		mr.mode = modeFuncEntries
		mr.remaining = count
		return mr.Next()
	case SectionCode:
		count, err := mr.r.ReadU32()
		if err != nil {
			return mr.failSection(sectionID, err)
		}
		mr.mode = modeCodeBodies
		mr.remaining = count
		return mr.Next()
	default:
		if err := mr.skipToSectionEnd(); err != nil {
			mr.done = true
			return Event{Kind: EventError, Err: err}
		}
	}
	return Event{Kind: EventOther, SectionID: sectionID}
}

// failSection reports a section-level decode problem and resynchronizes at
// the section boundary so the caller can continue.
func (mr *ModuleReader) failSection(sectionID byte, err error) Event {
	mr.mode = modeSections
	mr.remaining = 0
	if skipErr := mr.skipToSectionEnd(); skipErr != nil {
		mr.done = true
	}
	return Event{Kind: EventError, SectionID: sectionID, Err: mr.r.WrapError(fmt.Sprintf("section %d", sectionID), err)}
}

func (mr *ModuleReader) skipToSectionEnd() error {
	if mr.r.Position() > mr.sectionEnd {
		return fmt.Errorf("wasm: read past section end")
	}
	return mr.r.SkipBytes(mr.sectionEnd - mr.r.Position())
}

func (mr *ModuleReader) readTypeSection() error {
	count, err := mr.r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		form, err := mr.r.ReadByte()
		if err != nil {
			return err
		}
		if form != FuncTypeByte {
			return fmt.Errorf("expected functype (0x60), got 0x%02x", form)
		}
		ft, err := readFuncType(mr.r)
		if err != nil {
			return err
		}
		mr.res.Types = append(mr.res.Types, ft)
	}
	return nil
}

func (mr *ModuleReader) readImportSection() error {
	count, err := mr.r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if _, err := mr.r.ReadName(); err != nil {
			return err
		}
		if _, err := mr.r.ReadName(); err != nil {
			return err
		}
		kind, err := mr.r.ReadByte()
		if err != nil {
			return err
		}
		switch kind {
		case KindFunc:
			if _, err := mr.r.ReadU32(); err != nil {
				return err
			}
			mr.res.ImportedFuncs++
		case KindTable:
			if _, err := readTableType(mr.r); err != nil {
				return err
			}
		case KindMemory:
			if _, err := readMemoryType(mr.r); err != nil {
				return err
			}
		case KindGlobal:
			gt, err := readGlobalType(mr.r)
			if err != nil {
				return err
			}
			mr.res.Globals = append(mr.res.Globals, gt)
		default:
			return fmt.Errorf("unknown import kind: %d", kind)
		}
	}
	return nil
}

func (mr *ModuleReader) readGlobalSection() error {
	count, err := mr.r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		gt, err := readGlobalType(mr.r)
		if err != nil {
			return err
		}
		if _, err := readInitExpr(mr.r); err != nil {
			return err
		}
		mr.res.Globals = append(mr.res.Globals, gt)
	}
	return nil
}
