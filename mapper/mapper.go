package mapper

import (
	"sort"

	"go.uber.org/zap"

	qerrors "github.com/qubolab/wasm-qubo/errors"
	"github.com/qubolab/wasm-qubo/wasm"
)

// Mapper turns a binary module into a registry of Nodes: one per defined
// function after Map, plus one per lifted block after Expand.
//
// The mapper owns all Nodes. Parents reference children out of the same
// registry, so the node set forms a graph rather than nested copies.
// Everything is single-threaded: one walk chain is live at a time.
type Mapper struct {
	blocks      map[int]*Node // walk-time block registry, drained by Expand
	nodes       map[int]*Node // first-class nodes by id
	nextBlockID int
}

// New creates an empty Mapper.
func New() *Mapper {
	return &Mapper{
		blocks: make(map[int]*Node),
		nodes:  make(map[int]*Node),
	}
}

// Nodes returns the registered nodes keyed by id. The map is a copy; the
// nodes are shared.
func (m *Mapper) Nodes() map[int]*Node {
	out := make(map[int]*Node, len(m.nodes))
	for k, v := range m.nodes {
		out[k] = v
	}
	return out
}

// Node returns the registered node with the given id.
func (m *Mapper) Node(id int) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// addBlock registers a freshly walked block and returns its registry id.
// Block registry ids are private to the walk phase; Expand renames blocks
// into the node id space.
func (m *Mapper) addBlock(n *Node) int {
	id := m.nextBlockID
	m.nextBlockID++
	m.blocks[id] = n
	return id
}

func (m *Mapper) block(id int) (*Node, bool) {
	n, ok := m.blocks[id]
	return n, ok
}

func (m *Mapper) removeBlock(id int) {
	delete(m.blocks, id)
}

// uniqueNodeID returns an id that collides with no registered node.
func (m *Mapper) uniqueNodeID() int {
	max := -1
	for id := range m.nodes {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Map walks every defined function of the module and registers one Node per
// function, keyed by the zero-based defined-function index.
//
// The input is expected to be validated WASM (see Validate); Map itself only
// requires it to be structurally decodable. Walk-level decode failures are
// fatal; module-level oddities are logged and skipped.
func (m *Mapper) Map(buf []byte) (map[int]*Node, error) {
	log := Logger()

	mr, err := wasm.NewModuleReader(buf)
	if err != nil {
		return nil, qerrors.New(qerrors.PhaseDecode, qerrors.KindBadWasm).
			Cause(err).
			Detail("bad module header").
			Build()
	}

	var funcTypes []uint32
	nodes := make(map[int]*Node)

	for {
		ev := mr.Next()
		switch ev.Kind {
		case wasm.EventError:
			log.Warn("module parse error, continuing", zap.Error(ev.Err))
			continue

		case wasm.EventEnd:
			ids := sortedIDs(nodes)
			log.Info("first pass complete",
				zap.Int("functions", len(ids)),
				zap.Ints("ids", ids))
			return nodes, nil

		case wasm.EventFuncEntry:
			funcTypes = append(funcTypes, ev.TypeIndex)
			continue

		case wasm.EventFuncBody:
			funcID := mr.CurrentFuncIndex()
			log.Debug("walking function body",
				zap.Int("func", funcID),
				zap.Int("start", ev.Body.Start),
				zap.Int("end", ev.Body.End))

			node := NewNode()
			node.SetID(funcID)
			node.SetStart(ev.Body.Start)
			node.SetEnd(ev.Body.End)

			params := m.attachSignature(mr.Resources(), node, funcID, funcTypes)

			ops, err := mr.OperatorReader(ev.Body)
			if err != nil {
				return nil, qerrors.New(qerrors.PhaseMap, qerrors.KindBadWasm).
					Node(funcID).
					Offset(ev.Body.Start).
					Cause(err).
					Build()
			}

			w := &walker{
				m:      m,
				ops:    ops,
				buf:    buf,
				res:    mr.Resources(),
				base:   ev.Body.Start,
				params: params,
			}
			if err := w.run(node); err != nil {
				return nil, err
			}

			m.nodes[funcID] = node
			nodes[funcID] = node

		default:
			log.Debug("skipping section", zap.Uint8("section", ev.SectionID))
			continue
		}
	}
}

// attachSignature registers the function's parameters as input variables and
// its results as output variables, before the walk so that local.get can
// resolve parameter indices. Returns the parameter variable ids in order.
//
// A function whose type cannot be resolved is treated as having no
// parameters and no results.
func (m *Mapper) attachSignature(res *wasm.Resources, node *Node, funcID int, funcTypes []uint32) []int {
	if funcID >= len(funcTypes) {
		Logger().Warn("function has no type entry, assuming empty signature",
			zap.Int("func", funcID))
		return nil
	}
	sig, ok := res.FuncType(funcTypes[funcID])
	if !ok {
		Logger().Warn("unknown function type, assuming empty signature",
			zap.Int("func", funcID),
			zap.Uint32("type", funcTypes[funcID]))
		return nil
	}

	params := make([]int, 0, len(sig.Params))
	for _, ty := range sig.Params {
		params = append(params, node.AddInputVariable(ty))
	}
	for _, ty := range sig.Results {
		node.AddOutputVariable(ty)
	}
	return params
}

func sortedIDs(nodes map[int]*Node) []int {
	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
