package mapper

import (
	"go.uber.org/zap"
)

// Collapse inlines every resolved callee into the root's instruction bytes.
//
// Children are collapsed depth-first, then each child's bytes are spliced
// into the parent at the call site: prefix, child bytes, then the original
// suffix starting at the site. The call edge and the child reference are
// removed. A call edge with no attached child (a pruned self reference or
// back edge, or an unresolved callee) is logged and left intact.
//
// Call sites are processed highest offset first so earlier sites stay valid
// while later ones grow the byte stream.
func (m *Mapper) Collapse(root *Node) {
	log := Logger()

	calls := root.Calls()
	sites := sortedKeys(calls)
	for i := len(sites) - 1; i >= 0; i-- {
		site := sites[i]
		callee := calls[site]

		child, ok := root.Child(callee)
		if !ok {
			log.Warn("missing child at call site, keeping call edge",
				zap.Int("node", root.ID()),
				zap.Int("callee", callee),
				zap.Int("site", site))
			continue
		}

		m.Collapse(child)

		root.RemoveCall(site)
		root.SpliceIn(site, child.Instrs())
		root.RemoveChild(callee)
	}
}
