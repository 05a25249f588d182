package mapper

import (
	"sort"

	"go.uber.org/zap"
)

// Expand normalizes the walked node set into a feed-forward graph.
//
// Per function the policy allows, every inline block is lifted into a
// first-class node addressed by a fresh id and rewritten as a call edge at
// its former position, then every call edge is resolved into a child
// reference. Self references, back edges along the current expansion path,
// and duplicate edges are pruned: reference loops cannot be unrolled at
// compile time and are not simulatable.
//
// Expansion is idempotent: lifted blocks leave no block records behind, and
// already-attached children are skipped on a second pass.
func (m *Mapper) Expand(policy Policy) map[int]*Node {
	log := Logger()
	tree := m.Nodes()

	for _, id := range sortedIDs(tree) {
		if !policy.ShouldExpand(id) {
			log.Info("skipping function by policy", zap.Int("func", id))
			continue
		}
		if tree[id].expanded {
			continue
		}
		log.Info("expanding function", zap.Int("func", id))
		m.expandNode(tree[id], tree, map[int]struct{}{}, false)
	}

	// Lifted blocks joined the registry during the loop; the result is the
	// full normalized node set.
	return m.Nodes()
}

// expandNode lifts the node's inline blocks and resolves its call edges.
// path is the set of node ids on the current expansion chain; it strictly
// grows along any recursion branch, which bounds the recursion by the node
// count.
func (m *Mapper) expandNode(n *Node, tree map[int]*Node, path map[int]struct{}, asBlock bool) {
	log := Logger()
	n.expanded = true
	scope := "function"
	if asBlock {
		scope = "block"
	}

	// Lift inline blocks into first-class nodes. Highest offset first, so
	// removing a span never invalidates the offsets still to process.
	blocks := n.Blocks()
	log.Debug("found blocks", zap.Int("count", len(blocks)), zap.String("in", scope), zap.Int("node", n.ID()))
	starts := make([]int, 0, len(blocks))
	for s := range blocks {
		starts = append(starts, s)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(starts)))

	for _, relStart := range starts {
		child, ok := m.block(blocks[relStart])
		if !ok {
			log.Warn("block registry entry missing",
				zap.Int("block", blocks[relStart]),
				zap.Int("node", n.ID()))
			continue
		}

		newID := m.uniqueNodeID()
		log.Debug("breaking block out",
			zap.Int("block", newID),
			zap.String("from", scope),
			zap.Int("node", n.ID()))

		// Split the block's bytes out of this node and stand a call edge
		// in their place.
		relEnd := relStart + (child.End() - child.Start())
		n.SpliceOut(relStart, relEnd)
		n.AddCall(relStart, newID)

		child.SetID(newID)
		m.nodes[newID] = child
		m.removeBlock(blocks[relStart])

		childPath := clonePath(path)
		childPath[n.ID()] = struct{}{}
		m.expandNode(child, tree, childPath, true)

		n.AddChild(newID, child)
	}
	n.ClearBlocks()

	// Resolve call edges into children, pruning anything that would make
	// the graph cyclic.
	calls := n.Calls()
	log.Debug("found calls", zap.Int("count", len(calls)), zap.String("in", scope), zap.Int("node", n.ID()))

	for _, site := range sortedKeys(calls) {
		callee := calls[site]

		if callee == n.ID() {
			log.Info("skipping self referencing call", zap.String("in", scope), zap.Int("node", n.ID()))
			continue
		}
		if _, onPath := path[callee]; onPath {
			log.Info("skipping reference loop", zap.String("in", scope), zap.Int("node", n.ID()), zap.Int("callee", callee))
			continue
		}
		if n.HasChild(callee) {
			log.Debug("skipping already registered call",
				zap.Int("callee", callee),
				zap.String("from", scope),
				zap.Int("node", n.ID()))
			continue
		}

		target, ok := tree[callee]
		if !ok {
			target, ok = m.nodes[callee]
		}
		if !ok {
			log.Warn("call target has no node, keeping edge unresolved",
				zap.Int("callee", callee),
				zap.Int("node", n.ID()))
			continue
		}

		log.Debug("registering call",
			zap.Int("callee", callee),
			zap.String("from", scope),
			zap.Int("node", n.ID()))

		if !target.expanded {
			childPath := clonePath(path)
			childPath[n.ID()] = struct{}{}
			m.expandNode(target, tree, childPath, false)
		}
		n.AddChild(callee, target)
	}
}

func clonePath(path map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(path)+1)
	for k := range path {
		out[k] = struct{}{}
	}
	return out
}
