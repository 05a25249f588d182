package mapper

// Policy decides which functions get expanded and which nodes get lowered.
//
// The mapper core never prompts; an interactive driver implements Policy on
// top of its UI, a batch driver passes one of the constant policies.
type Policy interface {
	// ShouldExpand reports whether the function should be expanded into
	// its feed-forward tree.
	ShouldExpand(funcID int) bool

	// ShouldLower reports whether the node should be lowered to an
	// annealer expression.
	ShouldLower(nodeID int) bool
}

type constantPolicy bool

func (p constantPolicy) ShouldExpand(int) bool { return bool(p) }
func (p constantPolicy) ShouldLower(int) bool  { return bool(p) }

// ExpandAll expands and lowers everything.
var ExpandAll Policy = constantPolicy(true)

// ExpandNone expands and lowers nothing.
var ExpandNone Policy = constantPolicy(false)
