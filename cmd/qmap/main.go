package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/qubolab/wasm-qubo/mapper"
	"github.com/qubolab/wasm-qubo/qubo"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	// Color coding follows the walk diagnostics: yellow for control
	// dependencies, blue for data dependencies, magenta for calls,
	// green for simulatable operations, red for bad wasm.
	controlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	dataStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	callStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))
	opStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func main() {
	var (
		interactive = flag.Bool("i", false, "Prompt per function before expanding and lowering")
		collapse    = flag.Bool("collapse", false, "Inline resolved callees after expansion")
		lower       = flag.Bool("lower", false, "Lower expanded nodes to annealer expressions")
		verbose     = flag.Bool("v", false, "Verbose mapper diagnostics")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: qmap [-i] [-collapse] [-lower] [-v] <file.wasm>")
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *interactive, *collapse, *lower, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run(path string, interactive, collapse, lower, verbose bool) error {
	ctx := context.Background()

	if verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
		mapper.SetLogger(log)
		qubo.SetLogger(log)
	}

	fmt.Println(headerStyle.Render("Analyzing " + path))

	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := mapper.Validate(ctx, buf); err != nil {
		return err
	}

	m := mapper.New()
	nodes, err := m.Map(buf)
	if err != nil {
		return err
	}

	ids := sortedIDs(nodes)
	fmt.Printf("First pass found %d functions: %v\n", len(ids), ids)

	policy := mapper.Policy(mapper.ExpandAll)
	if interactive && term.IsTerminal(int(os.Stdin.Fd())) {
		policy, err = promptPolicy(ids)
		if err != nil {
			return err
		}
	}

	tree := m.Expand(policy)

	for _, id := range sortedIDs(tree) {
		printNode(tree[id])
	}

	if collapse {
		for _, id := range sortedIDs(tree) {
			m.Collapse(tree[id])
			fmt.Printf("Collapsed node %d to %d bytes\n", id, tree[id].InstrLen())
		}
	}

	if lower {
		lowerPolicy := policy
		if interactive && term.IsTerminal(int(os.Stdin.Fd())) {
			lowerPolicy, err = promptLowerPolicy(m)
			if err != nil {
				return err
			}
		}
		for _, id := range sortedIDs(tree) {
			q, err := qubo.Lower(tree[id], lowerPolicy)
			if err != nil {
				fmt.Println(errorStyle.Render(err.Error()))
				continue
			}
			fmt.Println(opStyle.Render(q.String()))
		}
	}

	return nil
}

func printNode(n *mapper.Node) {
	fmt.Printf("Node %d [%#x, %#x) %d bytes\n", n.ID(), n.Start(), n.End(), n.InstrLen())

	if branches := n.Branches(); len(branches) > 0 {
		fmt.Println(controlStyle.Render(fmt.Sprintf("  branches: %d", len(branches))))
	}
	if calls := n.Calls(); len(calls) > 0 {
		fmt.Println(callStyle.Render(fmt.Sprintf("  calls: %v", calls)))
	}
	if children := n.Children(); len(children) > 0 {
		ids := make([]int, 0, len(children))
		for id := range children {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		fmt.Println(callStyle.Render(fmt.Sprintf("  children: %v", ids)))
	}

	inputs := n.InputVariables()
	internals := n.InternalVariables()
	outputs := n.OutputVariables()
	constants := n.Constants()
	fmt.Println(dataStyle.Render(fmt.Sprintf(
		"  variables: %d in, %d internal, %d out, %d const",
		len(inputs), len(internals), len(outputs), len(constants))))

	mem := len(n.InputDataCouplings()) + len(n.OutputDataCouplings())
	globals := len(n.GlobalInputDataCouplings()) + len(n.GlobalOutputDataCouplings())
	flow := len(n.FlowControlCouplings())
	if mem+globals+flow > 0 {
		fmt.Println(dataStyle.Render(fmt.Sprintf(
			"  couplings: %d memory, %d global, %d flow", mem, globals, flow)))
	}

	if steps := n.OperationSteps(); len(steps) > 0 {
		ops := n.Operations()
		line := "  operations:"
		for _, s := range steps {
			line += " " + ops[s].String()
		}
		fmt.Println(opStyle.Render(line))
	}
}

func sortedIDs(nodes map[int]*mapper.Node) []int {
	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
