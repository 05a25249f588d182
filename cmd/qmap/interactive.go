package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qubolab/wasm-qubo/mapper"
)

// setPolicy answers from pre-collected prompt results. Any id that was not
// asked about answers yes.
type setPolicy struct {
	expand map[int]bool
	lower  map[int]bool
}

func (p setPolicy) ShouldExpand(funcID int) bool {
	if v, ok := p.expand[funcID]; ok {
		return v
	}
	return true
}

func (p setPolicy) ShouldLower(nodeID int) bool {
	if v, ok := p.lower[nodeID]; ok {
		return v
	}
	return true
}

// promptPolicy asks per function whether to expand it.
func promptPolicy(funcIDs []int) (mapper.Policy, error) {
	questions := make([]promptQuestion, 0, len(funcIDs))
	for _, id := range funcIDs {
		questions = append(questions, promptQuestion{
			id:   id,
			text: fmt.Sprintf("Parallelize function %d (yes/no)?", id),
		})
	}
	answers, err := runPrompts(questions)
	if err != nil {
		return nil, err
	}
	return setPolicy{expand: answers}, nil
}

// promptLowerPolicy asks per registered node whether to lower it.
func promptLowerPolicy(m *mapper.Mapper) (mapper.Policy, error) {
	nodes := m.Nodes()
	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	questions := make([]promptQuestion, 0, len(ids))
	for _, id := range ids {
		n := nodes[id]
		questions = append(questions, promptQuestion{
			id: id,
			text: fmt.Sprintf(
				"Node %d has %d input variables, %d internal variables, and %d constants. Lower it (yes/no)?",
				id, len(n.InputVariables()), len(n.InternalVariables()), len(n.Constants())),
		})
	}
	answers, err := runPrompts(questions)
	if err != nil {
		return nil, err
	}
	return setPolicy{lower: answers}, nil
}

type promptQuestion struct {
	text string
	id   int
}

type promptModel struct {
	err       error
	input     textinput.Model
	questions []promptQuestion
	answers   map[int]bool
	idx       int
	done      bool
}

func newPromptModel(questions []promptQuestion) promptModel {
	ti := textinput.New()
	ti.Placeholder = "yes"
	ti.CharLimit = 3
	ti.Width = 6
	ti.Focus()
	return promptModel{
		input:     ti,
		questions: questions,
		answers:   make(map[int]bool, len(questions)),
	}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = fmt.Errorf("interrupted")
			m.done = true
			return m, tea.Quit

		case tea.KeyEnter:
			answer := strings.ToLower(strings.TrimSpace(m.input.Value()))
			// Anything but an explicit no counts as yes.
			m.answers[m.questions[m.idx].id] = answer != "no" && answer != "n"
			m.input.Reset()
			m.idx++
			if m.idx >= len(m.questions) {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.idx >= len(m.questions) {
		return ""
	}
	var b strings.Builder
	b.WriteString(controlStyle.Render(m.questions[m.idx].text))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d · enter to confirm · esc to abort", m.idx+1, len(m.questions))))
	return b.String()
}

func runPrompts(questions []promptQuestion) (map[int]bool, error) {
	if len(questions) == 0 {
		return map[int]bool{}, nil
	}
	final, err := tea.NewProgram(newPromptModel(questions)).Run()
	if err != nil {
		return nil, err
	}
	pm := final.(promptModel)
	if pm.err != nil {
		return nil, pm.err
	}
	return pm.answers, nil
}
