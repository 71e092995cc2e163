package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aaronmunsters/wasm-merge/merge"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	moduleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type previewState int

const (
	statePending previewState = iota
	stateDone
	stateWritten
)

type mergeDoneMsg struct {
	report merge.Report
	out    []byte
	err    error
}

type interactiveModel struct {
	inputs []merge.Named
	opts   merge.Options
	out    string
	report merge.Report
	merged []byte
	err    error
	state  previewState
}

func newInteractiveModel(inputs []merge.Named, opts merge.Options, out string) *interactiveModel {
	return &interactiveModel{inputs: inputs, opts: opts, out: out}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.runMerge
}

func (m *interactiveModel) runMerge() tea.Msg {
	report, out, err := merge.Analyze(m.inputs, m.opts)
	return mergeDoneMsg{report: report, out: out, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", "w":
			if m.state == stateDone && m.err == nil {
				if werr := os.WriteFile(m.out, m.merged, 0644); werr != nil {
					m.err = werr
				} else {
					m.state = stateWritten
				}
			}
		}
	case mergeDoneMsg:
		m.report = msg.report
		m.merged = msg.out
		m.err = msg.err
		m.state = stateDone
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmmerge preview"))
	b.WriteString("\n\n")

	b.WriteString("Inputs:\n")
	for _, in := range m.inputs {
		b.WriteString(fmt.Sprintf("  %s %s\n", moduleStyle.Render(in.Name), sizeStyle.Render(fmt.Sprintf("(%d bytes)", len(in.Bytes)))))
	}
	b.WriteString("\n")

	switch m.state {
	case statePending:
		b.WriteString("Merging...\n")
	case stateDone:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("q quit"))
		} else {
			b.WriteString(renderReport(m.report))
			b.WriteString(resultStyle.Render(fmt.Sprintf("Merged output: %d bytes", len(m.merged))))
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render(fmt.Sprintf("enter/w write to %s • q quit without writing", m.out)))
		}
	case stateWritten:
		b.WriteString(resultStyle.Render(fmt.Sprintf("Wrote %s (%d bytes)", m.out, len(m.merged))))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
	}

	return b.String()
}

// renderReport shows the dependency graph outcome: which imports never
// resolved internally, which exports survive (and under what emitted
// name, if the clash policy renamed them), so the operator can see the
// merge decision before it's written to disk.
func renderReport(r merge.Report) string {
	var b strings.Builder

	b.WriteString(moduleStyle.Render("Surviving imports:"))
	b.WriteString("\n")
	if len(r.SurvivingImports) == 0 {
		b.WriteString(helpStyle.Render("  none — fully self-contained\n"))
	}
	for _, imp := range r.SurvivingImports {
		b.WriteString(fmt.Sprintf("  %s  %s.%s\n", imp.Kind, imp.Module, imp.Name))
	}
	b.WriteString("\n")

	b.WriteString(moduleStyle.Render("Surviving exports:"))
	b.WriteString("\n")
	if len(r.SurvivingExports) == 0 {
		b.WriteString(helpStyle.Render("  none\n"))
	}
	for _, exp := range r.SurvivingExports {
		origin := fmt.Sprintf("%s.%s", exp.Module, exp.Name)
		line := fmt.Sprintf("  %s  %s %s", exp.Kind, origin, helpStyle.Render("<- "+exp.Source))
		if exp.EmittedName != exp.Name {
			line += fmt.Sprintf(" %s %s", helpStyle.Render("renamed to"), sizeStyle.Render(exp.EmittedName))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

func runInteractive(inputs []merge.Named, opts merge.Options, out string) error {
	p := tea.NewProgram(newInteractiveModel(inputs, opts, out))
	_, err := p.Run()
	return err
}
