package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/covtree/internal/covtree"
	"github.com/unbound-force/covtree/internal/engine"
	"github.com/unbound-force/covtree/internal/model"
	"github.com/unbound-force/covtree/internal/tier"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dirStyle = lipgloss.NewStyle().Bold(true)

	tierHighStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	tierMediumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	tierLowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tierUnratedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func tierStyle(t tier.Tier) lipgloss.Style {
	switch t {
	case tier.High:
		return tierHighStyle
	case tier.Medium:
		return tierMediumStyle
	case tier.Low:
		return tierLowStyle
	default:
		return tierUnratedStyle
	}
}

// treeModel is the Bubble Tea model for browsing the coverage tree.
type treeModel struct {
	rpt      *engine.Report
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string
}

func newTreeModel(rpt *engine.Report, cuts tier.Cuts) treeModel {
	return treeModel{
		rpt:     rpt,
		help:    help.New(),
		keys:    defaultKeyMap,
		content: renderTreeContent(rpt, cuts),
	}
}

func renderTreeContent(rpt *engine.Report, cuts tier.Cuts) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf(
		"Coverage: %d file(s), lines %s",
		rpt.Root.FileCount(),
		percent(rpt.Totals.LinesCovered, rpt.Totals.LinesTotal))))
	sb.WriteString("\n\n")

	var walk func(n *covtree.Node, depth int)
	walk = func(n *covtree.Node, depth int) {
		pad := strings.Repeat("  ", depth)
		sb.WriteString(pad)
		sb.WriteString(dirStyle.Render(n.Name + "/"))
		sb.WriteString("  ")
		sb.WriteString(renderSummary(n.Summary, cuts))
		sb.WriteString("\n")

		for _, c := range n.Children {
			if c.Dir != nil {
				walk(c.Dir, depth+1)
				continue
			}
			sb.WriteString(strings.Repeat("  ", depth+1))
			sb.WriteString(c.Name())
			sb.WriteString("  ")
			sb.WriteString(renderSummary(c.File.Summary, cuts))
			sb.WriteString("\n")
		}
	}
	walk(rpt.Root, 0)

	if len(rpt.Diagnostics) > 0 {
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(
			fmt.Sprintf("%d diagnostic(s):", len(rpt.Diagnostics))))
		sb.WriteString("\n")
		for _, d := range rpt.Diagnostics {
			sb.WriteString(statusStyle.Render("  " + d.String()))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func renderSummary(s model.Summary, cuts tier.Cuts) string {
	t := tier.Classify(s.LinesCovered, s.LinesTotal, cuts)
	return tierStyle(t).Render(fmt.Sprintf(
		"lines %s  regions %s  funcs %s",
		percent(s.LinesCovered, s.LinesTotal),
		percent(s.RegionsCovered, s.RegionsTotal),
		percent(s.FunctionsCovered, s.FunctionsTotal)))
}

func percent(covered, total uint64) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100.0*float64(covered)/float64(total))
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		footerHeight := lipgloss.Height(m.help.View(m.keys)) + 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m treeModel) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.viewport.View() + "\n" + m.help.View(m.keys)
}

// runInteractive launches the TUI tree browser.
func runInteractive(rpt *engine.Report, cuts tier.Cuts) error {
	p := tea.NewProgram(newTreeModel(rpt, cuts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
