package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/unbound-force/typesafe/internal/report"
	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	NextFile key.Binding
	PrevFile key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextFile, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.NextFile, k.PrevFile},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	NextFile: key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next file")),
	PrevFile: key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "previous file")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tuiHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	tuiBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	markerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	internalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	passStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
)

// maxDetail is the widest detail shown in the mismatch table.
const maxDetail = 60

// resultsModel is the Bubble Tea model for browsing run results.
type resultsModel struct {
	results  []*taxonomy.FileResult
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string

	// offsets holds the content line at which each file starts.
	offsets []int
}

func newResultsModel(results []*taxonomy.FileResult) resultsModel {
	content, offsets := renderResultsContent(results)
	return resultsModel{
		results: results,
		help:    help.New(),
		keys:    defaultKeyMap,
		content: content,
		offsets: offsets,
	}
}

// renderResultsContent renders every result and records the line
// each file section starts on.
func renderResultsContent(results []*taxonomy.FileResult) (string, []int) {
	var sb strings.Builder
	var offsets []int
	line := 0
	write := func(s string) {
		sb.WriteString(s)
		line += strings.Count(s, "\n")
	}

	failed, mismatches := 0, 0
	for _, r := range results {
		if !r.Passed() {
			failed++
		}
		mismatches += len(r.Mismatches)
	}

	write(titleStyle.Render(
		fmt.Sprintf("Typesafe: %d file(s), %d failed, %d mismatch(es)",
			len(results), failed, mismatches)))
	write("\n\n")

	for _, r := range results {
		offsets = append(offsets, line)

		if r.Passed() {
			write(passStyle.Render("PASS") + " " + tuiHeaderStyle.Render(r.Name))
			write("\n\n")
			continue
		}
		write(markerStyle.Render("FAIL") + " " + tuiHeaderStyle.Render(r.Name))
		write("\n")
		if r.Summary.Internal > 0 {
			write(internalStyle.Render("    internal error: the checker output could not be reconciled"))
			write("\n")
		}

		write(mismatchTable(r.Mismatches))
		write("\n")

		for _, l := range report.RenderLines(r.Mismatches, r.Content) {
			if report.IsMarker(l) {
				write(markerStyle.Render(l))
			} else {
				write(statusStyle.Render(l))
			}
			write("\n")
		}
		write("\n")
	}

	return sb.String(), offsets
}

// mismatchTable lists a file's mismatches with details truncated
// to maxDetail cells.
func mismatchTable(ms []taxonomy.Mismatch) string {
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		detail := ansi.Truncate(m.Detail, maxDetail, "...")
		line := "-"
		if m.Line > 0 {
			line = strconv.Itoa(m.Line)
		}
		rows = append(rows, []string{line, string(m.Kind), detail})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tuiBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tuiHeaderStyle
			}
			if col == 1 && row >= 0 && row < len(ms) {
				if ms[row].Internal() {
					return internalStyle
				}
				return markerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers("LINE", "KIND", "DETAIL").
		Rows(rows...)

	return t.String()
}

// nextOffset returns the start of the first file section below
// content line y, or y when there is none.
func (m resultsModel) nextOffset(y int) int {
	for _, off := range m.offsets {
		if off > y {
			return off
		}
	}
	return y
}

// prevOffset returns the start of the last file section above
// content line y, or 0 when there is none.
func (m resultsModel) prevOffset(y int) int {
	prev := 0
	for _, off := range m.offsets {
		if off >= y {
			break
		}
		prev = off
	}
	return prev
}

func (m resultsModel) Init() tea.Cmd {
	return nil
}

func (m resultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.NextFile):
			if m.ready {
				m.viewport.SetYOffset(m.nextOffset(m.viewport.YOffset))
			}
			return m, nil
		case key.Matches(msg, m.keys.PrevFile):
			if m.ready {
				m.viewport.SetYOffset(m.prevOffset(m.viewport.YOffset))
			}
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m resultsModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractive launches the Bubble Tea TUI for browsing run
// results.
func runInteractive(results []*taxonomy.FileResult) error {
	model := newResultsModel(results)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
