// Package tui provides an interactive terminal inspector for electrode
// grids: arrow keys move between cells, space toggles activation, and
// changes can be written back to the layout catalog.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/openphosphene/prosthesim/internal/catalog"
	"github.com/openphosphene/prosthesim/internal/implant"
	"github.com/openphosphene/prosthesim/internal/units"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type state int

const (
	stateBrowse state = iota
	stateHelp
)

type model struct {
	state state

	name string
	grid *implant.ElectrodeGrid
	rows int
	cols int

	row int
	col int

	unitIdx int

	// dirty tracks electrodes whose activation changed since the last save.
	dirty map[string]bool

	cat      *catalog.Catalog
	layoutID string

	status string

	width  int
	height int
}

// NewInspector builds an inspector for g. When cat and layoutID are set,
// the "s" key persists activation changes back to the catalog.
func NewInspector(name string, g *implant.ElectrodeGrid, cat *catalog.Catalog, layoutID string) *model {
	rows, cols := g.Shape()
	return &model{
		state:    stateBrowse,
		name:     name,
		grid:     g,
		rows:     rows,
		cols:     cols,
		dirty:    make(map[string]bool),
		cat:      cat,
		layoutID: layoutID,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateBrowse:
		return m.browseKey(msg)
	case stateHelp:
		m.state = stateBrowse
		return m, nil
	}
	return m, nil
}

func (m model) browseKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < m.rows-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < m.cols-1 {
			m.col++
		}
	case " ", "enter":
		if e := m.selected(); e != nil {
			e.SetActivated(!e.Activated())
			m.dirty[e.Name()] = true
		}
	case "u":
		m.unitIdx = (m.unitIdx + 1) % len(units.ValidUnits)
	case "s":
		m = m.save()
	case "?":
		m.state = stateHelp
	}
	return m, nil
}

func (m model) save() model {
	if m.cat == nil || m.layoutID == "" {
		m.status = "no catalog attached"
		return m
	}
	saved := 0
	for name := range m.dirty {
		e := m.grid.Get(implant.Name(name))
		if e == nil {
			continue
		}
		if err := m.cat.SetElectrodeActivation(m.layoutID, name, e.Activated()); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m
		}
		saved++
	}
	m.dirty = make(map[string]bool)
	m.status = fmt.Sprintf("saved %d change(s)", saved)
	return m
}

func (m model) selected() implant.Electrode {
	return m.grid.Get(implant.Cell{Row: m.row, Col: m.col})
}

func (m model) activeCount() int {
	n := 0
	for _, e := range m.grid.Electrodes() {
		if e.Activated() {
			n++
		}
	}
	return n
}

func (m model) View() string {
	if m.state == stateHelp {
		return m.viewHelp()
	}
	return m.viewBrowse()
}

func (m model) viewBrowse() string {
	var b strings.Builder

	header := fmt.Sprintf("%dx%d %s/%s", m.rows, m.cols, m.grid.Tiling(), m.grid.Orientation())
	b.WriteString("\n  " + cyan.Render(m.name) + "  " + dim.Render(header))
	b.WriteString(fmt.Sprintf("  %s %d/%d active\n",
		green.Render("●"), m.activeCount(), m.grid.NElectrodes()))
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 3*m.cols+6)) + "\n\n")

	for r := 0; r < m.rows; r++ {
		b.WriteString("  ")
		// Even rows of a horizontal hex grid sit half a pitch to the right.
		if m.grid.Tiling() == implant.HexTiling && m.grid.Orientation() == implant.Horizontal && r%2 == 0 {
			b.WriteString("  ")
		}
		for c := 0; c < m.cols; c++ {
			e := m.grid.Get(implant.Cell{Row: r, Col: c})
			glyph := "●"
			style := green
			if e == nil || !e.Activated() {
				glyph = "○"
				style = dim
			}
			if r == m.row && c == m.col {
				b.WriteString(white.Render("[") + style.Render(glyph) + white.Render("]"))
			} else {
				b.WriteString(" " + style.Render(glyph) + " ")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.detailLine() + "\n")

	if m.status != "" {
		b.WriteString("  " + yellow.Render(m.status) + "\n")
	}
	if len(m.dirty) > 0 {
		b.WriteString(dim.Render(fmt.Sprintf("  %d unsaved change(s)", len(m.dirty))) + "\n")
	}

	b.WriteString("\n" + dim.Render("  ↑↓←→ move  space toggle  u units  s save  ? help  q quit") + "\n")
	return b.String()
}

func (m model) detailLine() string {
	e := m.selected()
	if e == nil {
		return "  " + dim.Render("no electrode selected")
	}

	kind := "point"
	switch e := e.(type) {
	case *implant.DiskElectrode:
		kind = fmt.Sprintf("disk r=%.0f", e.Radius())
	case *implant.SquareElectrode:
		kind = fmt.Sprintf("square a=%.0f", e.Side())
	}

	unit := units.ValidUnits[m.unitIdx]
	x := units.ConvertLength(e.X(), unit)
	y := units.ConvertLength(e.Y(), unit)
	z := units.ConvertLength(e.Z(), unit)

	activation := green.Render("active")
	if !e.Activated() {
		activation = dim.Render("inactive")
	}

	return fmt.Sprintf("  %s %s  %s  %s",
		white.Render(e.Name()),
		dim.Render(kind),
		dim.Render(fmt.Sprintf("x=%.2f y=%.2f z=%.2f %s", x, y, z, unit)),
		activation)
}

func (m model) viewHelp() string {
	var b strings.Builder

	b.WriteString("\n  " + cyan.Render("inspector keys") + "\n")
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 30)) + "\n\n")

	keys := [][2]string{
		{"↑↓←→ / hjkl", "move between electrodes"},
		{"space / enter", "toggle activation"},
		{"u", "cycle display units"},
		{"s", "save activation changes to the catalog"},
		{"?", "toggle this help"},
		{"q / esc", "quit"},
	}
	for _, k := range keys {
		b.WriteString("  " + white.Render(fmt.Sprintf("%-14s", k[0])) + dim.Render(k[1]) + "\n")
	}

	b.WriteString("\n" + dim.Render("  press any key to return") + "\n")
	return b.String()
}

// RunInspector starts the full-screen inspector and blocks until quit.
func RunInspector(name string, g *implant.ElectrodeGrid, cat *catalog.Catalog, layoutID string) error {
	p := tea.NewProgram(NewInspector(name, g, cat, layoutID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
