// Package tui provides an interactive terminal explorer for partition trees.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ntree/internal/partition"
	"github.com/san-kum/ntree/internal/render"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))

	pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// Model browses the traversal of a tree. The selected node's subtree is
// previewed on a Braille canvas.
type Model struct {
	tree   *partition.Tree
	nodes  []*partition.Node
	parent []int
	opts   render.Options

	cursor, offset int
	width, height  int
}

func New(tree *partition.Tree, opts render.Options) Model {
	nodes := tree.Traverse()
	index := make(map[*partition.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}
	parent := make([]int, len(nodes))
	parent[0] = -1
	for i, n := range nodes {
		for _, c := range n.Children() {
			parent[index[c]] = i
		}
	}

	return Model{
		tree:   tree,
		nodes:  nodes,
		parent: parent,
		opts:   opts,
		width:  100,
		height: 30,
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Selected returns the node under the cursor.
func (m Model) Selected() *partition.Node { return m.nodes[m.cursor] }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= m.listHeight()
	case "pgdown":
		m.cursor += m.listHeight()
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.nodes) - 1
	case "p", "backspace":
		if p := m.parent[m.cursor]; p >= 0 {
			m.cursor = p
		}
	case "n":
		m.cursor = m.nextOccupied()
	}
	m.cursor = max(0, min(m.cursor, len(m.nodes)-1))
	m.scroll()
	return m, nil
}

// nextOccupied finds the next leaf after the cursor that holds objects,
// wrapping around.
func (m Model) nextOccupied() int {
	for step := 1; step <= len(m.nodes); step++ {
		i := (m.cursor + step) % len(m.nodes)
		if n := m.nodes[i]; n.IsLeaf() && n.Len() > 0 {
			return i
		}
	}
	return m.cursor
}

func (m Model) listHeight() int {
	return max(1, m.height-6)
}

func (m *Model) scroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m Model) View() string {
	header := cyan.Bold(true).Render("ntree explorer") + "  " +
		dim.Render(fmt.Sprintf("%d objects · %d nodes · %d-ary · depth %d",
			m.tree.Count(), m.tree.Len(), m.tree.Arity(), m.tree.Depth()))

	listWidth := max(30, m.width/2-4)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		pane.Width(listWidth).Render(m.listView()),
		pane.Render(m.detailView()),
	)

	help := dim.Render("↑/↓ move · p parent · n next occupied leaf · g/G ends · q quit")
	return header + "\n" + body + "\n" + help
}

func (m Model) listView() string {
	var b strings.Builder
	end := min(len(m.nodes), m.offset+m.listHeight())
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		line := fmt.Sprintf("%s%s %d", strings.Repeat("  ", n.Depth()), kindGlyph(n), n.Len())
		if i == m.cursor {
			line = magenta.Bold(true).Render("› " + line)
		} else {
			line = white.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func kindGlyph(n *partition.Node) string {
	switch n.Kind() {
	case partition.KindBranch:
		return "▸"
	case partition.KindCoincident:
		return yellow.Render("◎")
	case partition.KindCapped:
		return yellow.Render("▪")
	default:
		if n.Len() == 0 {
			return dim.Render("·")
		}
		return green.Render("●")
	}
}

func (m Model) detailView() string {
	n := m.Selected()
	lo, hi := n.Bounds()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", cyan.Render("node"), white.Render(fmt.Sprintf("%d / %d", m.cursor+1, len(m.nodes))))
	fmt.Fprintf(&b, "%s %s\n", dim.Render("kind   "), n.Kind())
	fmt.Fprintf(&b, "%s %d\n", dim.Render("depth  "), n.Depth())
	fmt.Fprintf(&b, "%s %.4g\n", dim.Render("width  "), n.Width())
	fmt.Fprintf(&b, "%s %s\n", dim.Render("center "), formatVec(n.Center()))
	fmt.Fprintf(&b, "%s %s .. %s\n", dim.Render("bounds "), formatVec(lo), formatVec(hi))
	fmt.Fprintf(&b, "%s %d\n", dim.Render("objects"), n.Len())
	if c := n.Centroid(); c != nil {
		fmt.Fprintf(&b, "%s %s (max r %.3g)\n", dim.Render("centroid"), formatVec(c), n.MaxRadius())
	}

	if cmds, err := render.SubtreeCommands(m.tree, n, m.opts); err == nil && len(cmds) > 0 {
		w := max(10, m.width/2-8)
		h := max(4, m.height-16)
		b.WriteString("\n" + green.Render(render.Rasterize(cmds, w, h).String()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatVec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.3g", x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Run starts the explorer on the alternate screen.
func Run(tree *partition.Tree, opts render.Options) error {
	_, err := tea.NewProgram(New(tree, opts), tea.WithAltScreen()).Run()
	return err
}
