package viz

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/born-ml/tensorjo/internal/autodiff"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	cellStyle = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

	kindColors = map[string]lipgloss.TerminalColor{
		PrimitiveColor: lipgloss.AdaptiveColor{Light: "0", Dark: "15"},
		FunctorColor:   lipgloss.Color("5"),
		MonoidColor:    lipgloss.AdaptiveColor{Light: "9", Dark: "9"},
		MasterColor:    lipgloss.Color("10"),
	}
)

// Render returns a terminal table listing master and everything it depends
// on, inputs first, with each row colored by node kind.
func Render(master *autodiff.Node) (string, error) {
	entries, err := trace(master)
	if err != nil {
		return "", err
	}

	colors := make([]string, len(entries))
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("name", "kind", "shape", "output")
	for i, e := range entries {
		colors[i] = Color(e.node, master)
		table.Row(e.node.Name(), e.node.Kind().String(), e.node.Shape().String(), e.value)
	}
	table.StyleFunc(func(row, col int) lipgloss.Style {
		if row < 0 || row >= len(colors) {
			return headerRowStyle
		}
		s := cellStyle.Foreground(kindColors[colors[row]])
		if colors[row] == MasterColor {
			s = s.Bold(true)
		}
		return s
	})
	return table.String(), nil
}
