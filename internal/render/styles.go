package render

import "github.com/charmbracelet/lipgloss"

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	caption = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)
)

// Frame wraps a rendered canvas in a titled panel for terminal output.
func Frame(heading, body, footer string) string {
	content := title.Render(heading) + "\n" + body
	if footer != "" {
		content += caption.Render(footer)
	}
	return panel.Render(content)
}
