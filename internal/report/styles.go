// Package report renders statistics for the terminal and exports them to
// JSON or YAML files.
package report

import "github.com/charmbracelet/lipgloss"

var (
	ColorWhite  = lipgloss.Color("15")
	ColorBlue   = lipgloss.Color("39")
	ColorGray   = lipgloss.Color("244")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorGreen  = lipgloss.Color("42")

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorCell   = cellStyle.Foreground(ColorRed)

	severityStyles = map[string]lipgloss.Style{
		"WARN":  lipgloss.NewStyle().Foreground(ColorOrange),
		"ERROR": lipgloss.NewStyle().Foreground(ColorRed),
	}
)
