package report

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

var (
	empiricalBar = lipgloss.NewStyle().Foreground(ColorBlue).Background(ColorBlue)
	modelBar     = lipgloss.NewStyle().Foreground(ColorOrange).Background(ColorOrange)
	emptyBar     = lipgloss.NewStyle().Foreground(ColorGray).Background(ColorGray)
)

// Preview draws the empirical series, and the model series when present, as
// a terminal bar chart. Only the most recent points that fit are shown.
func Preview(title string, empirical, fitted model.Series, width, height int) string {
	if width < 4 || height < 2 {
		return ""
	}

	barsPerPoint := 1
	if len(fitted) > 0 {
		barsPerPoint = 2
	}
	// Each bar is one column wide with a one column gap.
	maxPoints := max(1, width/(2*barsPerPoint))
	start := max(0, len(empirical)-maxPoints)

	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)

	if len(empirical) == 0 {
		bc.Push(barchart.BarData{
			Label:  "",
			Values: []barchart.BarValue{{Name: "EMPTY", Value: 0, Style: emptyBar}},
		})
	}
	for i := start; i < len(empirical); i++ {
		bc.Push(barchart.BarData{
			Label:  "",
			Values: []barchart.BarValue{{Name: "observed", Value: max(0, empirical[i].Y), Style: empiricalBar}},
		})
		if i < len(fitted) {
			bc.Push(barchart.BarData{
				Label:  "",
				Values: []barchart.BarValue{{Name: "model", Value: max(0, fitted[i].Y), Style: modelBar}},
			})
		}
	}

	bc.Draw()

	var legend []string
	legend = append(legend, lipgloss.NewStyle().Foreground(ColorBlue).Render("■ observed"))
	if len(fitted) > 0 {
		legend = append(legend, lipgloss.NewStyle().Foreground(ColorOrange).Render("■ model"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		chartTitleStyle.Render(title),
		bc.View(),
		strings.Join(legend, "  "),
	)
}
