package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/patterns"
)

// DefaultWidth is the section width used when the caller has no terminal size.
const DefaultWidth = 60

// StatItem represents a statistics key-value pair
type StatItem struct {
	Key   string
	Value string
}

// RenderSection renders a titled, bordered block of aligned key-value rows.
func RenderSection(title string, items []StatItem, width int) string {
	titleContent := chartTitleStyle.Render(title)

	maxKeyLen := 0
	for _, item := range items {
		maxKeyLen = max(maxKeyLen, len(item.Key))
	}
	maxKeyLen += 3

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorWhite).
		Width(maxKeyLen).
		Align(lipgloss.Left)
	valueStyle := lipgloss.NewStyle().
		Foreground(ColorBlue).
		Bold(true)

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s %s",
			keyStyle.Render(item.Key+":"),
			valueStyle.Render(item.Value)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, titleContent, strings.Join(lines, "\n"))
	return sectionStyle.Width(width).Render(content)
}

// FormatKB renders a size held in kilobytes as a human readable byte count.
func FormatKB(kb float64) string {
	if kb <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(kb * 1000))
}

// TotalItems lists the corpus-wide statistics.
func TotalItems(total model.TotalStats, g model.Granularity) []StatItem {
	return []StatItem{
		{"Logs", humanize.Comma(int64(total.LogCount))},
		{"Errors", humanize.Comma(int64(total.Errors))},
		{"Users", humanize.Comma(int64(total.Users))},
		{"Sessions", humanize.Comma(int64(total.Sessions))},
		{"Total Bytes", FormatKB(total.TotalBytes)},
		{"Avg Bytes", FormatKB(total.AvgBytes)},
		{"Span (" + g.String() + ")", strconv.FormatFloat(total.TimeOffset, 'f', 2, 64)},
		{"Avg Time Between Logs", fmt.Sprintf("%.2fs", total.ATBL)},
		{"Avg Time Between Errors", fmt.Sprintf("%.2fs", total.ATBE)},
	}
}

// HistogramItems lists status code counts with their share of the corpus.
func HistogramItems(hist []model.StatusCount) []StatItem {
	items := make([]StatItem, 0, len(hist))
	for _, c := range hist {
		value := fmt.Sprintf("%d (%.1f%%)", c.Count, c.Percent)
		if style, ok := severityStyles[c.Severity]; ok {
			value = style.Render(value)
		}
		items = append(items, StatItem{
			Key:   fmt.Sprintf("%d %s", c.Code, c.Description),
			Value: value,
		})
	}
	return items
}

// PatternItems lists the request template statistics followed by the most
// frequent templates. It returns nil when nothing was mined.
func PatternItems(s patterns.Summary) []StatItem {
	if s.Unique == 0 {
		return nil
	}
	items := []StatItem{
		{"Unique Patterns Detected", fmt.Sprintf("%d", s.Unique)},
		{"Pattern Compression Ratio", fmt.Sprintf("%.1f:1", float64(s.Analyzed)/float64(s.Unique))},
		{"Logs Analyzed for Patterns", fmt.Sprintf("%d", s.Analyzed)},
	}
	for _, p := range s.Top {
		items = append(items, StatItem{
			Key:   p.Template,
			Value: fmt.Sprintf("%d (%.1f%%)", p.Count, p.Percentage),
		})
	}
	return items
}

// BucketTable renders one row per bucket.
func BucketTable(buckets []model.BucketStats) string {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Key,
			strconv.FormatFloat(b.TimeOffset, 'f', 2, 64),
			strconv.Itoa(b.LogCount),
			strconv.Itoa(b.Errors),
			strconv.Itoa(b.Users),
			strconv.Itoa(b.Sessions),
			FormatKB(b.TotalBytes),
			strconv.FormatFloat(b.ATBL, 'f', 1, 64),
			strconv.FormatFloat(b.ATBE, 'f', 1, 64),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorGray)).
		Headers("bucket", "offset", "hits", "errors", "users", "sessions", "bytes", "atbl", "atbe").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3 && rows[row][3] != "0":
				return errorCell
			default:
				return cellStyle
			}
		})
	return t.String()
}
