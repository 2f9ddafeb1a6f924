package telegram

import (
	"fmt"
	"strings"

	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/domain"
	"github.com/shopspring/decimal"
)

// RenderTable formats tabular data as a monospace block for Telegram.
// Columns beyond the limit are dropped, rows beyond the limit are cut with a
// truncation note. Numeric cells are normalized through decimal so float
// artifacts from JSON decoding never reach the user.
func RenderTable(table *domain.TableData) string {
	columns := table.Columns
	if len(columns) > config.MaxTableColumns {
		columns = columns[:config.MaxTableColumns]
	}

	rows := table.Rows
	truncated := 0
	if len(rows) > config.MaxTableRows {
		truncated = len(rows) - config.MaxTableRows
		rows = rows[:config.MaxTableRows]
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len([]rune(col))
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for c, col := range columns {
			cell := formatCell(row[col])
			cells[r][c] = cell
			if w := len([]rune(cell)); w > widths[c] {
				widths[c] = w
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("```\n")
	for i, col := range columns {
		sb.WriteString(pad(col, widths[i]))
		if i < len(columns)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")
	for i := range columns {
		sb.WriteString(strings.Repeat("-", widths[i]))
		if i < len(columns)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")
	for _, row := range cells {
		for i, cell := range row {
			sb.WriteString(pad(cell, widths[i]))
			if i < len(row)-1 {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("```")

	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("\n_…and %d more rows. Use the download buttons for the full table._", truncated))
	}
	return sb.String()
}

func formatCell(v any) string {
	var text string
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		text = val
	case float64:
		text = decimal.NewFromFloat(val).String()
	case bool:
		text = fmt.Sprintf("%v", val)
	default:
		text = fmt.Sprintf("%v", val)
	}

	// Numeric strings get the same normalization as raw numbers.
	if d, err := decimal.NewFromString(text); err == nil {
		text = d.String()
	}

	runes := []rune(text)
	if len(runes) > config.MaxCellWidth {
		text = string(runes[:config.MaxCellWidth-1]) + "…"
	}
	return text
}

func pad(s string, width int) string {
	gap := width - len([]rune(s))
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
