package telegram

import (
	"strings"
	"testing"

	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	table := &domain.TableData{
		Columns: []string{"Rank", "Name", "Score"},
		Rows: []map[string]any{
			{"Rank": 1, "Name": "Station F", "Score": 92.5},
			{"Rank": 2, "Name": "Y Combinator", "Score": 91.0},
		},
	}

	out := RenderTable(table)

	assert.True(t, strings.HasPrefix(out, "```\n"))
	assert.Contains(t, out, "Station F")
	assert.Contains(t, out, "92.5")
	// Trailing zeros are normalized away.
	assert.Contains(t, out, "91")
	assert.NotContains(t, out, "91.0")
}

func TestRenderTableMissingCells(t *testing.T) {
	table := &domain.TableData{
		Columns: []string{"Name", "Score"},
		Rows:    []map[string]any{{"Name": "A"}},
	}

	out := RenderTable(table)
	assert.Contains(t, out, "-")
}

func TestRenderTableTruncatesRows(t *testing.T) {
	rows := make([]map[string]any, config.MaxTableRows+5)
	for i := range rows {
		rows[i] = map[string]any{"Name": "entry"}
	}
	table := &domain.TableData{Columns: []string{"Name"}, Rows: rows}

	out := RenderTable(table)
	assert.Contains(t, out, "5 more rows")
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil becomes dash", nil, "-"},
		{"plain string", "hello", "hello"},
		{"whole float trimmed", 91.0, "91"},
		{"numeric string normalized", "42.00", "42"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}
