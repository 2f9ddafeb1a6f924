package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		table bool
	}{
		{
			name:  "valid table payload",
			text:  `{"columns":["Name","Score"],"rows":[{"Name":"A","Score":1}]}`,
			table: true,
		},
		{
			name:  "plain prose",
			text:  "The top incubator is Station F.",
			table: false,
		},
		{
			name:  "malformed json degrades to plain",
			text:  `{"columns":["Name"],"rows":[{`,
			table: false,
		},
		{
			name:  "empty columns degrades to plain",
			text:  `{"columns":[],"rows":[{"Name":"A"}]}`,
			table: false,
		},
		{
			name:  "empty rows degrades to plain",
			text:  `{"columns":["Name"],"rows":[]}`,
			table: false,
		},
		{
			name:  "json without table shape degrades to plain",
			text:  `{"summary":"done"}`,
			table: false,
		},
		{
			name:  "empty text",
			text:  "",
			table: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, ok := ClassifyTable(tt.text)
			assert.Equal(t, tt.table, ok)
			if tt.table {
				require.NotNil(t, table)
				assert.NotEmpty(t, table.Columns)
				assert.NotEmpty(t, table.Rows)
			}
		})
	}
}

func TestNewAssistantMessageClassification(t *testing.T) {
	plain := NewAssistantMessage("hello")
	assert.Equal(t, RenderPlain, plain.Kind)
	assert.Nil(t, plain.Table)

	tabular := NewAssistantMessage(`{"columns":["C"],"rows":[{"C":"v"}]}`)
	assert.Equal(t, RenderTable, tabular.Kind)
	require.NotNil(t, tabular.Table)
	assert.Equal(t, []string{"C"}, tabular.Table.Columns)
}
