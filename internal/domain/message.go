package domain

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type RenderKind string

const (
	RenderPlain RenderKind = "plain"
	RenderTable RenderKind = "table"
)

// Message is one entry of a conversation timeline. Messages are appended in
// arrival order and never mutated afterwards.
type Message struct {
	Role Role
	Text string
	Kind RenderKind

	// Table is set only when Kind == RenderTable.
	Table *TableData

	// Thinking marks the transient placeholder shown while a turn is in
	// flight. It is dropped before any outcome is committed.
	Thinking bool
}

// TableData is a tabular payload: ordered columns plus row mappings.
type TableData struct {
	Columns []string
	Rows    []map[string]any
}

// NewUserMessage returns a plain user message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text, Kind: RenderPlain}
}

// NewSystemMessage returns a plain system status message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Text: text, Kind: RenderPlain}
}

// NewAssistantMessage classifies text and returns a plain or table message.
func NewAssistantMessage(text string) Message {
	if table, ok := ClassifyTable(text); ok {
		return Message{Role: RoleAssistant, Text: text, Kind: RenderTable, Table: table}
	}
	return Message{Role: RoleAssistant, Text: text, Kind: RenderPlain}
}

// NewTableMessage builds an assistant table message from explicit columns and
// rows, as delivered next to the narrative text of a reply.
func NewTableMessage(text string, columns []string, rows []map[string]any) Message {
	return Message{
		Role: RoleAssistant,
		Text: text,
		Kind: RenderTable,
		Table: &TableData{
			Columns: columns,
			Rows:    rows,
		},
	}
}

// ThinkingMessage returns the in-flight placeholder.
func ThinkingMessage() Message {
	return Message{Role: RoleAssistant, Text: "Thinking…", Kind: RenderPlain, Thinking: true}
}

// ClassifyTable decides whether text is a structured tabular payload. It
// returns the decoded table only when the text is valid JSON exposing
// non-empty columns and rows; anything malformed or partial stays plain.
func ClassifyTable(text string) (*TableData, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var payload struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, false
	}
	if len(payload.Columns) == 0 || len(payload.Rows) == 0 {
		return nil, false
	}

	return &TableData{Columns: payload.Columns, Rows: payload.Rows}, true
}
