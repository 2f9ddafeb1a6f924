package domain

type OutcomeKind string

const (
	OutcomeAnswer  OutcomeKind = "answer"
	OutcomeClarify OutcomeKind = "clarify"
	OutcomeTable   OutcomeKind = "table"
)

// ChatOutcome is the decoded result of one converse call.
type ChatOutcome struct {
	Kind OutcomeKind

	// Text is the narrative reply (Answer, Table).
	Text string

	// Prompt is the clarification question (Clarify).
	Prompt string

	// Columns and Rows carry tabular data delivered next to Text (Table).
	Columns []string
	Rows    []map[string]any

	// SessionID and Title are set when the call created the backend chat.
	SessionID string
	Title     string

	// History is the authoritative message list when the backend returned
	// one; nil means the caller keeps its optimistic list.
	History []Message
}
