package domain

// Session is one conversation against the ranking pipeline. ID stays empty
// until the backend assigns a chat id on the first resolved turn; once set it
// never changes.
type Session struct {
	ID       string
	Title    string
	Messages []Message

	// Artifacts of the latest crawl. Fully replaced on every crawl; a new
	// query may target an unrelated dataset, so nothing is merged.
	Artifacts *CrawlArtifacts

	// Pending is set while the backend waits for the user to pick a
	// disambiguating metric. Any new turn clears it.
	Pending *ClarificationRequest
}

// CrawlArtifacts is the structured output of one /crawl call, consumed as
// input to the chat call of the same turn.
type CrawlArtifacts struct {
	KnowledgeIndex map[string]any
	AllowedMetrics []string
	BlockedMetrics []string
	DatasetPreview []map[string]any
	LowTrust       bool
}

// ClarificationRequest holds a backend-requested disambiguation step. The
// option set comes from the crawl artifacts of the turn that raised it, not
// from the reasoning layer.
type ClarificationRequest struct {
	OriginalQuery string
	Prompt        string
	Options       []string
}

func (s *Session) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// AdoptIdentity installs the backend-assigned chat id and title. The id
// transition happens at most once; later calls are no-ops.
func (s *Session) AdoptIdentity(id, title string) {
	if s.ID != "" || id == "" {
		return
	}
	s.ID = id
	if title != "" {
		s.Title = title
	}
}

// DropThinking removes the in-flight placeholder, if present.
func (s *Session) DropThinking() {
	kept := s.Messages[:0]
	for _, m := range s.Messages {
		if !m.Thinking {
			kept = append(kept, m)
		}
	}
	s.Messages = kept
}

// HasTable reports whether any message already renders as a table.
func (s *Session) HasTable() bool {
	for _, m := range s.Messages {
		if m.Kind == RenderTable {
			return true
		}
	}
	return false
}

// LastTable returns the most recent table payload, or nil.
func (s *Session) LastTable() *TableData {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Kind == RenderTable && s.Messages[i].Table != nil {
			return s.Messages[i].Table
		}
	}
	return nil
}
