package client

import "github.com/set-night/rankbot/internal/domain"

type crawlRequest struct {
	Query string `json:"query"`
}

// crawlResponse mirrors POST /crawl. knowledge_index and low_trust_present
// are required; the rest defaults to empty when absent.
type crawlResponse struct {
	KnowledgeIndex  map[string]any   `json:"knowledge_index"`
	AllowedMetrics  []string         `json:"allowed_metrics"`
	BlockedMetrics  []string         `json:"blocked_metrics"`
	DatasetPreview  []map[string]any `json:"dataset_preview"`
	LowTrustPresent *bool            `json:"low_trust_present"`
}

type chatWebRequest struct {
	UserQuery       string           `json:"user_query"`
	KnowledgeIndex  map[string]any   `json:"knowledge_index"`
	AllowedMetrics  []string         `json:"allowed_metrics"`
	BlockedMetrics  []string         `json:"blocked_metrics"`
	LowTrustPresent bool             `json:"low_trust_present"`
	DatasetPreview  []map[string]any `json:"dataset_preview"`
}

type chatWebResponse struct {
	Mode     string `json:"mode"`
	Response string `json:"response"`
}

type startRequest struct {
	Message string `json:"message"`
}

type startResponse struct {
	OK       bool          `json:"ok"`
	ChatID   string        `json:"chat_id"`
	Title    string        `json:"title"`
	Bot      string        `json:"bot"`
	Messages []wireMessage `json:"messages"`
	Error    string        `json:"error"`
}

type replyRequest struct {
	Message string `json:"message"`
}

type replyResponse struct {
	OK       bool             `json:"ok"`
	BotText  string           `json:"bot_text"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	Messages []wireMessage    `json:"messages"`
	Error    string           `json:"error"`
}

type wireMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// toHistory converts a backend message list into domain messages, classifying
// each text defensively. A nil wire list stays nil, meaning "no authoritative
// history in this response".
func toHistory(msgs []wireMessage) []domain.Message {
	if msgs == nil {
		return nil
	}
	history := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		role := domain.Role(m.Role)
		switch role {
		case domain.RoleUser, domain.RoleAssistant, domain.RoleSystem:
		default:
			role = domain.RoleAssistant
		}
		msg := domain.NewAssistantMessage(m.Text)
		msg.Role = role
		history = append(history, msg)
	}
	return history
}
