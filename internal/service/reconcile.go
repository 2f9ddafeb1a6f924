package service

import "github.com/set-night/rankbot/internal/domain"

// reconcile merges a chat outcome into the session's message list.
//
// The backend is the source of truth whenever it returns a full history (it
// may have persisted a title or collapsed messages server-side); that list
// replaces the optimistic one entirely. Otherwise the optimistic list stays
// and the derived assistant messages are appended here: narrative text first,
// then the table as a separate message when both are present.
func reconcile(sess *domain.Session, out *domain.ChatOutcome) {
	if out.History != nil {
		sess.Messages = append(sess.Messages[:0], out.History...)
		// Augment with the separately delivered table only when the
		// backend's own history has no representation of it.
		if len(out.Columns) > 0 && len(out.Rows) > 0 && !sess.HasTable() {
			sess.Append(domain.NewTableMessage(out.Text, out.Columns, out.Rows))
		}
		return
	}

	switch out.Kind {
	case domain.OutcomeClarify:
		sess.Append(domain.Message{Role: domain.RoleAssistant, Text: out.Prompt, Kind: domain.RenderPlain})
	case domain.OutcomeTable:
		if out.Text != "" {
			sess.Append(domain.Message{Role: domain.RoleAssistant, Text: out.Text, Kind: domain.RenderPlain})
		}
		sess.Append(domain.NewTableMessage(out.Text, out.Columns, out.Rows))
	default:
		sess.Append(domain.NewAssistantMessage(out.Text))
	}
}
