package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdoptIdentityHappensOnce(t *testing.T) {
	sess := &Session{}

	sess.AdoptIdentity("chat-1", "First title")
	assert.Equal(t, "chat-1", sess.ID)
	assert.Equal(t, "First title", sess.Title)

	// A later call must not rewrite the identity.
	sess.AdoptIdentity("chat-2", "Other title")
	assert.Equal(t, "chat-1", sess.ID)
	assert.Equal(t, "First title", sess.Title)

	// Empty ids never install.
	empty := &Session{}
	empty.AdoptIdentity("", "title")
	assert.Empty(t, empty.ID)
	assert.Empty(t, empty.Title)
}

func TestDropThinking(t *testing.T) {
	sess := &Session{}
	sess.Append(NewUserMessage("rank things"))
	sess.Append(ThinkingMessage())
	sess.Append(NewSystemMessage("working"))

	sess.DropThinking()

	assert.Len(t, sess.Messages, 2)
	for _, m := range sess.Messages {
		assert.False(t, m.Thinking)
	}
}

func TestLastTable(t *testing.T) {
	sess := &Session{}
	assert.Nil(t, sess.LastTable())
	assert.False(t, sess.HasTable())

	sess.Append(NewUserMessage("q"))
	sess.Append(NewTableMessage("", []string{"A"}, []map[string]any{{"A": 1}}))
	sess.Append(NewTableMessage("", []string{"B"}, []map[string]any{{"B": 2}}))

	assert.True(t, sess.HasTable())
	assert.Equal(t, []string{"B"}, sess.LastTable().Columns)
}
