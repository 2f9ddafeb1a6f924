package service

import (
	"context"
	"testing"

	"github.com/set-night/rankbot/internal/domain"
	"github.com/set-night/rankbot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveCreatesOnce(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore())

	first := svc.Active(1)
	second := svc.Active(1)
	other := svc.Active(2)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestResetStartsFresh(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore())

	sess := svc.Active(1)
	sess.AdoptIdentity("chat-1", "title")
	sess.Append(domain.NewUserMessage("q"))

	fresh := svc.Reset(1)
	assert.Empty(t, fresh.ID)
	assert.Empty(t, fresh.Messages)
	assert.Same(t, fresh, svc.Active(1))
}

func TestTryBeginLock(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore())

	require.True(t, svc.TryBegin(1))
	assert.False(t, svc.TryBegin(1), "second turn must be rejected while one is in flight")
	assert.True(t, svc.TryBegin(2), "other chats are unaffected")

	svc.End(1)
	assert.True(t, svc.TryBegin(1))
}

func TestArchiveAndReopen(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(repository.NewMemoryStore())

	sess := svc.Active(1)
	sess.AdoptIdentity("chat-1", "incubators")
	sess.Append(domain.NewUserMessage("rank incubators"))
	sess.Append(domain.NewAssistantMessage("Station F leads."))
	svc.Archive(ctx, 1, sess)

	archiveID := svc.ArchiveID(1)
	require.NotZero(t, archiveID)

	// A second archive of the same session updates in place.
	sess.Append(domain.NewUserMessage("and in Germany?"))
	svc.Archive(ctx, 1, sess)
	assert.Equal(t, archiveID, svc.ArchiveID(1))

	count, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Start something new, then reopen the archived conversation.
	svc.Reset(1)
	reopened, err := svc.Open(ctx, 1, archiveID)
	require.NoError(t, err)

	assert.Equal(t, "chat-1", reopened.ID)
	assert.Equal(t, "incubators", reopened.Title)
	assert.Len(t, reopened.Messages, 3)
	assert.Same(t, reopened, svc.Active(1))
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(repository.NewMemoryStore())

	first := svc.Active(1)
	first.Append(domain.NewUserMessage("first query"))
	svc.Archive(ctx, 1, first)

	second := svc.Reset(1)
	second.Append(domain.NewUserMessage("second query"))
	svc.Archive(ctx, 1, second)

	records, err := svc.List(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second query", records[0].Snippet, "newest first")

	require.NoError(t, svc.Delete(ctx, 1, records[1].ID))

	count, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Deleting the live session's archive resets the live session too.
	require.NoError(t, svc.Delete(ctx, 1, records[0].ID))
	assert.Empty(t, svc.Active(1).Messages)
	assert.Zero(t, svc.ArchiveID(1))
}
