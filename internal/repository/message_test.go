package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
)

func TestMessageRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMessageRepository(openTestDB(t))
	now := storeTime(time.Now())

	first, err := repo.Create(ctx, model.CreateMessageParams{
		SenderID:    "a",
		RecipientID: "b",
		Kind:        model.KindChat,
		Body:        "hello",
	}, now)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Positive(t, first.MessageID)
	assert.Nil(t, first.ThreadID)

	second, err := repo.Create(ctx, model.CreateMessageParams{
		SenderID:    "b",
		RecipientID: "a",
		Kind:        model.KindChat,
		Body:        "hi back",
	}, now)
	require.NoError(t, err)
	assert.Greater(t, second.MessageID, first.MessageID, "ids are strictly increasing")
}

func TestMessageRepository_FindForRecipient(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMessageRepository(openTestDB(t))
	base := storeTime(time.Now())

	mustCreate := func(sender, recipient, body string, at time.Time) *model.Message {
		t.Helper()
		msg, err := repo.Create(ctx, model.CreateMessageParams{
			SenderID:    sender,
			RecipientID: recipient,
			Kind:        model.KindChat,
			Body:        body,
		}, at)
		require.NoError(t, err)
		return msg
	}

	mustCreate("a", "b", "direct to b", base)
	mustCreate("a", "c", "direct to c", base.Add(time.Second))
	mustCreate("a", model.BroadcastRecipient, "everyone", base.Add(2*time.Second))
	cursor := mustCreate("c", "b", "later direct", base.Add(3*time.Second))
	mustCreate("c", "b", "newest", base.Add(4*time.Second))

	t.Run("direct plus broadcast, oldest first", func(t *testing.T) {
		msgs, err := repo.FindForRecipient(ctx, "b", nil)
		require.NoError(t, err)
		require.Len(t, msgs, 4)
		assert.Equal(t, "direct to b", msgs[0].Body)
		assert.Equal(t, "everyone", msgs[1].Body)
		assert.Equal(t, "newest", msgs[3].Body)
	})

	t.Run("broadcast is hidden from its sender", func(t *testing.T) {
		msgs, err := repo.FindForRecipient(ctx, "a", nil)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("since cursor excludes already-seen messages", func(t *testing.T) {
		msgs, err := repo.FindForRecipient(ctx, "b", &cursor.CreatedAt)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "newest", msgs[0].Body)
	})

	t.Run("read is non-destructive", func(t *testing.T) {
		again, err := repo.FindForRecipient(ctx, "b", nil)
		require.NoError(t, err)
		assert.Len(t, again, 4)
	})
}

func TestMessageRepository_FindConversation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMessageRepository(openTestDB(t))
	base := storeTime(time.Now())

	mustCreate := func(sender, recipient, body string, at time.Time) {
		t.Helper()
		_, err := repo.Create(ctx, model.CreateMessageParams{
			SenderID:    sender,
			RecipientID: recipient,
			Kind:        model.KindChat,
			Body:        body,
		}, at)
		require.NoError(t, err)
	}

	mustCreate("a", "b", "m1", base)
	mustCreate("b", "a", "m2", base.Add(time.Second))
	mustCreate("a", "c", "unrelated", base.Add(2*time.Second))
	mustCreate("c", model.BroadcastRecipient, "broadcast from c", base.Add(3*time.Second))
	mustCreate("a", "b", "m3", base.Add(4*time.Second))

	t.Run("both directions plus broadcasts, newest first", func(t *testing.T) {
		msgs, err := repo.FindConversation(ctx, "a", "b", 10)
		require.NoError(t, err)
		require.Len(t, msgs, 4)
		assert.Equal(t, "m3", msgs[0].Body)
		assert.Equal(t, "broadcast from c", msgs[1].Body)
		assert.Equal(t, "m1", msgs[3].Body)
	})

	t.Run("limit keeps the most recent", func(t *testing.T) {
		msgs, err := repo.FindConversation(ctx, "a", "b", 2)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "m3", msgs[0].Body)
	})
}

func TestMessageRepository_FindByThread(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMessageRepository(openTestDB(t))
	base := storeTime(time.Now())
	thread := "thread-1"

	_, err := repo.Create(ctx, model.CreateMessageParams{
		SenderID:    "a",
		RecipientID: model.BroadcastRecipient,
		Kind:        model.KindCollabRequest,
		Body:        "need help",
		ThreadID:    &thread,
	}, base)
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.CreateMessageParams{
		SenderID:    "b",
		RecipientID: "a",
		Kind:        model.KindCollabReply,
		Body:        "on it",
		ThreadID:    &thread,
	}, base.Add(time.Second))
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.CreateMessageParams{
		SenderID:    "a",
		RecipientID: "b",
		Kind:        model.KindChat,
		Body:        "no thread",
	}, base.Add(2*time.Second))
	require.NoError(t, err)

	msgs, err := repo.FindByThread(ctx, thread)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "need help", msgs[0].Body)
	assert.Equal(t, "on it", msgs[1].Body)

	empty, err := repo.FindByThread(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
