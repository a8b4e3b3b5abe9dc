package docindex_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/docindex"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/model"
)

func newTestIndexer(t *testing.T) *docindex.Indexer {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return docindex.NewIndexer(db)
}

func TestIndexer_IndexDocument(t *testing.T) {
	ctx := context.Background()
	ix := newTestIndexer(t)

	content := "# Codex Guide\n\n## Sandboxing\n\ncodex runs commands in a sandbox\n\n## Approvals\n\napprovals gate shell access"

	count, err := ix.IndexDocument(ctx, "codex-cli.md", content, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	t.Run("reindexing the same source does not duplicate", func(t *testing.T) {
		again, err := ix.IndexDocument(ctx, "codex-cli.md", content, "")
		require.NoError(t, err)
		assert.Equal(t, count, again)

		results, err := ix.Search(ctx, "sandbox", model.PlatformCodexCLI, 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("empty document indexes nothing", func(t *testing.T) {
		count, err := ix.IndexDocument(ctx, "empty.md", "   ", "")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("requires a source", func(t *testing.T) {
		_, err := ix.IndexDocument(ctx, "", "content", "")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument))
	})
}

func TestIndexer_IndexDir(t *testing.T) {
	ctx := context.Background()
	ix := newTestIndexer(t)

	fsys := fstest.MapFS{
		"docs/codex-cli.md":  {Data: []byte("# Codex\n\nsandbox approvals")},
		"docs/gemini-cli.md": {Data: []byte("# Gemini\n\ncheckpointing and memory")},
		"docs/notes.txt":     {Data: []byte("not markdown, skipped")},
	}

	counts, err := ix.IndexDir(ctx, fsys, "docs")
	require.NoError(t, err)
	assert.Len(t, counts, 2)
	assert.Equal(t, 1, counts["codex-cli.md"])
	assert.Equal(t, 1, counts["gemini-cli.md"])
}

func TestIndexer_Search(t *testing.T) {
	ctx := context.Background()
	ix := newTestIndexer(t)

	_, err := ix.IndexDocument(ctx, "codex-cli.md", "# Codex\n\n## Sandbox\n\ncommands run inside a sandbox with approval gates", "")
	require.NoError(t, err)
	_, err = ix.IndexDocument(ctx, "gemini-cli.md", "# Gemini\n\n## Memory\n\ngemini persists memory across sessions", "")
	require.NoError(t, err)

	t.Run("platform scoping", func(t *testing.T) {
		results, err := ix.Search(ctx, "sandbox approval", model.PlatformCodexCLI, 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "codex-cli.md", results[0].Source)
		assert.Equal(t, "Sandbox", results[0].Section)
	})

	t.Run("cross-platform search", func(t *testing.T) {
		results, err := ix.Search(ctx, "memory sessions", "", 5)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "gemini-cli.md", results[0].Source)
	})

	t.Run("no hits is an empty slice, not an error", func(t *testing.T) {
		results, err := ix.Search(ctx, "zzznope", "", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		_, err := ix.Search(ctx, "", "", 5)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument))
	})
}

func TestPlatformFromSource(t *testing.T) {
	assert.Equal(t, model.PlatformCodexCLI, docindex.PlatformFromSource("codex-cli.md"))
	assert.Equal(t, model.PlatformGeminiCLI, docindex.PlatformFromSource("Gemini-Notes.md"))
	assert.Equal(t, model.PlatformClaudeCode, docindex.PlatformFromSource("claude-code.md"))
	assert.Equal(t, "unknown", docindex.PlatformFromSource("random.md"))
}
