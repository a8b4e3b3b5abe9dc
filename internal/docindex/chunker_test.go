package docindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMarkdown(t *testing.T) {
	c := NewChunker()

	t.Run("splits by headings and tags sections", func(t *testing.T) {
		content := "# Guide\n\nintro text here\n\n## Setup\n\nsetup instructions\n\n## Usage\n\nusage details"
		chunks := c.ChunkMarkdown(content, "Guide")
		require.Len(t, chunks, 3)
		assert.Equal(t, "Guide", chunks[0].Section)
		assert.Equal(t, "Setup", chunks[1].Section)
		assert.Contains(t, chunks[1].Text, "setup instructions")
		assert.Equal(t, "Usage", chunks[2].Section)
	})

	t.Run("chunk indexes are sequential across sections", func(t *testing.T) {
		content := "## A\n\nalpha\n\n## B\n\nbeta"
		chunks := c.ChunkMarkdown(content, "")
		require.Len(t, chunks, 2)
		assert.Equal(t, 0, chunks[0].Index)
		assert.Equal(t, 1, chunks[1].Index)
	})

	t.Run("long sections window with overlap", func(t *testing.T) {
		small := &Chunker{ChunkSize: 10, Overlap: 3}
		words := make([]string, 25)
		for i := range words {
			words[i] = "word"
		}
		chunks := small.ChunkMarkdown(strings.Join(words, " "), "doc")
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(strings.Fields(chunk.Text)), 10)
		}
	})

	t.Run("empty content yields no chunks", func(t *testing.T) {
		assert.Empty(t, c.ChunkMarkdown("", "doc"))
		assert.Empty(t, c.ChunkMarkdown("   \n\n  ", "doc"))
	})

	t.Run("deep headings stay inside their parent section", func(t *testing.T) {
		content := "## Parent\n\ntext\n\n#### too deep to split\n\nmore text"
		chunks := c.ChunkMarkdown(content, "")
		require.Len(t, chunks, 1)
		assert.Equal(t, "Parent", chunks[0].Section)
	})
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "My Doc", Title("# My Doc\n\nbody"))
	assert.Equal(t, "", Title("## only level two\n\nbody"))
	assert.Equal(t, "", Title("no headings at all"))
}

func TestWindowOverlap(t *testing.T) {
	c := &Chunker{ChunkSize: 4, Overlap: 2}
	pieces := c.window("a b c d e f")
	require.Len(t, pieces, 2)
	assert.Equal(t, "a b c d", pieces[0])
	assert.Equal(t, "c d e f", pieces[1])
}
