package docindex

import (
	"regexp"
	"strings"
)

// Chunker splits markdown documents into overlapping word-window chunks,
// section-aware so a search hit can name the heading it came from.
type Chunker struct {
	ChunkSize int // words per chunk
	Overlap   int // words shared between adjacent chunks
}

func NewChunker() *Chunker {
	return &Chunker{ChunkSize: 500, Overlap: 50}
}

type Chunk struct {
	Section string
	Index   int
	Text    string
}

var headerRe = regexp.MustCompile(`(?m)^(#{1,3})\s+(.+)$`)

// ChunkMarkdown splits content by its top-three heading levels, then windows
// each section's text.
func (c *Chunker) ChunkMarkdown(content, title string) []Chunk {
	var chunks []Chunk

	section := title
	start := 0
	locs := headerRe.FindAllStringSubmatchIndex(content, -1)

	flush := func(text string) {
		for _, piece := range c.window(text) {
			chunks = append(chunks, Chunk{Section: section, Index: len(chunks), Text: piece})
		}
	}

	for _, loc := range locs {
		flush(content[start:loc[0]])
		section = strings.TrimSpace(content[loc[4]:loc[5]])
		start = loc[1]
	}
	flush(content[start:])

	return chunks
}

func (c *Chunker) window(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	words := strings.Fields(text)
	if len(words) <= c.ChunkSize {
		return []string{text}
	}

	step := c.ChunkSize - c.Overlap
	if step <= 0 {
		step = c.ChunkSize
	}

	var pieces []string
	for i := 0; i < len(words); i += step {
		end := i + c.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return pieces
}

// Title extracts the first level-one heading, or "" when absent.
func Title(content string) string {
	m := regexp.MustCompile(`(?m)^#\s+(.+)$`).FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
