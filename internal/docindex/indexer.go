// Package docindex is the documentation index collaborator: platform-tagged
// markdown chunks searchable by platform plus free-text query. Lookup is
// lexical (token overlap); semantic retrieval belongs to the memory package.
package docindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/universalchat/hub-go/internal/database"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/model"
)

type Indexer struct {
	db      *database.DB
	chunker *Chunker
}

func NewIndexer(db *database.DB) *Indexer {
	return &Indexer{db: db, chunker: NewChunker()}
}

type StoredChunk struct {
	ChunkID    string    `db:"chunk_id" json:"chunkId"`
	Source     string    `db:"source" json:"source"`
	Platform   string    `db:"platform" json:"platform"`
	Title      string    `db:"title" json:"title"`
	Section    string    `db:"section" json:"section"`
	ChunkIndex int       `db:"chunk_index" json:"chunkIndex"`
	Content    string    `db:"content" json:"content"`
	IndexedAt  time.Time `db:"indexed_at" json:"indexedAt"`
}

type SearchResult struct {
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
	Platform string  `json:"platform"`
	Section  string  `json:"section"`
	Source   string  `json:"source"`
}

// IndexDocument chunks one markdown document and upserts its chunks. The
// platform tag is inferred from the source name unless explicitly given.
func (ix *Indexer) IndexDocument(ctx context.Context, source, content, platform string) (int, error) {
	if strings.TrimSpace(source) == "" {
		return 0, apperrors.InvalidArgument("source", "must not be empty")
	}
	if platform == "" {
		platform = PlatformFromSource(source)
	}

	title := Title(content)
	chunks := ix.chunker.ChunkMarkdown(content, title)
	if len(chunks) == 0 {
		log.Warn().Str("source", source).Msg("no chunks generated")
		return 0, nil
	}

	now := time.Now().UTC()
	for _, chunk := range chunks {
		err := database.Retry(ctx, func() error {
			_, execErr := ix.db.ExecContext(ctx, `
				INSERT INTO doc_chunks (chunk_id, source, platform, title, section, chunk_index, content, indexed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (chunk_id) DO UPDATE SET
					content = excluded.content,
					section = excluded.section,
					indexed_at = excluded.indexed_at
			`, chunkID(source, chunk), source, platform, title, chunk.Section, chunk.Index, chunk.Text, now)
			return execErr
		})
		if err != nil {
			return 0, fmt.Errorf("index chunk: %w", err)
		}
	}

	log.Info().
		Str("source", source).
		Str("platform", platform).
		Int("chunks", len(chunks)).
		Msg("document indexed")

	return len(chunks), nil
}

// IndexDir walks dir and indexes every markdown file in it.
func (ix *Indexer) IndexDir(ctx context.Context, fsys fs.FS, dir string) (map[string]int, error) {
	results := make(map[string]int)
	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		count, err := ix.IndexDocument(ctx, filepath.Base(path), string(content), "")
		if err != nil {
			return err
		}
		results[filepath.Base(path)] = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Search ranks indexed chunks for a platform-scoped query by token overlap.
// An empty platform searches every platform's documentation.
func (ix *Indexer) Search(ctx context.Context, query, platform string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidArgument("query", "must not be empty")
	}
	if limit <= 0 {
		limit = 5
	}

	var chunks []StoredChunk
	var err error
	if platform != "" {
		err = ix.db.SelectContext(ctx, &chunks, `SELECT * FROM doc_chunks WHERE platform = ?`, platform)
	} else {
		err = ix.db.SelectContext(ctx, &chunks, `SELECT * FROM doc_chunks`)
	}
	if err != nil {
		return nil, fmt.Errorf("load doc chunks: %w", err)
	}

	terms := queryTerms(query)
	results := make([]SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		score := overlapScore(terms, chunk.Content)
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			Score:    score,
			Text:     chunk.Content,
			Platform: chunk.Platform,
			Section:  chunk.Section,
			Source:   chunk.Source,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// PlatformFromSource infers the platform tag from a documentation filename.
func PlatformFromSource(source string) string {
	lower := strings.ToLower(source)
	switch {
	case strings.Contains(lower, "codex"):
		return model.PlatformCodexCLI
	case strings.Contains(lower, "gemini"):
		return model.PlatformGeminiCLI
	case strings.Contains(lower, "claude"):
		return model.PlatformClaudeCode
	default:
		return "unknown"
	}
}

func chunkID(source string, chunk Chunk) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", source, chunk.Index, chunk.Section)))
	return hex.EncodeToString(h[:16])
}

func queryTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(query)) {
		terms[strings.Trim(f, ".,;:!?\"'()[]")] = struct{}{}
	}
	return terms
}

func overlapScore(terms map[string]struct{}, content string) float64 {
	if len(terms) == 0 {
		return 0
	}
	var hits int
	lower := strings.ToLower(content)
	for term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
