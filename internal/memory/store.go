// Package memory is the shared vector memory collaborator: attributed
// free-text entries any session can store and search by similarity. It sits
// outside the coordinator's core tables but shares the same store file, so a
// remembered entry is as durable and as multi-process-safe as a message.
package memory

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/universalchat/hub-go/internal/database"
	apperrors "github.com/universalchat/hub-go/internal/errors"
)

type Entry struct {
	Key           string    `db:"key" json:"key"`
	Content       string    `db:"content" json:"content"`
	ContributedBy string    `db:"contributed_by" json:"contributedBy"`
	Platform      string    `db:"platform" json:"platform"`
	Embedding     []byte    `db:"embedding" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type SearchResult struct {
	Key           string  `json:"key"`
	Content       string  `json:"content"`
	ContributedBy string  `json:"contributedBy"`
	Platform      string  `json:"platform"`
	Score         float64 `json:"score"`
}

type Store struct {
	db       *database.DB
	embedder Embedder
}

func NewStore(db *database.DB, embedder Embedder) *Store {
	return &Store{db: db, embedder: embedder}
}

// Remember embeds content and upserts it under key with attribution.
func (s *Store) Remember(ctx context.Context, key, content, contributedBy, platform string) (*Entry, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.InvalidArgument("key", "must not be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidArgument("content", "must not be empty")
	}

	vecs, err := s.embedder.Embed(ctx, []string{content})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	var entry Entry
	err = database.Retry(ctx, func() error {
		return s.db.GetContext(ctx, &entry, `
			INSERT INTO memory_entries (key, content, contributed_by, platform, embedding, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET
				content = excluded.content,
				contributed_by = excluded.contributed_by,
				platform = excluded.platform,
				embedding = excluded.embedding,
				updated_at = excluded.updated_at
			RETURNING *
		`, key, content, contributedBy, platform, encodeVector(vecs[0]), time.Now().UTC())
	})
	if err != nil {
		return nil, fmt.Errorf("store memory entry: %w", err)
	}

	log.Info().
		Str("key", entry.Key).
		Str("platform", entry.Platform).
		Msg("memory entry stored")

	return &entry, nil
}

// Search embeds the query and ranks stored entries by cosine similarity.
// An empty platform means no platform filter.
func (s *Store) Search(ctx context.Context, query, platform string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidArgument("query", "must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := vecs[0]

	var entries []Entry
	if platform != "" {
		err = s.db.SelectContext(ctx, &entries,
			`SELECT * FROM memory_entries WHERE platform = ?`, platform)
	} else {
		err = s.db.SelectContext(ctx, &entries, `SELECT * FROM memory_entries`)
	}
	if err != nil {
		return nil, fmt.Errorf("load memory entries: %w", err)
	}

	results := make([]SearchResult, 0, len(entries))
	for _, entry := range entries {
		score := Cosine(queryVec, decodeVector(entry.Embedding))
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			Key:           entry.Key,
			Content:       entry.Content,
			ContributedBy: entry.ContributedBy,
			Platform:      entry.Platform,
			Score:         score,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Get returns one entry by key, or nil when absent.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.InvalidArgument("key", "must not be empty")
	}
	var entry Entry
	err := s.db.GetContext(ctx, &entry, `SELECT * FROM memory_entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memory entry: %w", err)
	}
	return &entry, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
