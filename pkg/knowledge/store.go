// Package knowledge is the employee-handbook retrieval backend: a
// sqlite-vec index of handbook chunks keyed by a collection name, searched
// by embedding similarity.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/Cherwin23/HR-Assistant/pkg/llm"
)

func init() {
	// Auto-register sqlite-vec extension
	sqlite_vec.Auto()
}

// NoResultsMessage is returned when no handbook content matches a query
const NoResultsMessage = "No relevant information found in the employee handbook."

// Snippet is one retrieved handbook chunk with its similarity score
type Snippet struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Config holds store configuration
type Config struct {
	DBPath     string
	Collection string
	Embedder   llm.Embedder
	Logger     zerolog.Logger
}

// Store is a persistent vector index over handbook chunks
type Store struct {
	db         *sql.DB
	collection string
	embedder   llm.Embedder
	logger     zerolog.Logger
}

// NewStore opens (or creates) the handbook index
func NewStore(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers unblocked during ingestion
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:         db,
		collection: cfg.Collection,
		embedder:   cfg.Embedder,
		logger:     cfg.Logger,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().Str("collection", cfg.Collection).Msg("Handbook store initialized")
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	vectorSchema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunk_embeddings USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, s.embedder.Dimension())

	if _, err := s.db.Exec(vectorSchema); err != nil {
		return fmt.Errorf("failed to create vector table: %w", err)
	}

	return nil
}

// AddChunks embeds and indexes handbook chunks. Used by the offline index
// command; the request path only searches.
func (s *Store) AddChunks(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings, err := s.embedder.GenerateEmbeddings(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM chunks WHERE collection = ?", s.collection).Scan(&count); err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	for i, content := range chunks {
		chunkID := fmt.Sprintf("%s-%06d", s.collection, count+i)

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chunks (id, collection, content) VALUES (?, ?, ?)",
			chunkID, s.collection, content,
		); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}

		embeddingJSON, err := json.Marshal(embeddings[i])
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chunk_embeddings (chunk_id, embedding) VALUES (?, ?)",
			chunkID, string(embeddingJSON),
		); err != nil {
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info().Int("chunks", len(chunks)).Str("collection", s.collection).Msg("Chunks indexed")
	return nil
}

// Search returns the top-k most similar chunks for a query
func (s *Store) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	if strings.TrimSpace(query) == "" {
		return []Snippet{}, nil
	}
	if k <= 0 {
		k = 4
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.content, vec_distance_cosine(e.embedding, ?) AS distance
		FROM chunk_embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		WHERE c.collection = ?
		ORDER BY distance ASC
		LIMIT ?
	`, string(embeddingJSON), s.collection, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	snippets := []Snippet{}
	for rows.Next() {
		var snippet Snippet
		var distance float64
		if err := rows.Scan(&snippet.ID, &snippet.Content, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		snippet.Score = 1.0 - distance
		snippets = append(snippets, snippet)
	}

	return snippets, rows.Err()
}

// Count returns the number of chunks in the collection
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?", s.collection,
	).Scan(&count)
	return count, err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// FormatSnippets renders retrieval results the way the reasoning step
// expects to read them
func FormatSnippets(snippets []Snippet) string {
	if len(snippets) == 0 {
		return NoResultsMessage
	}

	parts := make([]string, len(snippets))
	for i, snippet := range snippets {
		parts[i] = fmt.Sprintf("Document %d:\n%s", i+1, snippet.Content)
	}
	return strings.Join(parts, "\n\n")
}
