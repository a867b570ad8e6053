// Package pgvector provides a PostgreSQL vector store backed by the
// pgvector extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/aptnotice"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
)

// Ensure Store implements aptnotice.VectorStore at compile time.
var _ aptnotice.VectorStore = (*Store)(nil)

// Store implements aptnotice.VectorStore on a table with a fixed-width
// vector column. Inserting a vector of another width fails with the
// server's "expected N dimensions" error.
type Store struct {
	pool  *pgxpool.Pool
	name  string
	table string
	dims  int
}

// Open connects to dsn and creates the collection table with dims-wide
// embeddings if it does not exist.
func Open(ctx context.Context, dsn, collection string, dims int) (*Store, error) {
	if dims <= 0 {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "embedding dimensions must be positive")
	}
	if collection == "" {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "collection name required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{
		pool:  pool,
		name:  collection,
		table: pgx.Identifier{collection}.Sanitize(),
		dims:  dims,
	}
	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) createSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL,
			content TEXT NOT NULL,
			header_1 TEXT NOT NULL DEFAULT '',
			header_2 TEXT NOT NULL DEFAULT '',
			header_3 TEXT NOT NULL DEFAULT '',
			embedding vector(%[2]d) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s(doc_id);
	`, s.table, s.dims, pgx.Identifier{s.name + "_doc_id_idx"}.Sanitize()))
	return err
}

// HasDocument reports whether any entry carries docID.
func (s *Store) HasDocument(ctx context.Context, docID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		"SELECT 1 FROM "+s.table+" WHERE doc_id = $1 LIMIT 1", docID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put upserts entries in a single transaction.
func (s *Store) Put(ctx context.Context, entries []*aptnotice.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e.ID == "" || e.Chunk == nil {
			return aptnotice.Errorf(aptnotice.EINVALID, "entry id and chunk required")
		}
		if err := e.Chunk.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range entries {
		m := e.Chunk.Metadata
		batch.Queue(`
			INSERT INTO `+s.table+` (id, doc_id, content, header_1, header_2, header_3, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				doc_id = EXCLUDED.doc_id,
				content = EXCLUDED.content,
				header_1 = EXCLUDED.header_1,
				header_2 = EXCLUDED.header_2,
				header_3 = EXCLUDED.header_3,
				embedding = EXCLUDED.embedding
		`, e.ID, m.DocID, e.Chunk.Content, m.Header1, m.Header2, m.Header3, pgv.NewVector(e.Embedding))
	}

	br := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Query returns up to k entries nearest to vec by cosine distance. Scores
// are 1 - distance.
func (s *Store) Query(ctx context.Context, vec []float32, k int, filter aptnotice.SearchFilter) ([]aptnotice.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, doc_id, content, header_1, header_2, header_3, 1 - (embedding <=> $1) AS score
		FROM `+s.table+`
		WHERE $2::text IS NULL OR doc_id = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`, pgv.NewVector(vec), filter.DocID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []aptnotice.SearchResult
	for rows.Next() {
		var c aptnotice.Chunk
		var score float64
		if err := rows.Scan(&c.ID, &c.Metadata.DocID, &c.Content,
			&c.Metadata.Header1, &c.Metadata.Header2, &c.Metadata.Header3, &score); err != nil {
			return nil, err
		}
		results = append(results, aptnotice.SearchResult{Chunk: &c, Score: float32(score)})
	}
	return results, rows.Err()
}

// Count returns the number of entries matching filter.
func (s *Store) Count(ctx context.Context, filter aptnotice.SearchFilter) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+s.table+" WHERE $1::text IS NULL OR doc_id = $1", filter.DocID).Scan(&n)
	return n, err
}

// Reset drops the collection table and recreates it empty.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+s.table); err != nil {
		return err
	}
	return s.createSchema(ctx)
}
