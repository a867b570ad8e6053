package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/aptnotice"
)

// Compile-time interface verification.
var _ aptnotice.VectorStore = (*Store)(nil)

// DefaultCollection is the collection announcement chunks are stored in.
const DefaultCollection = "apt_notices"

// Store implements aptnotice.VectorStore using SQLite. Embeddings are kept
// as little-endian float32 blobs and ranked by cosine similarity in memory.
//
// A collection takes the dimension of the first embedding written to it.
type Store struct {
	db         *DB
	collection string
}

// NewStore creates a Store for the named collection.
func NewStore(db *DB, collection string) *Store {
	return &Store{db: db, collection: collection}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	b := binary.BigEndian.AppendUint64(nil, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

// HasDocument reports whether any entry carries docID.
func (s *Store) HasDocument(ctx context.Context, docID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM entries WHERE collection = ? AND doc_id = ? LIMIT 1
	`, s.collection, docID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put upserts entries in a single transaction. The first write to an empty
// collection fixes its dimension.
func (s *Store) Put(ctx context.Context, entries []*aptnotice.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e.ID == "" {
			return aptnotice.Errorf(aptnotice.EINVALID, "entry id required")
		}
		if e.Chunk == nil {
			return aptnotice.Errorf(aptnotice.EINVALID, "entry chunk required")
		}
		if err := e.Chunk.Validate(); err != nil {
			return err
		}
		if len(e.Embedding) == 0 {
			return aptnotice.Errorf(aptnotice.EINVALID, "entry embedding required")
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	dim, err := s.dimension(ctx, tx)
	if err != nil {
		return err
	}
	if dim == 0 {
		dim = len(entries[0].Embedding)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, dimension, created_at) VALUES (?, ?, ?)
		`, s.collection, dim, now); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if len(e.Embedding) != dim {
			return aptnotice.Errorf(aptnotice.ECONFLICT,
				"collection expecting embedding with dimension of %d, got %d", dim, len(e.Embedding))
		}
		m := e.Chunk.Metadata
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, collection, doc_id, content, header_1, header_2, header_3, embedding, content_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				doc_id = excluded.doc_id,
				content = excluded.content,
				header_1 = excluded.header_1,
				header_2 = excluded.header_2,
				header_3 = excluded.header_3,
				embedding = excluded.embedding,
				content_hash = excluded.content_hash
		`, e.ID, s.collection, m.DocID, e.Chunk.Content, m.Header1, m.Header2, m.Header3,
			encodeVector(e.Embedding), hashContent(e.Chunk.Content), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Dimension returns the collection's embedding dimension, or 0 when the
// collection is empty.
func (s *Store) Dimension(ctx context.Context) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx, `
		SELECT dimension FROM collections WHERE name = ?
	`, s.collection).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return dim, err
}

func (s *Store) dimension(ctx context.Context, tx *sql.Tx) (int, error) {
	var dim int
	err := tx.QueryRowContext(ctx, `
		SELECT dimension FROM collections WHERE name = ?
	`, s.collection).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return dim, err
}

// Query returns up to k entries nearest to vec by cosine similarity.
func (s *Store) Query(ctx context.Context, vec []float32, k int, filter aptnotice.SearchFilter) ([]aptnotice.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	dim, err := s.Dimension(ctx)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, nil
	}
	if len(vec) != dim {
		return nil, aptnotice.Errorf(aptnotice.ECONFLICT,
			"collection expecting embedding with dimension of %d, got %d", dim, len(vec))
	}

	query, args := s.selectEntries("id, doc_id, content, header_1, header_2, header_3, embedding", filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []aptnotice.SearchResult
	for rows.Next() {
		var c aptnotice.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Metadata.DocID, &c.Content,
			&c.Metadata.Header1, &c.Metadata.Header2, &c.Metadata.Header3, &blob); err != nil {
			return nil, err
		}
		results = append(results, aptnotice.SearchResult{
			Chunk: &c,
			Score: cosine(vec, decodeVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b aptnotice.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of entries matching filter.
func (s *Store) Count(ctx context.Context, filter aptnotice.SearchFilter) (int, error) {
	query, args := s.selectEntries("COUNT(*)", filter)
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Reset removes every entry of the collection and forgets its dimension.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE collection = ?", s.collection); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", s.collection); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) selectEntries(columns string, filter aptnotice.SearchFilter) (string, []any) {
	var query strings.Builder
	args := []any{s.collection}

	query.WriteString("SELECT " + columns + " FROM entries WHERE collection = ?")
	if filter.DocID != nil {
		query.WriteString(" AND doc_id = ?")
		args = append(args, *filter.DocID)
	}
	return query.String(), args
}

func encodeVector(v []float32) []byte {
	b := make([]byte, 0, len(v)*4)
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// cosine returns the cosine similarity of a and b, or 0 if either is zero.
func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range min(len(a), len(b)) {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
