// Package rag implements the write and query paths over announcement
// chunks: indexing with batching and recovery, grounded answering, and the
// ingestion pipeline that ties extraction to the index.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/aptnotice"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Ensure Index implements aptnotice.VectorIndex at compile time.
var _ aptnotice.VectorIndex = (*Index)(nil)

// BatchPolicy controls how Add writes a document's chunks.
type BatchPolicy struct {
	// Size is the number of chunks embedded and stored together. Zero
	// writes every chunk in one batch.
	Size int

	// Interval is the minimum spacing between the starts of two batches.
	Interval time.Duration
}

// DefaultBatchPolicy writes a document in a single batch.
func DefaultBatchPolicy() BatchPolicy {
	return BatchPolicy{}
}

// ConstrainedBatchPolicy paces writes for hosts with tight memory and
// provider rate limits: batches of 5, at least 4s apart.
func ConstrainedBatchPolicy() BatchPolicy {
	return BatchPolicy{Size: 5, Interval: 4 * time.Second}
}

// ProgressEvent reports a written batch.
type ProgressEvent struct {
	DocID     string
	Completed int
	Total     int
}

// ProgressFunc is a callback for reporting indexing progress.
type ProgressFunc func(event ProgressEvent)

// Index implements aptnotice.VectorIndex over an embedder and a store.
//
// Add checks whether the document exists and then writes it; two
// concurrent Adds of the same doc_id may both write. Entry ids are stable,
// so the second write overwrites the first.
type Index struct {
	Embedder aptnotice.Embedder
	Store    aptnotice.VectorStore
	Batch    BatchPolicy

	// Retry governs quota errors from the embedder and store.
	Retry aptnotice.RetryPolicy

	Logger   *slog.Logger
	Progress ProgressFunc
}

// NewIndex creates an Index with the default batch and quota retry
// policies.
func NewIndex(embedder aptnotice.Embedder, store aptnotice.VectorStore) *Index {
	return &Index{
		Embedder: embedder,
		Store:    store,
		Batch:    DefaultBatchPolicy(),
		Retry:    aptnotice.QuotaRetryPolicy(),
	}
}

// EntryID returns the stable id of the chunk at position in a document.
func EntryID(docID string, position int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID+"#"+strconv.Itoa(position))).String()
}

// Add indexes the chunks of one document. A document already present is
// skipped and 0 is returned.
func (idx *Index) Add(ctx context.Context, chunks []*aptnotice.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	docID, err := documentID(chunks)
	if err != nil {
		return 0, err
	}

	logger := idx.logger().With("doc_id", docID)

	exists, err := idx.Store.HasDocument(ctx, docID)
	if err != nil {
		logger.Warn("existence check failed, writing anyway", "err", err)
	} else if exists {
		logger.Info("document already indexed, skipping")
		return 0, nil
	}

	entries := make([]*aptnotice.IndexEntry, len(chunks))
	for i, c := range chunks {
		chunk := *c
		chunk.ID = EntryID(docID, i)
		entries[i] = &aptnotice.IndexEntry{ID: chunk.ID, Chunk: &chunk}
	}

	batches := split(entries, idx.Batch.Size)
	limiter := idx.limiter()
	resetDone := false

	added := 0
	for i, batch := range batches {
		if err := limiter.Wait(ctx); err != nil {
			return added, err
		}
		if err := idx.writeBatch(ctx, batch, &resetDone, logger); err != nil {
			return added, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}
		added += len(batch)
		logger.Debug("batch written", "batch", i+1, "batches", len(batches), "count", len(batch))
		if idx.Progress != nil {
			idx.Progress(ProgressEvent{DocID: docID, Completed: added, Total: len(entries)})
		}
	}
	return added, nil
}

// putError marks a failure of the store write. Only these are candidates
// for the dimension reset; embedder errors never wipe the collection.
type putError struct {
	err error
}

func (e *putError) Error() string { return e.err.Error() }
func (e *putError) Unwrap() error { return e.err }

// writeBatch embeds and stores one batch. Quota errors are retried by the
// retry policy. A store dimension mismatch resets the collection once per
// Add and retries the batch.
func (idx *Index) writeBatch(ctx context.Context, batch []*aptnotice.IndexEntry, resetDone *bool, logger *slog.Logger) error {
	err := idx.Retry.Do(ctx, func(ctx context.Context) error {
		return idx.embedAndPut(ctx, batch)
	})
	if err == nil || *resetDone || !isStoreDimensionMismatch(err) {
		return err
	}

	*resetDone = true
	logger.Warn("embedding dimension mismatch, resetting collection", "err", err)
	if err := idx.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset collection: %w", err)
	}
	return idx.Retry.Do(ctx, func(ctx context.Context) error {
		return idx.embedAndPut(ctx, batch)
	})
}

func (idx *Index) embedAndPut(ctx context.Context, batch []*aptnotice.IndexEntry) error {
	texts := make([]string, len(batch))
	for i, e := range batch {
		texts[i] = e.Chunk.Content
	}

	vectors, err := idx.Embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return aptnotice.Errorf(aptnotice.EINTERNAL, "embedder returned %d vectors for %d texts", len(vectors), len(batch))
	}
	for i, e := range batch {
		e.Embedding = vectors[i]
	}
	if err := idx.Store.Put(ctx, batch); err != nil {
		return &putError{err: err}
	}
	return nil
}

func isStoreDimensionMismatch(err error) bool {
	var perr *putError
	return errors.As(err, &perr) && aptnotice.IsDimensionMismatch(perr.err)
}

// Search embeds query and returns up to k similar chunks. A non-positive k
// selects DefaultTopK.
func (idx *Index) Search(ctx context.Context, query string, k int, filter aptnotice.SearchFilter) ([]aptnotice.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "query required")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	var vectors [][]float32
	err := idx.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = idx.Embedder.Embed(ctx, []string{query})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, aptnotice.Errorf(aptnotice.EINTERNAL, "embedder returned %d vectors for 1 text", len(vectors))
	}

	results, err := idx.Store.Query(ctx, vectors[0], k, filter)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []aptnotice.SearchResult{}
	}
	return results, nil
}

// Clear removes every entry from the collection.
func (idx *Index) Clear(ctx context.Context) error {
	return idx.Store.Reset(ctx)
}

func (idx *Index) logger() *slog.Logger {
	if idx.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return idx.Logger
}

func (idx *Index) limiter() *rate.Limiter {
	if idx.Batch.Interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(idx.Batch.Interval), 1)
}

// documentID returns the doc_id shared by every chunk.
func documentID(chunks []*aptnotice.Chunk) (string, error) {
	docID := chunks[0].Metadata.DocID
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return "", err
		}
		if c.Metadata.DocID != docID {
			return "", aptnotice.Errorf(aptnotice.EINVALID, "chunks span multiple documents: %q and %q", docID, c.Metadata.DocID)
		}
	}
	return docID, nil
}

// split partitions entries into consecutive batches of at most size.
func split(entries []*aptnotice.IndexEntry, size int) [][]*aptnotice.IndexEntry {
	if size <= 0 || size >= len(entries) {
		return [][]*aptnotice.IndexEntry{entries}
	}
	var batches [][]*aptnotice.IndexEntry
	for start := 0; start < len(entries); start += size {
		batches = append(batches, entries[start:min(start+size, len(entries))])
	}
	return batches
}
