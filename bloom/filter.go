// Package bloom suppresses repeated chunk contents using Bloom filters.
package bloom

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/aptnotice"
)

// Filter wraps a Bloom filter over normalized text.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(max(n, 1), fpRate),
	}
}

// TestAndAdd reports whether text might have been added before and adds
// it. Texts differing only in whitespace are the same item.
func (f *Filter) TestAndAdd(text string) bool {
	return f.f.TestAndAddString(normalize(text))
}

// Test returns true if text might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(text string) bool {
	return f.f.TestString(normalize(text))
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// DefaultFalsePositiveRate bounds the share of unique chunks dropped by
// mistake.
const DefaultFalsePositiveRate = 0.001

// Ensure Deduplicator implements aptnotice.Deduplicator at compile time.
var _ aptnotice.Deduplicator = (*Deduplicator)(nil)

// Deduplicator implements aptnotice.Deduplicator. Each call starts from an
// empty filter, so duplicates are detected within one document only.
type Deduplicator struct {
	FalsePositiveRate float64
}

// NewDeduplicator creates a Deduplicator with DefaultFalsePositiveRate.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{FalsePositiveRate: DefaultFalsePositiveRate}
}

// Deduplicate keeps the first chunk of each distinct content in order and
// returns the number dropped.
func (d *Deduplicator) Deduplicate(chunks []*aptnotice.Chunk) ([]*aptnotice.Chunk, int) {
	f := NewFilter(uint(len(chunks)), d.FalsePositiveRate)

	kept := make([]*aptnotice.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if f.TestAndAdd(c.Content) {
			continue
		}
		kept = append(kept, c)
	}
	return kept, len(chunks) - len(kept)
}
