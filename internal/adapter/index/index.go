package index

import (
	"fmt"
	"math"
	"sort"

	"wayfarer/internal/domain"
)

// Entry is one embedded fragment stored in the index.
type Entry struct {
	Chunk  domain.Chunk
	Vector []float32
}

// Index is an immutable-after-build collection of embedded fragments
// answering brute-force cosine nearest-neighbor queries. Entries keep
// their insertion order, which is also the tie-break order for equal
// scores. Once built (or loaded) an Index is never mutated, so
// concurrent searches need no synchronization.
type Index struct {
	entries   []Entry
	dimension int
	modelID   string
}

// Build constructs an index over the given entries. The corpus must be
// non-empty and every vector must share one dimension.
func Build(entries []Entry, modelID string) (*Index, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	dimension := len(entries[0].Vector)
	if dimension == 0 {
		return nil, fmt.Errorf("entry 0 has an empty vector")
	}
	for i, e := range entries {
		if len(e.Vector) != dimension {
			return nil, fmt.Errorf("vector dimension mismatch at entry %d: expected %d, got %d",
				i, dimension, len(e.Vector))
		}
	}

	return &Index{
		entries:   entries,
		dimension: dimension,
		modelID:   modelID,
	}, nil
}

// Search returns the k entries closest to the query under cosine
// similarity, ordered from most to least similar. Ties keep insertion
// order. k larger than the corpus returns every entry.
func (ix *Index) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", ix.dimension, len(query))
	}
	if k <= 0 {
		return nil, nil
	}

	scored := make([]domain.ScoredChunk, len(ix.entries))
	for i, e := range ix.entries {
		scored[i] = domain.ScoredChunk{
			Chunk: e.Chunk,
			Score: cosineSimilarity(query, e.Vector),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimension returns the embedding dimension shared by all entries.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// ModelID returns the identifier of the embedding model the index was
// built with.
func (ix *Index) ModelID() string {
	return ix.modelID
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
