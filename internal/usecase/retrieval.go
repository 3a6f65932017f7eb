package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"wayfarer/internal/adapter/index"
	"wayfarer/internal/domain"
	"wayfarer/internal/port"
)

// State tracks the lifecycle of the retrieval service.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	notReadyMessage  = "The travel knowledge base is not available. Build the index and try again."
	noResultsMessage = "No relevant information was found in the knowledge base for this query."

	// summaryHeadRunes bounds the file-head destination summary.
	summaryHeadRunes = 1000
)

// RetrievalOptions configures the retrieval service.
type RetrievalOptions struct {
	Loader    port.Loader
	Chunker   port.Chunker
	Embedder  port.Embedder
	IndexPath string

	TopK         int // fragments per plain query
	DestinationK int // widened count for destination lookups
	BatchSize    int // texts embedded per call during a rebuild

	Logger *slog.Logger

	// OnProgress, when set, is called after each embedding batch
	// during a rebuild with the number of chunks embedded so far.
	OnProgress func(done, total int)
}

// Retrieval answers semantic queries over the destination knowledge
// base. Construction either loads a persisted index or rebuilds one
// from the knowledge base; after that queries are read-only. A service
// whose construction failed still answers every query, with sentinel
// text instead of results.
type Retrieval struct {
	opts  RetrievalOptions
	state State
	index *index.Index
}

// NewRetrieval builds the service. On failure it returns the error
// alongside a non-nil service in the Failed state, so callers can keep
// a query surface up while the operator fixes the knowledge base.
func NewRetrieval(opts RetrievalOptions) (*Retrieval, error) {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.DestinationK <= 0 {
		opts.DestinationK = 5
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Retrieval{opts: opts, state: StateLoading}

	if err := r.initialize(); err != nil {
		r.state = StateFailed
		return r, err
	}
	r.state = StateReady
	return r, nil
}

func (r *Retrieval) initialize() error {
	// The probe vector's length is the dimension queries will actually
	// have, so it is what the persisted artifact is validated against.
	probe, err := r.opts.Embedder.Embed([]string{"probe"})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(probe) == 0 || len(probe[0]) == 0 {
		return fmt.Errorf("%w: empty probe embedding", domain.ErrEmbeddingUnavailable)
	}

	ix, err := index.Load(r.opts.IndexPath, r.opts.Embedder.ModelName(), len(probe[0]))
	if err == nil {
		r.opts.Logger.Info("loaded persisted index",
			"path", r.opts.IndexPath, "fragments", ix.Len())
		r.index = ix
		return nil
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		r.opts.Logger.Info("no persisted index, building from knowledge base")
	case errors.Is(err, domain.ErrCorruptIndex):
		r.opts.Logger.Warn("persisted index rejected, rebuilding", "error", err)
	default:
		r.opts.Logger.Warn("failed to open persisted index, rebuilding", "error", err)
	}

	return r.rebuild()
}

// Rebuild discards any loaded index and rebuilds it from the knowledge
// base, persisting the result best-effort.
func (r *Retrieval) Rebuild() error {
	r.state = StateLoading
	if err := r.rebuild(); err != nil {
		r.state = StateFailed
		return err
	}
	r.state = StateReady
	return nil
}

func (r *Retrieval) rebuild() error {
	docs, err := r.opts.Loader.Load()
	if err != nil {
		return err
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		docChunks, err := r.opts.Chunker.Chunk(doc)
		if err != nil {
			return fmt.Errorf("failed to chunk %s: %w", doc.Source, err)
		}
		chunks = append(chunks, docChunks...)
	}
	if len(chunks) == 0 {
		return domain.ErrEmptyCorpus
	}

	entries := make([]index.Entry, len(chunks))
	for start := 0; start < len(chunks); start += r.opts.BatchSize {
		end := start + r.opts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Content
		}
		vectors, err := r.opts.Embedder.Embed(texts)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, v := range vectors {
			entries[start+i] = index.Entry{Chunk: chunks[start+i], Vector: v}
		}
		if r.opts.OnProgress != nil {
			r.opts.OnProgress(end, len(chunks))
		}
	}

	ix, err := index.Build(entries, r.opts.Embedder.ModelName())
	if err != nil {
		return err
	}

	if err := ix.Save(r.opts.IndexPath); err != nil {
		r.opts.Logger.Warn("failed to persist index, continuing in memory",
			"path", r.opts.IndexPath, "error", err)
	} else {
		r.opts.Logger.Info("persisted index",
			"path", r.opts.IndexPath, "fragments", ix.Len())
	}

	r.index = ix
	return nil
}

// State reports the service lifecycle state.
func (r *Retrieval) State() State {
	return r.state
}

// FragmentCount returns the number of indexed fragments, zero when the
// service is not ready.
func (r *Retrieval) FragmentCount() int {
	if r.index == nil {
		return 0
	}
	return r.index.Len()
}

// Destinations lists the destinations present in the knowledge base,
// in loader order.
func (r *Retrieval) Destinations() ([]string, error) {
	docs, err := r.opts.Loader.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Destination)
	}
	return names, nil
}

// Search embeds the query, runs a nearest-neighbor lookup, and formats
// the best fragments as labeled text blocks. It never returns an error:
// every failure degrades to a sentinel message so the output is always
// usable as prompt context.
func (r *Retrieval) Search(query string, k int) string {
	if r.state != StateReady || r.index == nil {
		return notReadyMessage
	}
	if k <= 0 {
		k = r.opts.TopK
	}

	vectors, err := r.opts.Embedder.Embed([]string{query})
	if err != nil || len(vectors) == 0 {
		r.opts.Logger.Warn("query embedding failed", "error", err)
		return notReadyMessage
	}

	results, err := r.index.Search(vectors[0], k)
	if err != nil {
		r.opts.Logger.Warn("index search failed", "error", err)
		return notReadyMessage
	}
	if len(results) == 0 {
		return noResultsMessage
	}

	blocks := make([]string, 0, len(results))
	for _, res := range results {
		content := strings.TrimSpace(res.Chunk.Content)
		if content == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[Source: %s]\n%s", res.Chunk.Destination, content))
	}
	if len(blocks) == 0 {
		return noResultsMessage
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// SearchByDestination runs a widened query covering the facets an
// itinerary needs, with a higher fragment count than a plain search.
func (r *Retrieval) SearchByDestination(destination string) string {
	query := fmt.Sprintf("%s attractions food transport budget", destination)
	return r.Search(query, r.opts.DestinationK)
}

// DestinationSummary returns the head of the destination's source file
// when one exists, falling back to a semantic search otherwise. Unknown
// destinations therefore still yield whatever the corpus holds.
func (r *Retrieval) DestinationSummary(destination string) string {
	content, err := r.opts.Loader.ReadDestinationFile(destination)
	if err == nil {
		content = strings.TrimSpace(content)
		if utf8.RuneCountInString(content) > summaryHeadRunes {
			runes := []rune(content)
			return string(runes[:summaryHeadRunes]) + "..."
		}
		if content != "" {
			return content
		}
	}
	return r.SearchByDestination(destination)
}

var (
	sharedOnce      sync.Once
	sharedRetrieval *Retrieval
	sharedErr       error
)

// Shared returns the process-wide retrieval service, constructing it on
// first call. Later calls ignore their options and return the same
// instance, including a Failed one.
func Shared(opts RetrievalOptions) (*Retrieval, error) {
	sharedOnce.Do(func() {
		sharedRetrieval, sharedErr = NewRetrieval(opts)
	})
	return sharedRetrieval, sharedErr
}
