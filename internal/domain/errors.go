package domain

import "errors"

// Construction-time failures are fatal and surfaced to the operator.
// ErrCorruptIndex is the exception: the retrieval service recovers from
// it by rebuilding.
var (
	ErrKnowledgeBaseNotFound = errors.New("knowledge base directory not found")
	ErrEmptyCorpus           = errors.New("no documents found in knowledge base")
	ErrCorruptIndex          = errors.New("persisted index unreadable or incompatible")
	ErrEmbeddingUnavailable  = errors.New("embedding model unavailable")
)
