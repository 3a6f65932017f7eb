package domain

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Document is one knowledge-base file, loaded whole. The destination
// name is derived from the source filename.
type Document struct {
	Content     string
	Destination string
	Source      string
}

// Chunk is a bounded slice of a document, the unit stored in the index.
// Seq preserves the order of chunks within their parent document.
type Chunk struct {
	Content     string
	Destination string
	Seq         int
}

// ScoredChunk pairs a chunk with its similarity score (higher is closer).
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// TripRequest carries the user inputs for itinerary generation.
type TripRequest struct {
	Destination  string
	Days         int
	Budget       string
	Interests    []string
	Restrictions string
}

// Itinerary is the generated day-by-day plan, returned verbatim from
// the model.
type Itinerary struct {
	Destination string
	Days        int
	Text        string
}

// NormalizeDestination maps a knowledge-base filename (or free-form
// destination text) to the canonical destination name: the file stem,
// lower-cased, then title-cased word by word. Both the loader and the
// summary lookup go through this single function.
func NormalizeDestination(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.ToLower(strings.TrimSpace(stem))

	var b strings.Builder
	startOfWord := true
	for _, r := range stem {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			b.WriteRune(r)
			startOfWord = true
			continue
		}
		if startOfWord {
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DestinationFileName is the inverse mapping used to locate the source
// file for a destination.
func DestinationFileName(destination string) string {
	return strings.ToLower(strings.TrimSpace(destination)) + ".txt"
}
