package chunker

import (
	"strings"

	"wayfarer/internal/domain"
)

// defaultSeparators is ordered from the largest linguistic boundary to
// the smallest. The empty string means a hard cut at maxSize runes.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// RecursiveChunker splits documents into overlapping fragments by
// recursively trying separators until every piece fits within maxSize,
// then merging pieces back up to the size bound with a trailing overlap
// duplicated at the head of the next fragment. Sizes are measured in
// runes. Chunking is deterministic: the same document and parameters
// always produce the same fragment sequence.
type RecursiveChunker struct {
	maxSize    int
	overlap    int
	separators []string
}

func NewRecursiveChunker(maxSize, overlap int) *RecursiveChunker {
	if maxSize < 1 {
		maxSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize - 1
	}
	return &RecursiveChunker{
		maxSize:    maxSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

func (c *RecursiveChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	pieces := c.split(doc.Content, c.separators)
	merged := c.merge(pieces)

	chunks := make([]domain.Chunk, 0, len(merged))
	for i, text := range merged {
		chunks = append(chunks, domain.Chunk{
			Content:     text,
			Destination: doc.Destination,
			Seq:         i,
		})
	}
	return chunks, nil
}

// split breaks text into pieces no larger than maxSize. It splits on
// the first separator present in the text and recurses with finer
// separators on any piece still over the bound. The empty separator
// terminates the recursion with a hard rune cut, so split always makes
// progress and never drops content.
func (c *RecursiveChunker) split(text string, separators []string) []string {
	if runeLen(text) <= c.maxSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return c.hardCut(text)
	}

	sep := separators[0]
	if sep == "" {
		return c.hardCut(text)
	}

	parts := splitAfter(text, sep)
	if len(parts) <= 1 {
		return c.split(text, separators[1:])
	}

	var out []string
	for _, part := range parts {
		if runeLen(part) <= c.maxSize {
			out = append(out, part)
		} else {
			out = append(out, c.split(part, separators[1:])...)
		}
	}
	return out
}

// merge packs consecutive pieces into fragments of at most maxSize
// runes. When a fragment is closed, its last overlap runes seed the
// next fragment; the overlap is dropped when carrying it would push the
// next fragment over the bound.
func (c *RecursiveChunker) merge(pieces []string) []string {
	var chunks []string
	var cur []rune

	for _, piece := range pieces {
		pr := []rune(piece)

		if len(cur) > 0 && len(cur)+len(pr) > c.maxSize {
			chunks = append(chunks, string(cur))

			tail := cur
			if len(tail) > c.overlap {
				tail = tail[len(tail)-c.overlap:]
			}
			cur = append([]rune(nil), tail...)
			if len(cur)+len(pr) > c.maxSize {
				cur = cur[:0]
			}
		}
		cur = append(cur, pr...)
	}

	if len(cur) > 0 {
		chunks = append(chunks, string(cur))
	}
	return chunks
}

func (c *RecursiveChunker) hardCut(text string) []string {
	r := []rune(text)
	out := make([]string, 0, (len(r)+c.maxSize-1)/c.maxSize)
	for i := 0; i < len(r); i += c.maxSize {
		end := i + c.maxSize
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[i:end]))
	}
	return out
}

// splitAfter splits keeping the separator attached to the preceding
// piece, so concatenating the pieces reproduces the input exactly.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
