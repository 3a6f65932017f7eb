package kb

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"wayfarer/internal/domain"
)

// Loader reads destination documents from a knowledge-base directory,
// one plain-text file per destination.
type Loader struct {
	dir      string
	includes []string
	excludes []string
	logger   *slog.Logger
}

func NewLoader(dir string, includes, excludes []string, logger *slog.Logger) *Loader {
	if len(includes) == 0 {
		includes = []string{"*.txt"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:      dir,
		includes: includes,
		excludes: excludes,
		logger:   logger,
	}
}

// Load returns one Document per eligible file, in filename order.
// Files that cannot be read or are not valid UTF-8 are logged and
// skipped; a single bad file never aborts the corpus load. An existing
// directory with no eligible files yields an empty slice, not an error.
func (l *Loader) Load() ([]domain.Document, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrKnowledgeBaseNotFound, l.dir)
		}
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !l.shouldInclude(name) || l.shouldExclude(name) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(l.dir, name))
		if err != nil {
			l.logger.Warn("skipping unreadable document", "file", name, "error", err)
			continue
		}
		if !utf8.Valid(data) {
			l.logger.Warn("skipping document with invalid encoding", "file", name)
			continue
		}

		docs = append(docs, domain.Document{
			Content:     string(data),
			Destination: domain.NormalizeDestination(name),
			Source:      name,
		})
	}

	return docs, nil
}

// ReadDestinationFile returns the raw contents of the file backing a
// destination, located via the canonical filename mapping.
func (l *Loader) ReadDestinationFile(destination string) (string, error) {
	path := filepath.Join(l.dir, domain.DestinationFileName(destination))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid encoding in %s", path)
	}
	return string(data), nil
}

func (l *Loader) shouldInclude(name string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *Loader) shouldExclude(name string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
