package port

import "wayfarer/internal/domain"

// Loader reads destination documents from the knowledge base.
type Loader interface {
	// Load returns one Document per eligible file. A missing directory
	// is an error; a directory with no eligible files is not.
	Load() ([]domain.Document, error)

	// ReadDestinationFile returns the raw contents of the file backing
	// the given destination, if one exists.
	ReadDestinationFile(destination string) (string, error)
}
