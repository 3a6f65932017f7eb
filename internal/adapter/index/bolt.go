package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
	"wayfarer/internal/domain"
)

// The on-disk format is a versioned artifact owned by this system: a
// bbolt file with an entries bucket keyed by big-endian insertion
// sequence and a meta bucket recording the format version, embedding
// model and dimension. Load validates all of it rather than trusting
// the file.
const formatVersion = 1

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")
	keyMeta       = []byte("index_meta")
)

type indexMeta struct {
	FormatVersion int    `json:"format_version"`
	Model         string `json:"model"`
	Dimension     int    `json:"dimension"`
	Count         int    `json:"count"`
}

type storedEntry struct {
	Content     string    `json:"content"`
	Destination string    `json:"destination"`
	Seq         int       `json:"seq"`
	Vector      []float32 `json:"vector"`
}

// Save writes the index to path, replacing any previous artifact.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	// Write fresh rather than merging into whatever is there.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace existing index: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		eb, err := tx.CreateBucketIfNotExists(bucketEntries)
		if err != nil {
			return err
		}
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}

		for i, e := range ix.entries {
			data, err := json.Marshal(storedEntry{
				Content:     e.Chunk.Content,
				Destination: e.Chunk.Destination,
				Seq:         e.Chunk.Seq,
				Vector:      e.Vector,
			})
			if err != nil {
				return err
			}
			if err := eb.Put(itob(uint64(i)), data); err != nil {
				return err
			}
		}

		meta, err := json.Marshal(indexMeta{
			FormatVersion: formatVersion,
			Model:         ix.modelID,
			Dimension:     ix.dimension,
			Count:         len(ix.entries),
		})
		if err != nil {
			return err
		}
		return mb.Put(keyMeta, meta)
	})
}

// Load reads a persisted index and validates it against the currently
// configured embedding model and its vector dimension. A missing file
// surfaces as os.ErrNotExist; everything else that prevents a faithful
// reload, including an artifact whose vectors the embedder cannot
// query, is ErrCorruptIndex.
func Load(path, modelID string, dimension int) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptIndex, err)
	}
	defer db.Close()

	var loaded *Index
	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return fmt.Errorf("%w: missing meta bucket", domain.ErrCorruptIndex)
		}
		data := mb.Get(keyMeta)
		if data == nil {
			return fmt.Errorf("%w: missing index metadata", domain.ErrCorruptIndex)
		}

		var meta indexMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("%w: unreadable metadata: %v", domain.ErrCorruptIndex, err)
		}
		if meta.FormatVersion != formatVersion {
			return fmt.Errorf("%w: format version %d, expected %d",
				domain.ErrCorruptIndex, meta.FormatVersion, formatVersion)
		}
		if meta.Model != modelID {
			return fmt.Errorf("%w: built with embedding model %q, configured model is %q",
				domain.ErrCorruptIndex, meta.Model, modelID)
		}
		if meta.Dimension != dimension {
			return fmt.Errorf("%w: built with dimension %d, embedder produces %d",
				domain.ErrCorruptIndex, meta.Dimension, dimension)
		}

		eb := tx.Bucket(bucketEntries)
		if eb == nil {
			return fmt.Errorf("%w: missing entries bucket", domain.ErrCorruptIndex)
		}

		entries := make([]Entry, 0, meta.Count)
		err := eb.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("%w: unreadable entry: %v", domain.ErrCorruptIndex, err)
			}
			if len(stored.Vector) != meta.Dimension {
				return fmt.Errorf("%w: entry dimension %d, expected %d",
					domain.ErrCorruptIndex, len(stored.Vector), meta.Dimension)
			}
			entries = append(entries, Entry{
				Chunk: domain.Chunk{
					Content:     stored.Content,
					Destination: stored.Destination,
					Seq:         stored.Seq,
				},
				Vector: stored.Vector,
			})
			return nil
		})
		if err != nil {
			return err
		}

		if len(entries) != meta.Count {
			return fmt.Errorf("%w: expected %d entries, found %d",
				domain.ErrCorruptIndex, meta.Count, len(entries))
		}
		if len(entries) == 0 {
			return fmt.Errorf("%w: empty index", domain.ErrCorruptIndex)
		}

		loaded = &Index{
			entries:   entries,
			dimension: meta.Dimension,
			modelID:   meta.Model,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

// itob keys preserve insertion order under bbolt's byte-wise key sort.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
