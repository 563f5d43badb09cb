// Package csvfile provides a flat-file implementation of the storage.Store
// interface. The snapshot is a single CSV, rewritten in full on every save:
//
//	id,Category,House,Name,t1,t2,t3,t4,t5
//
// Throw cells hold the raw entered text (empty, "-", or a number), so a
// load restores exactly what was typed. Final-round flags are in-memory
// state and are intentionally not part of the snapshot.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amahle/discus-manager/internal/models"
	"github.com/amahle/discus-manager/internal/storage"
)

var header = []string{"id", "Category", "House", "Name", "t1", "t2", "t3", "t4", "t5"}

// Ensure FileStore implements storage.Store
var _ storage.Store = (*FileStore)(nil)

// FileStore implements storage.Store on a single CSV file.
type FileStore struct {
	path string
}

// New creates a FileStore at the given path, creating parent directories
// as needed. The snapshot file itself is only created on the first save.
func New(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Save rewrites the snapshot with the given athletes.
func (s *FileStore) Save(ctx context.Context, athletes []models.Athlete) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	for _, a := range athletes {
		rec := append([]string{a.ID, a.Category, a.House, a.Name}, a.Throws[:]...)
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return f.Close()
}

// Load reads the snapshot back. A missing file yields an empty roster;
// a file that cannot be parsed is an error the caller may treat as
// "no backup available".
func (s *FileStore) Load(ctx context.Context) ([]models.Athlete, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate rows missing trailing throw cells
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	athletes := make([]models.Athlete, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) < 4 {
			return nil, fmt.Errorf("snapshot row %d has %d cells, want at least 4", i+2, len(rec))
		}
		a := models.Athlete{
			ID:       rec[0],
			Category: rec[1],
			House:    rec[2],
			Name:     rec[3],
		}
		// Missing throw columns default to empty text.
		for j := 0; j < models.ThrowCount && 4+j < len(rec); j++ {
			a.Throws[j] = rec[4+j]
		}
		athletes = append(athletes, a)
	}
	return athletes, nil
}

// Clear removes the snapshot file. Clearing an absent snapshot is a no-op.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}
