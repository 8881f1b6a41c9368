// Package store persists the scraped record collection as a JSON array on
// disk. The file is rewritten in full on every save; loading a missing or
// corrupt file yields an empty collection so an interrupted run can always
// resume.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jobsift/dice-crawler/internal/jobs"
)

// FileStore reads and writes the record collection at a fixed path.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// New returns a store backed by the file at path.
func New(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the existing records, or an empty slice when the file is
// missing or unreadable. Read and parse failures are recoverable: they are
// logged and the crawl starts from an empty store.
func (s *FileStore) Load() []jobs.JobRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read store, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return []jobs.JobRecord{}
	}

	var records []jobs.JobRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Store file is corrupt, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return []jobs.JobRecord{}
	}
	return records
}

// Save rewrites the full collection with stable field names and two-space
// indentation. A write failure is the one error this component surfaces
// upward: it is fatal to the run.
func (s *FileStore) Save(records []jobs.JobRecord) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write store %s: %w", s.path, err)
	}
	return nil
}

// SeenIDs derives the already-scraped id set from a loaded collection.
// The set is kept in memory for O(1) membership checks during a run.
func SeenIDs(records []jobs.JobRecord) map[string]struct{} {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.JobID != "" {
			seen[r.JobID] = struct{}{}
		}
	}
	return seen
}

// ContainsID reports whether id is already in the seen set.
func ContainsID(seen map[string]struct{}, id string) bool {
	_, ok := seen[id]
	return ok
}

// Add appends a record to the collection. Records are append-only: once
// stored a record is never mutated.
func Add(records []jobs.JobRecord, record jobs.JobRecord) []jobs.JobRecord {
	return append(records, record)
}
