package labeler

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Stats accumulates run counters across concurrent workers.
type Stats struct {
	mu         sync.Mutex
	processed  int
	labeled    int
	archived   int
	errors     int
	categories map[string]int
}

func NewStats() *Stats {
	return &Stats{categories: make(map[string]int)}
}

// RecordProcessed counts a message that was classified, whatever the
// outcome.
func (s *Stats) RecordProcessed(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.categories[category]++
}

func (s *Stats) RecordLabeled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labeled++
}

func (s *Stats) RecordArchived() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived++
}

func (s *Stats) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}

// Snapshot is the persisted form of a run's counters.
type Snapshot struct {
	Processed      int            `yaml:"processed"`
	Labeled        int            `yaml:"labeled"`
	Archived       int            `yaml:"archived"`
	Errors         int            `yaml:"errors"`
	CategoryCounts map[string]int `yaml:"category_counts"`
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int, len(s.categories))
	for category, n := range s.categories {
		counts[category] = n
	}
	return Snapshot{
		Processed:      s.processed,
		Labeled:        s.labeled,
		Archived:       s.archived,
		Errors:         s.errors,
		CategoryCounts: counts,
	}
}

// Save writes the snapshot to path, fully replacing any previous run's
// file.
func (s Snapshot) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return nil
}
