package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store provides thread-safe, chronological storage for sprint scope records.
// Logs are partitioned by source ID (one board-sprint pair per log).
type Store struct {
	mu   sync.RWMutex
	logs map[string][]ScopeRecord
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		logs: make(map[string][]ScopeRecord),
	}
}

// SourceID builds the canonical log partition name for a board-sprint pair.
func SourceID(boardID, sprintID int) string {
	return fmt.Sprintf("board-%d-sprint-%d", boardID, sprintID)
}

// Append adds new records to the log for a given source, ensuring
// chronological order and deduplication.
func (s *Store) Append(sourceID string, records []ScopeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logData := s.logs[sourceID]

	existing := make(map[string]bool)
	for _, r := range logData {
		existing[r.identity()] = true
	}

	newCount := 0
	for _, r := range records {
		if !existing[r.identity()] {
			logData = append(logData, r)
			existing[r.identity()] = true
			newCount++
		}
	}

	if newCount == 0 {
		return
	}

	// Sort by timestamp and then key for deterministic ordering
	sort.Slice(logData, func(i, j int) bool {
		if logData[i].Timestamp != logData[j].Timestamp {
			return logData[i].Timestamp < logData[j].Timestamp
		}
		return logData[i].Key < logData[j].Key
	})

	s.logs[sourceID] = logData
}

// Load reads records from a JSONL cache file for the given source.
func (s *Store) Load(cacheDir string, sourceID string) error {
	path := filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", sourceID))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No cache yet, not an error
		}
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer file.Close()

	var records []ScopeRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r ScopeRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Skipping invalid JSON line in cache")
			continue
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading cache: %w", err)
	}

	log.Info().Str("source", sourceID).Int("count", len(records)).Msg("Loaded scope records from cache")
	s.Append(sourceID, records)
	return nil
}

// Save persists records for the given source to a JSONL cache file.
func (s *Store) Save(cacheDir string, sourceID string) error {
	s.mu.RLock()
	logData, ok := s.logs[sourceID]
	s.mu.RUnlock()

	if !ok || len(logData) == 0 {
		return nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	path := filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", sourceID))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, r := range logData {
		if err := encoder.Encode(r); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	log.Info().Str("source", sourceID).Int("count", len(logData)).Msg("Scope records saved to cache")
	return nil
}

// LatestTimestamp returns the time of the most recent record for a source.
func (s *Store) LatestTimestamp(sourceID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logData, ok := s.logs[sourceID]
	if !ok || len(logData) == 0 {
		return time.Time{}
	}

	// Records are sorted, so the last one is the latest
	return time.UnixMilli(logData[len(logData)-1].Timestamp)
}

// Count returns the number of records in the store for a source.
func (s *Store) Count(sourceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[sourceID])
}

// Records returns a copy of the full record list for a source.
func (s *Store) Records(sourceID string) []ScopeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logData, ok := s.logs[sourceID]
	if !ok {
		return nil
	}
	result := make([]ScopeRecord, len(logData))
	copy(result, logData)
	return result
}

// RecordsForItem returns the change history of a single work item.
func (s *Store) RecordsForItem(sourceID string, key string) []ScopeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ScopeRecord
	for _, r := range s.logs[sourceID] {
		if r.Key == key {
			result = append(result, r)
		}
	}
	return result
}
