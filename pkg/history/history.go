package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	DefaultStorageFileName = ".chain-swap-history.json"
)

// Record is one completed or attempted trade.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	Mode         string    `json:"mode"`
	Environment  string    `json:"environment"`
	FromChain    string    `json:"fromChain"`
	ToChain      string    `json:"toChain"`
	FromToken    string    `json:"fromToken"`
	ToToken      string    `json:"toToken"`
	Amount       string    `json:"amount"`
	OutputAmount string    `json:"outputAmount,omitempty"`
	OrderID      string    `json:"orderId,omitempty"`
	TxHashes     []string  `json:"txHashes,omitempty"`
	Status       string    `json:"status"`
}

// Store persists trade records to a JSON file.
type Store struct {
	filePath string
	mu       sync.RWMutex
	records  []Record
}

// fileFormat is the JSON structure of the storage file.
type fileFormat struct {
	Records []Record `json:"records"`
}

// NewStore creates a store backed by filePath, defaulting to a dotfile in
// the home directory.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	store := &Store{filePath: filePath}

	if err := store.load(); err != nil {
		// A missing file is fine, it is created on first append
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	return store, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}

	s.records = file.Records
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(fileFormat{Records: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Append adds a record and persists the file.
func (s *Store) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	s.records = append(s.records, record)
	return s.save()
}

// List returns all records, newest first.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, record := range s.records {
		out[len(s.records)-1-i] = record
	}
	return out
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// GetFilePath returns the storage file path.
func (s *Store) GetFilePath() string {
	return s.filePath
}
