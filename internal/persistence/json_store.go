package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"blast-arena/server/internal/grid"
)

// JSONStore persists match history and levels in a single local JSON file.
// It backs development setups that have no database available.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *jsonData
}

type jsonData struct {
	MatchResults []*MatchResult             `json:"matchResults"`
	Levels       map[string]grid.Definition `json:"levels"`
}

// NewJSONStore loads the file when it exists and creates it otherwise.
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &jsonData{
			Levels: make(map[string]grid.Definition),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("load json store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("create json store file: %w", err)
		}
	}
	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Levels == nil {
		js.data.Levels = make(map[string]grid.Definition)
	}
	return nil
}

// saveToFile writes the full data set. Callers must hold the write lock or
// guarantee exclusive access.
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(js.filePath, data, 0644)
}

// SaveMatchResult appends a finished match and flushes.
func (js *JSONStore) SaveMatchResult(result *MatchResult) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	js.data.MatchResults = append(js.data.MatchResults, result)
	return js.saveToFile()
}

// LoadMatchResults returns the most recent results, newest first.
func (js *JSONStore) LoadMatchResults(limit int) ([]*MatchResult, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	if limit <= 0 || limit > len(js.data.MatchResults) {
		limit = len(js.data.MatchResults)
	}
	results := make([]*MatchResult, 0, limit)
	for i := len(js.data.MatchResults) - 1; i >= 0 && len(results) < limit; i-- {
		results = append(results, js.data.MatchResults[i])
	}
	return results, nil
}

// SaveLevel upserts a level definition and flushes.
func (js *JSONStore) SaveLevel(def grid.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	js.mutex.Lock()
	defer js.mutex.Unlock()
	js.data.Levels[def.ID] = def
	return js.saveToFile()
}

// LoadLevel fetches one stored level definition by id.
func (js *JSONStore) LoadLevel(id string) (grid.Definition, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	def, exists := js.data.Levels[id]
	if !exists {
		return grid.Definition{}, fmt.Errorf("level %s not found", id)
	}
	return def, nil
}

// LoadLevels fetches every stored level definition.
func (js *JSONStore) LoadLevels() ([]grid.Definition, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	defs := make([]grid.Definition, 0, len(js.data.Levels))
	for _, def := range js.data.Levels {
		defs = append(defs, def)
	}
	return defs, nil
}

// Close is a no-op; every write already flushed.
func (js *JSONStore) Close() error {
	return nil
}
