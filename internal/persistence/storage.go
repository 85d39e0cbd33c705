package persistence

import (
	"time"

	"blast-arena/server/internal/grid"
)

// MatchPlayer records one seat's outcome in a finished match.
type MatchPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Survived    bool   `json:"survived"`
	ReachedExit bool   `json:"reachedExit"`
}

// MatchResult is the durable record of a finished match.
type MatchResult struct {
	RoomID     string        `json:"roomId"`
	LevelID    string        `json:"levelId"`
	Outcome    string        `json:"outcome"` // "level_complete" or "game_over"
	Ticks      uint64        `json:"ticks"`
	Players    []MatchPlayer `json:"players"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// Storage persists match results and custom level definitions. Both backends
// are safe for concurrent use.
type Storage interface {
	SaveMatchResult(result *MatchResult) error
	LoadMatchResults(limit int) ([]*MatchResult, error)
	SaveLevel(def grid.Definition) error
	LoadLevel(id string) (grid.Definition, error)
	LoadLevels() ([]grid.Definition, error)
	Close() error
}
