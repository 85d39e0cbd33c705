package sim

import "blast-arena/server/internal/grid"

// Player mirrors the authoritative player state exposed to transport.
type Player struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Pos          grid.Point `json:"pos"`
	Health       int        `json:"health"`
	Alive        bool       `json:"alive"`
	Ready        bool       `json:"ready"`
	ReachedExit  bool       `json:"reachedExit"`
	BombCapacity int        `json:"bombCapacity"`
	BombPower    int        `json:"bombPower"`
	Speed        int        `json:"speed"`
}

// Bomb mirrors an armed or lingering bomb.
type Bomb struct {
	Owner      string       `json:"owner"`
	Pos        grid.Point   `json:"pos"`
	FuseTicks  int          `json:"fuseTicks"`
	Exploded   bool         `json:"exploded"`
	BlastTiles []grid.Point `json:"blastTiles,omitempty"`
}

// Enemy mirrors an AI-controlled entity.
type Enemy struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	Pos    grid.Point `json:"pos"`
	Health int        `json:"health"`
	Alive  bool       `json:"alive"`
}

// Snapshot is the immutable room view published after each committed tick.
type Snapshot struct {
	RoomID         string       `json:"roomId"`
	Tick           uint64       `json:"tick"`
	Started        bool         `json:"started"`
	GameOver       bool         `json:"gameOver,omitempty"`
	LevelComplete  bool         `json:"levelComplete,omitempty"`
	Players        []Player     `json:"players"`
	Bombs          []Bomb       `json:"bombs,omitempty"`
	Enemies        []Enemy      `json:"enemies,omitempty"`
	DestroyedWalls []grid.Point `json:"destroyedWalls,omitempty"`
}
