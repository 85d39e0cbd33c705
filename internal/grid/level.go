package grid

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// EnemySpawn groups enemy placements of one behavior type.
type EnemySpawn struct {
	Type      string  `json:"type"`
	Positions []Point `json:"positions"`
}

// Definition describes a level as authored in config/levels.json. Wall lists
// are optional: when absent they are generated deterministically from the
// level id so every process building the same definition gets the same map.
type Definition struct {
	ID             string       `json:"id"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	PlayerStarts   []Point      `json:"player_starts"`
	ExitPosition   Point        `json:"exit_position"`
	ExtraHardWalls []Point      `json:"extra_hard_walls,omitempty"`
	HardWalls      []Point      `json:"hard_walls,omitempty"`
	BreakableWalls []Point      `json:"breakable_walls,omitempty"`
	EnemySpawns    []EnemySpawn `json:"enemy_spawns,omitempty"`
}

const (
	defaultLevelWidth  = 11
	defaultLevelHeight = 9

	// Tiles within this Manhattan radius of a player start never receive
	// generated walls, so spawns are always playable.
	spawnSafeRadius = 2

	maxGeneratedHardWalls = 3
	maxBreakableWalls     = 12
	maxTotalWalls         = 15
)

// Validate rejects definitions the builder cannot place.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("level definition missing id")
	}
	if d.Width < 5 || d.Height < 5 {
		return fmt.Errorf("level %s: dimensions %dx%d too small", d.ID, d.Width, d.Height)
	}
	if len(d.PlayerStarts) == 0 {
		return fmt.Errorf("level %s: no player starts", d.ID)
	}
	for _, p := range d.PlayerStarts {
		if p.X <= 0 || p.X >= d.Width-1 || p.Y <= 0 || p.Y >= d.Height-1 {
			return fmt.Errorf("level %s: player start %v outside playable area", d.ID, p)
		}
	}
	return nil
}

// Build materializes the definition into a fresh Grid.
func (d Definition) Build() (*Grid, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	tiles := make([]Tile, d.Width*d.Height)
	set := func(p Point, t Tile) {
		if p.X >= 0 && p.X < d.Width && p.Y >= 0 && p.Y < d.Height {
			tiles[p.Y*d.Width+p.X] = t
		}
	}
	at := func(p Point) Tile {
		return tiles[p.Y*d.Width+p.X]
	}

	// Border rows plus the even-coordinate pillar lattice.
	for x := 0; x < d.Width; x++ {
		set(Point{X: x, Y: 0}, TileHardWall)
		set(Point{X: x, Y: d.Height - 1}, TileHardWall)
	}
	for x := 0; x < d.Width; x += 2 {
		for y := 2; y < d.Height-1; y += 2 {
			set(Point{X: x, Y: y}, TileHardWall)
		}
	}
	for _, p := range d.ExtraHardWalls {
		set(p, TileHardWall)
	}

	hard := d.HardWalls
	breakable := d.BreakableWalls
	if len(hard) == 0 && len(breakable) == 0 {
		hard, breakable = d.generateWalls(tiles)
	}
	for _, p := range hard {
		if at(p) == TileEmpty {
			set(p, TileHardWall)
		}
	}
	for _, p := range breakable {
		if at(p) == TileEmpty {
			set(p, TileBreakableWall)
		}
	}

	exit := d.ExitPosition
	if exit.X > 0 && exit.X < d.Width-1 && exit.Y > 0 && exit.Y < d.Height-1 {
		if t := at(exit); t == TileEmpty || t == TileBreakableWall {
			set(exit, TileExit)
		} else {
			return nil, fmt.Errorf("level %s: exit position %v blocked by %s", d.ID, exit, t)
		}
	}

	return New(d.Width, d.Height, tiles), nil
}

// generateWalls deterministically places hard and breakable walls on empty
// tiles, excluding the safe radius around player starts. The wall budget
// scales with the level number embedded in the id.
func (d Definition) generateWalls(tiles []Tile) (hard, breakable []Point) {
	number := d.levelNumber()
	rng := rand.New(rand.NewSource(d.seed()))

	available := make([]Point, 0, d.Width*d.Height)
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if tiles[y*d.Width+x] != TileEmpty {
				continue
			}
			p := Point{X: x, Y: y}
			if d.nearPlayerStart(p) || p == d.ExitPosition || d.onEnemySpawn(p) {
				continue
			}
			available = append(available, p)
		}
	}
	rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	hardCount := (number - 1) / 2
	if hardCount > maxGeneratedHardWalls {
		hardCount = maxGeneratedHardWalls
	}
	if hardCount < 0 {
		hardCount = 0
	}
	breakableCount := 8 + (number - 1)
	if breakableCount > maxBreakableWalls {
		breakableCount = maxBreakableWalls
	}
	if breakableCount > maxTotalWalls-hardCount {
		breakableCount = maxTotalWalls - hardCount
	}

	for i := 0; i < hardCount && len(available) > 0; i++ {
		hard = append(hard, available[0])
		available = available[1:]
	}
	for i := 0; i < breakableCount && len(available) > 0; i++ {
		breakable = append(breakable, available[0])
		available = available[1:]
	}
	return hard, breakable
}

// onEnemySpawn keeps generated walls off the tiles enemies spawn on.
func (d Definition) onEnemySpawn(p Point) bool {
	for _, spawn := range d.EnemySpawns {
		for _, pos := range spawn.Positions {
			if pos == p {
				return true
			}
		}
	}
	return false
}

func (d Definition) nearPlayerStart(p Point) bool {
	for _, start := range d.PlayerStarts {
		if ManhattanDistance(p, start) <= spawnSafeRadius {
			return true
		}
	}
	return false
}

// seed derives the generation seed from the level id, so the same id always
// yields the same walls within any process.
func (d Definition) seed() int64 {
	sum := md5.Sum([]byte(d.ID))
	return int64(binary.BigEndian.Uint64(sum[:8]) % (1 << 31))
}

// levelNumber extracts the trailing integer of ids like "level_3".
func (d Definition) levelNumber() int {
	idx := strings.LastIndex(d.ID, "_")
	if idx < 0 || idx == len(d.ID)-1 {
		return 1
	}
	n, err := strconv.Atoi(d.ID[idx+1:])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// LoadDefinitions parses a level file (a JSON array of definitions).
func LoadDefinitions(r io.Reader) ([]Definition, error) {
	var defs []Definition
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("decode level definitions: %w", err)
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// BuiltinDefinitions returns the levels shipped with the server, used when no
// level file is configured.
func BuiltinDefinitions() []Definition {
	return []Definition{
		{
			ID:           "level_1",
			Width:        defaultLevelWidth,
			Height:       defaultLevelHeight,
			PlayerStarts: []Point{{X: 1, Y: 1}, {X: 9, Y: 1}},
			ExitPosition: Point{X: 9, Y: 7},
			EnemySpawns: []EnemySpawn{
				{Type: "static", Positions: []Point{{X: 5, Y: 5}}},
			},
		},
		{
			ID:           "level_2",
			Width:        defaultLevelWidth,
			Height:       defaultLevelHeight,
			PlayerStarts: []Point{{X: 1, Y: 1}, {X: 9, Y: 1}},
			ExitPosition: Point{X: 1, Y: 7},
			EnemySpawns: []EnemySpawn{
				{Type: "static", Positions: []Point{{X: 5, Y: 3}}},
				{Type: "chasing", Positions: []Point{{X: 7, Y: 5}}},
			},
		},
		{
			ID:           "level_3",
			Width:        defaultLevelWidth,
			Height:       defaultLevelHeight,
			PlayerStarts: []Point{{X: 1, Y: 1}, {X: 9, Y: 7}},
			ExitPosition: Point{X: 5, Y: 7},
			EnemySpawns: []EnemySpawn{
				{Type: "chasing", Positions: []Point{{X: 3, Y: 5}}},
				{Type: "smart", Positions: []Point{{X: 7, Y: 3}}},
			},
		},
	}
}

// FindDefinition looks a level up among the given definitions.
func FindDefinition(defs []Definition, id string) (Definition, bool) {
	for _, def := range defs {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}
