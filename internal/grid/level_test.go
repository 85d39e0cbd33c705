package grid

import (
	"strings"
	"testing"
)

func baseDefinition() Definition {
	return Definition{
		ID:           "level_1",
		Width:        11,
		Height:       9,
		PlayerStarts: []Point{{X: 1, Y: 1}, {X: 9, Y: 1}},
		ExitPosition: Point{X: 9, Y: 7},
	}
}

func TestBuildPlacesBordersAndPillars(t *testing.T) {
	g, err := baseDefinition().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for x := 0; x < g.Width(); x++ {
		if g.TileAt(x, 0) != TileHardWall {
			t.Fatalf("top border open at x=%d", x)
		}
		if g.TileAt(x, g.Height()-1) != TileHardWall {
			t.Fatalf("bottom border open at x=%d", x)
		}
	}
	for x := 0; x < g.Width(); x += 2 {
		for y := 2; y < g.Height()-1; y += 2 {
			if g.TileAt(x, y) != TileHardWall {
				t.Fatalf("missing pillar at (%d,%d)", x, y)
			}
		}
	}
	if g.TileAt(9, 7) != TileExit {
		t.Fatalf("exit not placed, got %v", g.TileAt(9, 7))
	}
}

func TestBuildKeepsPlayerStartsClear(t *testing.T) {
	def := baseDefinition()
	g, err := def.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, start := range def.PlayerStarts {
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				tile := g.TileAt(x, y)
				if tile != TileBreakableWall {
					continue
				}
				if ManhattanDistance(Point{X: x, Y: y}, start) <= spawnSafeRadius {
					t.Fatalf("generated wall at (%d,%d) inside safe radius of %v", x, y, start)
				}
			}
		}
	}
}

func TestBuildIsDeterministicPerLevelID(t *testing.T) {
	def := baseDefinition()
	first, err := def.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := def.Build()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	for y := 0; y < first.Height(); y++ {
		for x := 0; x < first.Width(); x++ {
			if first.TileAt(x, y) != second.TileAt(x, y) {
				t.Fatalf("layout differs at (%d,%d)", x, y)
			}
		}
	}

	other := def
	other.ID = "level_7"
	third, err := other.Build()
	if err != nil {
		t.Fatalf("build level_7: %v", err)
	}
	same := true
	for y := 0; y < first.Height() && same; y++ {
		for x := 0; x < first.Width(); x++ {
			if first.TileAt(x, y) != third.TileAt(x, y) {
				same = false
				break
			}
		}
	}
	if same {
		t.Fatalf("different level ids should generally produce different walls")
	}
}

func TestBuildRejectsBlockedExit(t *testing.T) {
	def := baseDefinition()
	def.ExitPosition = Point{X: 3, Y: 5}
	def.ExtraHardWalls = []Point{{X: 3, Y: 5}}
	if _, err := def.Build(); err == nil {
		t.Fatalf("expected error for exit on a hard wall")
	}
}

func TestValidateRejectsBadDefinitions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"missing id", func(d *Definition) { d.ID = "" }},
		{"too small", func(d *Definition) { d.Width = 3 }},
		{"no starts", func(d *Definition) { d.PlayerStarts = nil }},
		{"start on border", func(d *Definition) { d.PlayerStarts = []Point{{X: 0, Y: 1}} }},
	}
	for _, tc := range cases {
		def := baseDefinition()
		tc.mutate(&def)
		if err := def.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadDefinitions(t *testing.T) {
	payload := `[{
		"id": "level_1",
		"width": 11,
		"height": 9,
		"player_starts": [{"x": 1, "y": 1}],
		"exit_position": {"x": 9, "y": 7},
		"enemy_spawns": [{"type": "static", "positions": [{"x": 5, "y": 5}]}]
	}]`
	defs, err := LoadDefinitions(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "level_1" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
	if len(defs[0].EnemySpawns) != 1 || defs[0].EnemySpawns[0].Type != "static" {
		t.Fatalf("enemy spawns not parsed: %+v", defs[0].EnemySpawns)
	}

	if _, err := LoadDefinitions(strings.NewReader(`[{"id": ""}]`)); err == nil {
		t.Fatalf("invalid definition should fail to load")
	}
}

func TestBuiltinDefinitionsBuild(t *testing.T) {
	for _, def := range BuiltinDefinitions() {
		if _, err := def.Build(); err != nil {
			t.Fatalf("builtin %s: %v", def.ID, err)
		}
	}
}

func TestFindDefinition(t *testing.T) {
	defs := BuiltinDefinitions()
	if _, ok := FindDefinition(defs, "level_2"); !ok {
		t.Fatalf("level_2 should exist")
	}
	if _, ok := FindDefinition(defs, "level_99"); ok {
		t.Fatalf("level_99 should not exist")
	}
}
