package grid

// Tile enumerates the cell types a level is built from.
type Tile uint8

const (
	TileEmpty Tile = iota
	TileHardWall
	TileBreakableWall
	TileExit
)

func (t Tile) String() string {
	switch t {
	case TileEmpty:
		return "empty"
	case TileHardWall:
		return "hard_wall"
	case TileBreakableWall:
		return "breakable_wall"
	case TileExit:
		return "exit"
	default:
		return "unknown"
	}
}

// MoverClass distinguishes what is trying to enter a tile. Blast rays may
// reach into breakable walls; walkers may not.
type MoverClass uint8

const (
	MoverWalker MoverClass = iota
	MoverExplosion
)

// Point is a grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManhattanDistance returns the L1 distance between two points.
func ManhattanDistance(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid pairs an immutable base layout with a destructibility overlay. Broken
// walls never come back for the lifetime of the grid.
type Grid struct {
	width  int
	height int
	base   []Tile
	broken map[Point]struct{}

	// Walls broken since the last DrainDestroyed call, in break order.
	newlyBroken []Point
}

// New builds a grid from a row-major tile slice. The slice is copied.
func New(width, height int, tiles []Tile) *Grid {
	base := make([]Tile, width*height)
	copy(base, tiles)
	return &Grid{
		width:  width,
		height: height,
		base:   base,
		broken: make(map[Point]struct{}),
	}
}

// Width reports the horizontal tile count.
func (g *Grid) Width() int { return g.width }

// Height reports the vertical tile count.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether the coordinate lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// TileAt returns the effective tile, accounting for broken walls.
// Out-of-bounds coordinates read as hard wall so callers need no separate
// bounds check.
func (g *Grid) TileAt(x, y int) Tile {
	if !g.InBounds(x, y) {
		return TileHardWall
	}
	tile := g.base[y*g.width+x]
	if tile == TileBreakableWall {
		if _, ok := g.broken[Point{X: x, Y: y}]; ok {
			return TileEmpty
		}
	}
	return tile
}

// CanEnter reports whether a mover of the given class may occupy the tile.
func (g *Grid) CanEnter(x, y int, mover MoverClass) bool {
	if !g.InBounds(x, y) {
		return false
	}
	switch g.TileAt(x, y) {
	case TileEmpty, TileExit:
		return true
	case TileBreakableWall:
		return mover == MoverExplosion
	default:
		return false
	}
}

// BreakWall converts a breakable wall to empty. It is idempotent and a no-op
// for every other tile type. Returns true when a wall was broken by this call.
func (g *Grid) BreakWall(x, y int) bool {
	if g.TileAt(x, y) != TileBreakableWall {
		return false
	}
	p := Point{X: x, Y: y}
	g.broken[p] = struct{}{}
	g.newlyBroken = append(g.newlyBroken, p)
	return true
}

// DrainDestroyed returns the walls broken since the previous call.
func (g *Grid) DrainDestroyed() []Point {
	if len(g.newlyBroken) == 0 {
		return nil
	}
	drained := g.newlyBroken
	g.newlyBroken = nil
	return drained
}

// BrokenCount reports how many walls have been destroyed in total.
func (g *Grid) BrokenCount() int { return len(g.broken) }

// RestoreOverlay rewinds the destructibility overlay to an earlier size.
// Walls are broken strictly append-only, so truncating the break log is
// enough to undo a partially applied tick.
func (g *Grid) RestoreOverlay(brokenCount int, pendingDrain []Point) {
	for len(g.broken) > brokenCount {
		last := g.newlyBroken[len(g.newlyBroken)-1]
		g.newlyBroken = g.newlyBroken[:len(g.newlyBroken)-1]
		delete(g.broken, last)
	}
	g.newlyBroken = append([]Point(nil), pendingDrain...)
}

// PendingDestroyed copies the not-yet-drained break log.
func (g *Grid) PendingDestroyed() []Point {
	if len(g.newlyBroken) == 0 {
		return nil
	}
	return append([]Point(nil), g.newlyBroken...)
}
