package grid

import "fmt"

// State is the kind of a tile.
type State int

const (
	Walkable State = iota
	Wall
	Diamond
	Pit
)

const (
	DiamondReward = 1.0
	PitReward     = -1.0
)

var stateSymbols = []byte{Walkable: '.', Wall: '#', Diamond: '+', Pit: '-'}

func (s State) String() string {
	switch s {
	case Walkable:
		return "walkable"
	case Wall:
		return "wall"
	case Diamond:
		return "diamond"
	case Pit:
		return "pit"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Symbol is the single character used by FromRows and Grid.String.
func (s State) Symbol() byte {
	if s < Walkable || s > Pit {
		return '?'
	}
	return stateSymbols[s]
}

// Coord addresses a tile by row and column.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

// Tile is a single cell of the grid. Utility, ActionValues and Direction are
// written by solvers on walkable tiles only; terminals keep their reward as
// utility for their whole lifetime.
type Tile struct {
	Row          int
	Col          int
	State        State
	Utility      float64             // V(s)
	ActionValues [NumActions]float64 // Q(s, a) indexed by Action
	Direction    Action              // Greedy or assigned action
}

func newTile(row, col int) *Tile {
	return &Tile{Row: row, Col: col, State: Walkable, Direction: Up}
}

func (t *Tile) Coord() Coord {
	return Coord{Row: t.Row, Col: t.Col}
}

func (t *Tile) IsWalkable() bool { return t.State == Walkable }
func (t *Tile) IsWall() bool     { return t.State == Wall }
func (t *Tile) IsDiamond() bool  { return t.State == Diamond }
func (t *Tile) IsPit() bool      { return t.State == Pit }

// IsTerminal reports whether the tile absorbs the agent.
func (t *Tile) IsTerminal() bool {
	return t.State == Diamond || t.State == Pit
}

func (t *Tile) reset() {
	t.Utility = 0
	t.ActionValues = [NumActions]float64{}
	t.Direction = Up
}

func (t *Tile) setDiamond() {
	t.State = Diamond
	t.Utility = DiamondReward
}

func (t *Tile) setPit() {
	t.State = Pit
	t.Utility = PitReward
}

func (t *Tile) setWall() {
	t.State = Wall
}

func (t *Tile) setWalkable() {
	t.State = Walkable
}
