package grid

import (
	"errors"
	"fmt"
	"strings"

	"gridmdp/meta"
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrGenerationFailed = errors.New("map generation failed")
	ErrInvalidAction    = errors.New("invalid action")
)

// Params are the MDP parameters shared by every tile of a grid.
type Params struct {
	Discount     float64 // Discount factor in (0, 1]
	Noise        float64 // Probability mass split across the two slip directions
	LivingReward float64 // Reward per non-terminal transition
}

// DefaultParams returns the parameters the gridworld is usually solved with.
func DefaultParams() Params {
	return Params{
		Discount:     meta.Discount,
		Noise:        meta.Noise,
		LivingReward: meta.LivingReward,
	}
}

func (p Params) Validate() error {
	if p.Discount <= 0 || p.Discount > 1 {
		return fmt.Errorf("%w: discount %v outside (0, 1]", ErrInvalidConfig, p.Discount)
	}
	if p.Noise < 0 || p.Noise > 1 {
		return fmt.Errorf("%w: noise %v outside [0, 1]", ErrInvalidConfig, p.Noise)
	}
	return nil
}

// Grid is a rows x cols lattice of tiles stored row-major. The tile set is
// fixed at construction; solvers own the grid while they run.
type Grid struct {
	rows   int
	cols   int
	tiles  []*Tile
	params Params
}

func newGrid(rows, cols int, params Params) *Grid {
	g := &Grid{
		rows:   rows,
		cols:   cols,
		tiles:  make([]*Tile, 0, rows*cols),
		params: params,
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.tiles = append(g.tiles, newTile(r, c))
		}
	}
	return g
}

// FromRows builds a grid from one string per row using '.' for walkable
// tiles, '#' for walls, '+' for diamonds and '-' for pits. The result must
// satisfy the same invariants as a generated grid.
func FromRows(rows []string, params Params) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidConfig)
	}
	g := newGrid(len(rows), len(rows[0]), params)
	for r, line := range rows {
		if len(line) != g.cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidConfig, r, len(line), g.cols)
		}
		for c := 0; c < len(line); c++ {
			t := g.Tile(r, c)
			switch line[c] {
			case '.':
			case '#':
				t.setWall()
			case '+':
				t.setDiamond()
			case '-':
				t.setPit()
			default:
				return nil, fmt.Errorf("%w: unknown tile %q at %v", ErrInvalidConfig, line[c], t.Coord())
			}
		}
	}
	if g.Count(Diamond) == 0 || g.Count(Pit) == 0 {
		return nil, fmt.Errorf("%w: layout needs at least one diamond and one pit", ErrInvalidConfig)
	}
	if !g.IsConnected() {
		return nil, fmt.Errorf("%w: layout has tiles unreachable from a terminal", ErrInvalidConfig)
	}
	return g, nil
}

func (g *Grid) Rows() int      { return g.rows }
func (g *Grid) Cols() int      { return g.cols }
func (g *Grid) Params() Params { return g.params }

// Tiles returns every tile in row-major order.
func (g *Grid) Tiles() []*Tile {
	return g.tiles
}

// Tile returns the tile at (row, col), or nil when out of bounds.
func (g *Grid) Tile(row, col int) *Tile {
	if !g.InBounds(row, col) {
		return nil
	}
	return g.tiles[row*g.cols+col]
}

func (g *Grid) At(c Coord) *Tile {
	return g.Tile(c.Row, c.Col)
}

func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.rows && col < g.cols
}

// Walkable returns the MDP's non-terminal states in row-major order.
func (g *Grid) Walkable() []*Tile {
	walkable := []*Tile{}
	for _, t := range g.tiles {
		if t.IsWalkable() {
			walkable = append(walkable, t)
		}
	}
	return walkable
}

func (g *Grid) Terminals() []*Tile {
	terminals := []*Tile{}
	for _, t := range g.tiles {
		if t.IsTerminal() {
			terminals = append(terminals, t)
		}
	}
	return terminals
}

// Count returns the number of tiles in the given state.
func (g *Grid) Count(s State) int {
	n := 0
	for _, t := range g.tiles {
		if t.State == s {
			n++
		}
	}
	return n
}

// Neighbor is the deterministic move function. Boundaries and walls bounce
// the agent back onto the tile it started from.
func (g *Grid) Neighbor(t *Tile, a Action) (*Tile, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	d := offsets[a]
	next := g.Tile(t.Row+d.Row, t.Col+d.Col)
	if next == nil || next.IsWall() {
		return t, nil
	}
	return next, nil
}

// Wipe clears solver output from walkable tiles. Terminals and walls are
// left untouched.
func (g *Grid) Wipe() {
	for _, t := range g.tiles {
		if t.IsWalkable() {
			t.reset()
		}
	}
}

func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			b.WriteByte(g.Tile(r, c).State.Symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
