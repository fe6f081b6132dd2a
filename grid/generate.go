package grid

import (
	"fmt"
	"math"
	"time"

	"gridmdp/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Layout describes how to build a grid. Ratios are percents of the cell count.
type Layout struct {
	Rows       int
	Cols       int
	Randomized bool
	GoalRatio  float64 // Percent of cells allocated as diamond/pit pairs
	WallRatio  float64 // Percent of cells allocated as walls
}

// DefaultLayout returns a layout with the usual goal and wall ratios.
func DefaultLayout(rows, cols int, randomized bool) Layout {
	return Layout{
		Rows:       rows,
		Cols:       cols,
		Randomized: randomized,
		GoalRatio:  meta.GoalRatio,
		WallRatio:  meta.WallRatio,
	}
}

func (l Layout) Validate() error {
	if l.Rows <= 0 || l.Cols <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidConfig, l.Rows, l.Cols)
	}
	if l.GoalRatio < 0 || l.GoalRatio > 100 {
		return fmt.Errorf("%w: goal ratio %v outside [0, 100]", ErrInvalidConfig, l.GoalRatio)
	}
	if l.WallRatio < 0 || l.WallRatio > 100 {
		return fmt.Errorf("%w: wall ratio %v outside [0, 100]", ErrInvalidConfig, l.WallRatio)
	}
	if !l.Randomized {
		if l.Rows < 2 || l.Cols < 3 {
			return fmt.Errorf("%w: fixed layout needs at least 2x3 tiles, got %dx%d", ErrInvalidConfig, l.Rows, l.Cols)
		}
		return nil
	}
	if pairs := l.terminalPairs(); 2*pairs >= l.Rows*l.Cols {
		return fmt.Errorf("%w: %d terminal pairs leave no walkable tile on %dx%d", ErrInvalidConfig, pairs, l.Rows, l.Cols)
	}
	return nil
}

func (l Layout) terminalPairs() int {
	pairs := int(math.Floor(float64(l.Rows*l.Cols) * l.GoalRatio / 100 / 2))
	return max(1, pairs)
}

func (l Layout) desiredWalls() int {
	return int(math.Floor(float64(l.Rows*l.Cols) * l.WallRatio / 100))
}

type Option func(gen *generator)

type generator struct {
	rng       *rand.Rand
	maxPasses int
}

// WithSeed makes randomized generation reproducible.
func WithSeed(seed uint64) Option {
	return func(gen *generator) {
		gen.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(gen *generator) {
		if rng != nil {
			gen.rng = rng
		}
	}
}

// WithMaxPasses caps the number of full scans spent placing walls.
func WithMaxPasses(passes int) Option {
	return func(gen *generator) {
		if passes > 0 {
			gen.maxPasses = passes
		}
	}
}

// Generate builds a grid from a fixed or randomized layout. Randomized grids
// always satisfy the connectivity invariant; when the wall quota cannot be
// met within the pass budget ErrGenerationFailed is returned.
func Generate(layout Layout, params Params, options ...Option) (*Grid, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	g := newGrid(layout.Rows, layout.Cols, params)
	if !layout.Randomized {
		g.Tile(0, g.cols-1).setDiamond()
		g.Tile(1, g.cols-1).setPit()
		g.Tile(1, 1).setWall()
		return g, nil
	}

	gen := &generator{maxPasses: meta.MaxWallPasses}
	for _, option := range options {
		option(gen)
	}
	if gen.rng == nil {
		gen.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	gen.spawnTerminals(g, layout.terminalPairs())
	if err := gen.spawnWalls(g, layout.desiredWalls(), layout.WallRatio); err != nil {
		return nil, err
	}

	log.Debug().
		Int("rows", g.rows).
		Int("cols", g.cols).
		Int("walls", g.Count(Wall)).
		Int("diamonds", g.Count(Diamond)).
		Int("pits", g.Count(Pit)).
		Msg("generated grid")
	return g, nil
}

func (gen *generator) spawnTerminals(g *Grid, pairs int) {
	for i := 0; i < pairs; i++ {
		g.RandomWalkable(gen.rng).setDiamond()
		g.RandomWalkable(gen.rng).setPit()
	}
}

func (gen *generator) spawnWalls(g *Grid, desired int, percent float64) error {
	placed, rejected := 0, 0
	for pass := 0; pass < gen.maxPasses; pass++ {
		if g.Count(Walkable) == 0 {
			break
		}
		for _, t := range g.tiles {
			if placed >= desired {
				return nil
			}
			if !t.IsWalkable() || gen.rng.Float64()*100 >= percent {
				continue
			}
			if g.addWallSafely(t) {
				placed++
			} else {
				rejected++
				log.Debug().Msgf("rejected wall at %v: it would disconnect the grid", t.Coord())
			}
		}
	}
	if placed >= desired {
		return nil
	}

	log.Warn().Msgf("placed %d of %d walls after %d passes (%d rejected)", placed, desired, gen.maxPasses, rejected)
	return fmt.Errorf("%w: placed %d of %d walls after %d passes", ErrGenerationFailed, placed, desired, gen.maxPasses)
}

// RandomWalkable draws tiles uniformly until a walkable one comes up. It
// returns nil when the grid has no walkable tile.
func (g *Grid) RandomWalkable(rng *rand.Rand) *Tile {
	if g.Count(Walkable) == 0 {
		return nil
	}
	for {
		t := g.Tile(rng.Intn(g.rows), rng.Intn(g.cols))
		if t.IsWalkable() {
			return t
		}
	}
}
