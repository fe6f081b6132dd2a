package rollout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gridmdp/grid"
	"gridmdp/mdp"
	"gridmdp/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTruncated    = errors.New("rollout exceeded the step limit")
	ErrInvalidStart = errors.New("rollout cannot start on a wall")
)

// Trajectory is a single simulated episode.
type Trajectory struct {
	Start  grid.Coord
	End    grid.Coord
	Moves  int
	Reward float64 // Living reward accrued on the way
	Return float64
}

// Estimate aggregates the returns of independent trajectories.
type Estimate struct {
	Trials    int
	Mean      float64
	StdErr    float64
	MeanMoves float64
	Duration  time.Duration
}

type Option func(e *Evaluator)

// Evaluator estimates the utility of a policy by simulating it on a grid.
type Evaluator struct {
	grid       *grid.Grid
	model      *mdp.Model
	goroutines int
	seed       uint64
	maxSteps   int
}

func NewEvaluator(g *grid.Grid, options ...Option) *Evaluator {
	e := &Evaluator{ // Default values
		grid:       g,
		model:      mdp.New(g),
		goroutines: meta.Goroutines,
		seed:       uint64(time.Now().UnixNano()),
		maxSteps:   meta.MaxRolloutSteps,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func WithGoroutines(goroutines int) Option {
	return func(e *Evaluator) {
		if goroutines > 0 {
			e.goroutines = goroutines
		}
	}
}

// WithSeed fixes the base seed. Worker i draws from seed+i.
func WithSeed(seed uint64) Option {
	return func(e *Evaluator) {
		e.seed = seed
	}
}

func WithMaxSteps(steps int) Option {
	return func(e *Evaluator) {
		if steps > 0 {
			e.maxSteps = steps
		}
	}
}

// Trajectory follows policy from start until a terminal is reached. The
// return is the accrued living reward plus the terminal utility discounted
// by the number of moves. Starting on a terminal yields its utility.
func (e *Evaluator) Trajectory(start *grid.Tile, policy mdp.Policy, rng *rand.Rand) (Trajectory, error) {
	if start.IsWall() {
		return Trajectory{}, fmt.Errorf("%w: %v", ErrInvalidStart, start.Coord())
	}

	params := e.model.Params()
	tile, moves, reward := start, 0, 0.0
	for !tile.IsTerminal() {
		if moves >= e.maxSteps {
			return Trajectory{}, fmt.Errorf("%w: %d moves from %v", ErrTruncated, moves, start.Coord())
		}
		a, err := policy.Action(tile)
		if err != nil {
			return Trajectory{}, err
		}
		next, err := e.model.Sample(tile, a, rng.Float64())
		if err != nil {
			return Trajectory{}, err
		}
		reward += params.LivingReward
		moves++
		tile = next
	}

	return Trajectory{
		Start:  start.Coord(),
		End:    tile.Coord(),
		Moves:  moves,
		Reward: reward,
		Return: reward + math.Pow(params.Discount, float64(moves))*tile.Utility,
	}, nil
}

// Estimate runs k independent trajectories from start across the
// evaluator's goroutines and summarises their returns.
func (e *Evaluator) Estimate(start *grid.Tile, policy mdp.Policy, k int) (Estimate, error) {
	if k <= 0 {
		return Estimate{}, fmt.Errorf("%w: %d trials", grid.ErrInvalidConfig, k)
	}
	if err := policy.Validate(e.grid); err != nil {
		return Estimate{}, err
	}

	begin := time.Now()
	returns := make([]float64, k)
	moves := make([]float64, k)

	task := make(chan int, k)
	for i := 0; i < k; i++ {
		task <- i
	}
	close(task)

	group, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < min(e.goroutines, k); w++ {
		rng := rand.New(rand.NewSource(e.seed + uint64(w)))
		group.Go(func() error {
			for i := range task {
				if ctx.Err() != nil {
					return nil
				}
				trajectory, err := e.Trajectory(start, policy, rng)
				if err != nil {
					return err
				}
				returns[i] = trajectory.Return
				moves[i] = float64(trajectory.Moves)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Estimate{}, err
	}

	mean, std := stat.MeanStdDev(returns, nil)
	stderr := 0.0
	if k > 1 {
		stderr = stat.StdErr(std, float64(k))
	}
	meanMoves := stat.Mean(moves, nil)
	estimate := Estimate{
		Trials:    k,
		Mean:      mean,
		StdErr:    stderr,
		MeanMoves: meanMoves,
		Duration:  time.Since(begin),
	}
	log.Debug().
		Str("start", start.Coord().String()).
		Int("trials", k).
		Float64("mean", mean).
		Float64("stderr", stderr).
		Msg("rollout estimate")
	return estimate, nil
}
