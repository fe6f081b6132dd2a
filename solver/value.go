package solver

import (
	"fmt"
	"math"
	"time"

	"gridmdp/grid"
	"gridmdp/mdp"
	"gridmdp/utils"

	"github.com/rs/zerolog/log"
)

// ValueIteration computes the optimal value function with synchronous
// Bellman backups: every action value of a sweep is computed from the
// previous sweep's utilities before any utility is overwritten.
type ValueIteration struct {
	settings
	grid      *grid.Grid
	model     *mdp.Model
	sweeper   *sweeper
	status    Status
	residuals []float64
}

func NewValueIteration(g *grid.Grid, options ...Option) (*ValueIteration, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	return &ValueIteration{
		settings: s,
		grid:     g,
		model:    mdp.New(g),
		sweeper:  newSweeper(g.Walkable(), s.goroutines),
		status:   Sweeping,
	}, nil
}

func (v *ValueIteration) Status() Status {
	return v.status
}

// Residuals returns the Bellman residual of every sweep so far.
func (v *ValueIteration) Residuals() []float64 {
	return v.residuals
}

// Sweep performs one synchronous sweep and returns its Bellman residual.
func (v *ValueIteration) Sweep() (float64, error) {
	err := v.sweeper.each(func(_ int, t *grid.Tile) error {
		for _, a := range grid.Actions {
			q, err := v.model.ExpectedUtility(t, a)
			if err != nil {
				return err
			}
			t.ActionValues[a] = q
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	delta, err := v.sweeper.max(func(_ int, t *grid.Tile) (float64, error) {
		best, utility := utils.ArgMax(t.ActionValues[:])
		diff := math.Abs(t.Utility - utility)
		t.Utility = utility
		t.Direction = grid.Action(best)
		return diff, nil
	})
	if err != nil {
		return 0, err
	}

	v.residuals = append(v.residuals, delta)
	v.metrics.AddSweep(delta)
	v.metrics.AddBackups(len(v.sweeper.tiles) * grid.NumActions)
	if delta < v.theta {
		v.status = Converged
	}
	return delta, nil
}

// Run sweeps until the residual drops below theta, starting over from the
// utilities currently on the grid. When the sweep budget runs out first
// ErrNotConverged is returned along with the partial result.
func (v *ValueIteration) Run() (Result, error) {
	start := time.Now()
	v.metrics.Start("value_iteration", v.goroutines, len(v.sweeper.tiles))
	v.status, v.residuals = Sweeping, nil

	for v.status == Sweeping && len(v.residuals) < v.maxSweeps {
		if _, err := v.Sweep(); err != nil {
			return v.result(start), err
		}
	}

	v.metrics.SetConverged(v.status == Converged)
	result := v.result(start)
	if v.status != Converged {
		log.Warn().Msgf("value iteration stopped after %d sweeps without converging", result.Sweeps)
		return result, fmt.Errorf("%w: %d sweeps, residual %g", ErrNotConverged, result.Sweeps, v.residuals[len(v.residuals)-1])
	}

	log.Debug().
		Int("sweeps", result.Sweeps).
		Float64("residual", v.residuals[len(v.residuals)-1]).
		Dur("duration", result.Duration).
		Msg("value iteration converged")
	return result, nil
}

func (v *ValueIteration) result(start time.Time) Result {
	return Result{
		Sweeps:    len(v.residuals),
		Residuals: v.residuals,
		Converged: v.status == Converged,
		Duration:  time.Since(start),
	}
}
