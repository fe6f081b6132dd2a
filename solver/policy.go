package solver

import (
	"math"
	"time"

	"gridmdp/grid"
	"gridmdp/mdp"
	"gridmdp/utils"

	"github.com/rs/zerolog/log"
)

// PolicyIteration alternates policy evaluation and greedy improvement on an
// explicit policy stored in the walkable tiles' directions.
type PolicyIteration struct {
	settings
	grid      *grid.Grid
	model     *mdp.Model
	sweeper   *sweeper
	next      []float64 // Utilities computed during an evaluation sweep
	sweeps    int
	residuals []float64
}

// NewPolicyIteration validates policy against g and loads it. A policy that
// misses a walkable tile is rejected with mdp.ErrMissingPolicyEntry.
func NewPolicyIteration(g *grid.Grid, policy mdp.Policy, options ...Option) (*PolicyIteration, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	walkable := g.Walkable()
	p := &PolicyIteration{
		settings: s,
		grid:     g,
		model:    mdp.New(g),
		sweeper:  newSweeper(walkable, s.goroutines),
		next:     make([]float64, len(walkable)),
	}
	if err := p.Load(policy); err != nil {
		return nil, err
	}
	return p, nil
}

// Load replaces the current policy.
func (p *PolicyIteration) Load(policy mdp.Policy) error {
	if err := policy.Validate(p.grid); err != nil {
		return err
	}
	for _, t := range p.sweeper.tiles {
		t.Direction = policy[t.Coord()]
	}
	return nil
}

// Policy returns the policy currently held by the tiles.
func (p *PolicyIteration) Policy() mdp.Policy {
	return mdp.Extract(p.grid)
}

// Evaluate updates utilities towards the value of the current policy until
// the residual drops below theta or the sweep budget is spent. It returns
// the number of sweeps and the last residual.
func (p *PolicyIteration) Evaluate() (int, float64, error) {
	sweeps, delta := 0, math.Inf(1)
	for sweeps < p.maxEvaluationSweeps {
		err := p.sweeper.each(func(i int, t *grid.Tile) error {
			u, err := p.model.ExpectedUtility(t, t.Direction)
			p.next[i] = u
			return err
		})
		if err != nil {
			return sweeps, delta, err
		}

		delta, err = p.sweeper.max(func(i int, t *grid.Tile) (float64, error) {
			diff := math.Abs(t.Utility - p.next[i])
			t.Utility = p.next[i]
			return diff, nil
		})
		if err != nil {
			return sweeps, delta, err
		}

		sweeps++
		p.metrics.AddSweep(delta)
		p.metrics.AddBackups(len(p.sweeper.tiles))
		if delta < p.theta {
			break
		}
	}
	p.sweeps += sweeps
	p.residuals = append(p.residuals, delta)
	return sweeps, delta, nil
}

// Improve makes every tile greedy with respect to the current utilities and
// reports whether any direction changed. A tile only switches when the best
// action differs from its current one and is strictly better by value, so
// equally good actions never flap.
func (p *PolicyIteration) Improve() (bool, error) {
	changed, err := p.sweeper.max(func(_ int, t *grid.Tile) (float64, error) {
		for _, a := range grid.Actions {
			q, err := p.model.ExpectedUtility(t, a)
			if err != nil {
				return 0, err
			}
			t.ActionValues[a] = q
		}
		best, value := utils.ArgMax(t.ActionValues[:])
		current := t.Direction
		if grid.Action(best) != current && p.differs(value, t.ActionValues[current]) {
			t.Direction = grid.Action(best)
			return 1, nil
		}
		return 0, nil
	})
	if err != nil {
		return false, err
	}
	p.metrics.AddBackups(len(p.sweeper.tiles) * grid.NumActions)
	return changed > 0, nil
}

func (p *PolicyIteration) differs(best, current float64) bool {
	if p.tolerance > 0 {
		return math.Abs(best-current) > p.tolerance
	}
	return best != current
}

// Run alternates evaluation and improvement until the policy is stable or
// the iteration budget is spent. Running out of iterations is not an error;
// Result.Converged reports whether the policy was stable.
func (p *PolicyIteration) Run() (Result, error) {
	start := time.Now()
	p.metrics.Start("policy_iteration", p.goroutines, len(p.sweeper.tiles))
	p.sweeps, p.residuals = 0, nil

	iterations, stable := 0, false
	for iterations < p.maxIterations {
		if _, _, err := p.Evaluate(); err != nil {
			return p.result(start, iterations, false), err
		}
		changed, err := p.Improve()
		if err != nil {
			return p.result(start, iterations, false), err
		}
		iterations++
		p.metrics.AddIteration()
		if !changed {
			stable = true
			break
		}
	}

	p.metrics.SetConverged(stable)
	result := p.result(start, iterations, stable)
	if !stable {
		log.Warn().Msgf("policy iteration stopped after %d iterations with an unstable policy", iterations)
	} else {
		log.Debug().
			Int("iterations", iterations).
			Int("sweeps", result.Sweeps).
			Dur("duration", result.Duration).
			Msg("policy iteration converged")
	}
	return result, nil
}

func (p *PolicyIteration) result(start time.Time, iterations int, stable bool) Result {
	return Result{
		Sweeps:     p.sweeps,
		Iterations: iterations,
		Residuals:  p.residuals,
		Converged:  stable,
		Duration:   time.Since(start),
	}
}
