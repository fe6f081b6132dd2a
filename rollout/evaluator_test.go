package rollout

import (
	"math"
	"testing"

	"gridmdp/grid"
	"gridmdp/mdp"
	"gridmdp/solver"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func corridor(t *testing.T, params grid.Params) *grid.Grid {
	t.Helper()
	g, err := grid.FromRows([]string{"+..-"}, params)
	require.NoError(t, err)
	return g
}

func TestTrajectory(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("deterministic moves", func(t *testing.T) {
		g := corridor(t, grid.Params{Discount: 0.9, Noise: 0, LivingReward: -0.1})
		e := NewEvaluator(g)
		trajectory, err := e.Trajectory(g.Tile(0, 2), mdp.Uniform(g, grid.Left), rng)
		require.NoError(t, err)
		require.Equal(t, 2, trajectory.Moves)
		require.Equal(t, grid.Coord{Row: 0, Col: 0}, trajectory.End)
		require.InDelta(t, -0.2, trajectory.Reward, 1e-12)
		require.InDelta(t, -0.2+0.81, trajectory.Return, 1e-12)
	})

	t.Run("terminal start", func(t *testing.T) {
		g := corridor(t, grid.DefaultParams())
		e := NewEvaluator(g)
		trajectory, err := e.Trajectory(g.Tile(0, 3), mdp.Policy{}, rng)
		require.NoError(t, err)
		require.Zero(t, trajectory.Moves)
		require.Equal(t, grid.PitReward, trajectory.Return)
	})

	t.Run("wall start", func(t *testing.T) {
		g, err := grid.FromRows([]string{"+#.-", "...."}, grid.DefaultParams())
		require.NoError(t, err)
		_, err = NewEvaluator(g).Trajectory(g.Tile(0, 1), mdp.Uniform(g, grid.Left), rng)
		require.ErrorIs(t, err, ErrInvalidStart)
	})

	t.Run("truncated", func(t *testing.T) {
		g := corridor(t, grid.Params{Discount: 0.9, Noise: 0})
		e := NewEvaluator(g, WithMaxSteps(50))
		_, err := e.Trajectory(g.Tile(0, 1), mdp.Uniform(g, grid.Up), rng)
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("missing policy entry", func(t *testing.T) {
		g := corridor(t, grid.DefaultParams())
		policy := mdp.Uniform(g, grid.Left)
		delete(policy, grid.Coord{Row: 0, Col: 2})
		_, err := NewEvaluator(g).Trajectory(g.Tile(0, 2), policy, rng)
		require.ErrorIs(t, err, mdp.ErrMissingPolicyEntry)
	})
}

func TestEstimateConsistency(t *testing.T) {
	g, err := grid.Generate(grid.DefaultLayout(6, 6, false), grid.Params{Discount: 0.9, Noise: 0.2})
	require.NoError(t, err)
	pi, err := solver.NewPolicyIteration(g, mdp.Uniform(g, grid.Up))
	require.NoError(t, err)
	_, err = pi.Run()
	require.NoError(t, err)

	start := g.Tile(5, 0)
	e := NewEvaluator(g, WithGoroutines(4), WithSeed(7))
	estimate, err := e.Estimate(start, pi.Policy(), 10000)
	require.NoError(t, err)
	require.Equal(t, 10000, estimate.Trials)
	require.InDelta(t, start.Utility, estimate.Mean, 0.05)
	require.Less(t, estimate.StdErr, 0.01)
	require.GreaterOrEqual(t, estimate.MeanMoves, 9.0, "the pit is nine moves away")
}

func TestEstimate(t *testing.T) {
	t.Run("reproducible with one goroutine", func(t *testing.T) {
		g, err := grid.Generate(grid.DefaultLayout(6, 6, false), grid.DefaultParams())
		require.NoError(t, err)
		policy := mdp.Uniform(g, grid.Right)

		first, err := NewEvaluator(g, WithSeed(3)).Estimate(g.Tile(2, 0), policy, 200)
		require.NoError(t, err)
		second, err := NewEvaluator(g, WithSeed(3)).Estimate(g.Tile(2, 0), policy, 200)
		require.NoError(t, err)
		require.Equal(t, first.Mean, second.Mean)
		require.Equal(t, first.StdErr, second.StdErr)
		require.Equal(t, first.MeanMoves, second.MeanMoves)
	})

	t.Run("deterministic returns have no spread", func(t *testing.T) {
		g := corridor(t, grid.Params{Discount: 0.9, Noise: 0})
		estimate, err := NewEvaluator(g, WithGoroutines(3)).Estimate(g.Tile(0, 1), mdp.Uniform(g, grid.Right), 30)
		require.NoError(t, err)
		require.InDelta(t, -math.Pow(0.9, 2), estimate.Mean, 1e-12)
		require.InDelta(t, 0, estimate.StdErr, 1e-12)
		require.Equal(t, 2.0, estimate.MeanMoves)
	})

	t.Run("standard error of a coin flip", func(t *testing.T) {
		g, err := grid.FromRows([]string{"+.-"}, grid.Params{Discount: 0.9, Noise: 1})
		require.NoError(t, err)
		// Every move slips left onto the diamond or right into the pit.
		estimate, err := NewEvaluator(g, WithSeed(5)).Estimate(g.Tile(0, 1), mdp.Uniform(g, grid.Up), 400)
		require.NoError(t, err)
		require.Equal(t, 1.0, estimate.MeanMoves)
		require.InDelta(t, 0, estimate.Mean, 0.2)
		require.InDelta(t, 0.9/20, estimate.StdErr, 0.001)
	})

	t.Run("single trial has no spread", func(t *testing.T) {
		g := corridor(t, grid.DefaultParams())
		estimate, err := NewEvaluator(g, WithSeed(5)).Estimate(g.Tile(0, 1), mdp.Uniform(g, grid.Left), 1)
		require.NoError(t, err)
		require.Equal(t, 1, estimate.Trials)
		require.Zero(t, estimate.StdErr)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		g := corridor(t, grid.DefaultParams())
		e := NewEvaluator(g)
		_, err := e.Estimate(g.Tile(0, 1), mdp.Uniform(g, grid.Left), 0)
		require.ErrorIs(t, err, grid.ErrInvalidConfig)
		_, err = e.Estimate(g.Tile(0, 1), mdp.Policy{}, 10)
		require.ErrorIs(t, err, mdp.ErrMissingPolicyEntry)
	})

	t.Run("truncation stops the pool", func(t *testing.T) {
		g := corridor(t, grid.Params{Discount: 0.9, Noise: 0})
		e := NewEvaluator(g, WithGoroutines(4), WithMaxSteps(10))
		_, err := e.Estimate(g.Tile(0, 1), mdp.Uniform(g, grid.Up), 100)
		require.ErrorIs(t, err, ErrTruncated)
	})
}
