package solver

import (
	"testing"

	"gridmdp/experiments/metrics"
	"gridmdp/grid"
	"gridmdp/mdp"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestPolicyIterationFixedScenario(t *testing.T) {
	t.Run("default budgets", func(t *testing.T) {
		g := fixedGrid(t)
		pi, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up))
		require.NoError(t, err)

		result, err := pi.Run()
		require.NoError(t, err)
		require.True(t, result.Converged)
		require.Equal(t, 5, result.Iterations)
		requireFixedSolution(t, g, 1e-3)
		requireTerminalsIntact(t, g)
	})

	t.Run("evaluated to convergence matches the exact solution", func(t *testing.T) {
		g := fixedGrid(t)
		pi, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up),
			WithTheta(1e-10), WithMaxEvaluationSweeps(10000), WithMaxIterations(50), WithGoroutines(3))
		require.NoError(t, err)

		result, err := pi.Run()
		require.NoError(t, err)
		require.True(t, result.Converged)
		require.Equal(t, 5, result.Iterations)
		require.Len(t, result.Residuals, 5)

		exact, err := EvaluateExact(g, pi.Policy())
		require.NoError(t, err)
		for _, tile := range g.Walkable() {
			require.InDelta(t, exact[tile.Coord()], tile.Utility, 1e-8, "utility at %v", tile.Coord())
		}
		requireFixedSolution(t, g, 1e-3)
	})
}

func TestPolicyIterationAgreesWithValueIteration(t *testing.T) {
	for seed := uint64(1); seed <= 3; seed++ {
		viGrid := randomGrid(t, seed)
		vi, err := NewValueIteration(viGrid, WithTheta(1e-10))
		require.NoError(t, err)
		_, err = vi.Run()
		require.NoError(t, err)

		piGrid := randomGrid(t, seed)
		pi, err := NewPolicyIteration(piGrid, mdp.Uniform(piGrid, grid.Up),
			WithTheta(1e-10), WithMaxEvaluationSweeps(10000), WithMaxIterations(100))
		require.NoError(t, err)
		result, err := pi.Run()
		require.NoError(t, err)
		require.True(t, result.Converged, "seed %d", seed)

		for _, tile := range piGrid.Walkable() {
			want := viGrid.At(tile.Coord()).Utility
			require.InDelta(t, want, tile.Utility, 1e-6, "seed %d utility at %v", seed, tile.Coord())
		}
	}
}

func TestPolicyImprovementMonotonicity(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		g := randomGrid(t, seed)
		rng := rand.New(rand.NewSource(seed))
		policy := mdp.Policy{}
		for _, tile := range g.Walkable() {
			policy[tile.Coord()] = grid.Actions[rng.Intn(grid.NumActions)]
		}

		pi, err := NewPolicyIteration(g, policy, WithTheta(1e-12), WithMaxEvaluationSweeps(100000))
		require.NoError(t, err)

		for round := 0; round < 3; round++ {
			old, err := EvaluateExact(g, pi.Policy())
			require.NoError(t, err)

			_, _, err = pi.Evaluate()
			require.NoError(t, err)
			_, err = pi.Improve()
			require.NoError(t, err)

			improved, err := EvaluateExact(g, pi.Policy())
			require.NoError(t, err)
			for coord, value := range old {
				require.GreaterOrEqual(t, improved[coord], value-1e-9, "seed %d round %d at %v", seed, round, coord)
			}
		}
	}
}

func TestPolicyImprovementTieBreak(t *testing.T) {
	t.Run("equal values never switch", func(t *testing.T) {
		g := fixedGrid(t)
		pi, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up))
		require.NoError(t, err)

		// With every walkable utility at zero, far tiles see four equal
		// action values; Left comes first but must not replace Up.
		changed, err := pi.Improve()
		require.NoError(t, err)
		require.True(t, changed)
		require.Equal(t, grid.Up, g.Tile(5, 0).Direction)
		require.Equal(t, [grid.NumActions]float64{}, g.Tile(5, 0).ActionValues)
		require.Equal(t, grid.Right, g.Tile(0, 4).Direction, "diamond is worth moving towards")
	})

	t.Run("tolerance suppresses small gains", func(t *testing.T) {
		g := fixedGrid(t)
		pi, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up), WithTolerance(0.7))
		require.NoError(t, err)

		// Q(0,4) is 0.72 for Right against 0.09 for Up.
		_, err = pi.Improve()
		require.NoError(t, err)
		require.Equal(t, grid.Up, g.Tile(0, 4).Direction)
	})

	t.Run("stable policy reports no change", func(t *testing.T) {
		g := fixedGrid(t)
		pi, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up))
		require.NoError(t, err)
		_, err = pi.Run()
		require.NoError(t, err)

		changed, err := pi.Improve()
		require.NoError(t, err)
		require.False(t, changed)
	})
}

func TestPolicyIterationValidation(t *testing.T) {
	t.Run("missing walkable entry", func(t *testing.T) {
		g := fixedGrid(t)
		policy := mdp.Uniform(g, grid.Up)
		delete(policy, grid.Coord{Row: 2, Col: 2})
		_, err := NewPolicyIteration(g, policy)
		require.ErrorIs(t, err, mdp.ErrMissingPolicyEntry)
	})

	t.Run("invalid action", func(t *testing.T) {
		g := fixedGrid(t)
		policy := mdp.Uniform(g, grid.Up)
		policy[grid.Coord{Row: 2, Col: 2}] = grid.Action(12)
		_, err := NewPolicyIteration(g, policy)
		require.ErrorIs(t, err, grid.ErrInvalidAction)
	})

	t.Run("non-positive theta", func(t *testing.T) {
		g := fixedGrid(t)
		_, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up), WithTheta(0))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("load replaces the policy", func(t *testing.T) {
		g := fixedGrid(t)
		pi, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up))
		require.NoError(t, err)
		require.NoError(t, pi.Load(mdp.Uniform(g, grid.Down)))
		require.Equal(t, grid.Down, g.Tile(3, 3).Direction)
		require.Equal(t, mdp.Uniform(g, grid.Down), pi.Policy())

		require.ErrorIs(t, pi.Load(mdp.Policy{}), mdp.ErrMissingPolicyEntry)
	})
}

func TestPolicyIterationBudgets(t *testing.T) {
	g := fixedGrid(t)
	collector := metrics.NewCollector()
	pi, err := NewPolicyIteration(g, mdp.Uniform(g, grid.Up),
		WithMaxIterations(1), WithMaxEvaluationSweeps(2), WithMetrics(collector))
	require.NoError(t, err)

	result, err := pi.Run()
	require.NoError(t, err, "running out of iterations is not an error")
	require.False(t, result.Converged)
	require.Equal(t, 1, result.Iterations)
	require.Equal(t, 2, result.Sweeps)

	got := collector.Complete()
	require.Equal(t, "policy_iteration", got.Solver)
	require.Equal(t, 1, got.Iterations)
	require.Equal(t, 2, got.Sweeps)
	require.False(t, got.Converged)
}
