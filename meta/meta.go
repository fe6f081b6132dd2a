// meta/meta.go
package meta

// Goroutines defines the default number of goroutines per sweep phase.
const Goroutines = 1

// Discount is the default discount factor.
const Discount = 0.9

// Noise is the default probability mass split across the two slip directions.
const Noise = 0.2

// LivingReward is the default reward per non-terminal transition.
const LivingReward = 0.0

// Theta is the default convergence threshold on the Bellman residual.
const Theta = 0.0001

// MaxSweeps caps value iteration sweeps.
const MaxSweeps = 100000

// MaxIterations caps policy iteration's evaluate/improve rounds.
const MaxIterations = 15

// MaxEvaluationSweeps caps sweeps within one policy evaluation.
const MaxEvaluationSweeps = 15

// GoalRatio is the default percent of cells turned into terminal pairs.
const GoalRatio = 10.0

// WallRatio is the default percent of cells turned into walls.
const WallRatio = 20.0

// MaxWallPasses caps full scans while placing walls.
const MaxWallPasses = 1000

// MaxRolloutSteps caps the moves of a single rollout trajectory.
const MaxRolloutSteps = 100000

// Rollouts is the default number of rollout trials per estimate.
const Rollouts = 1000

// RuntimeRuns is the number of timed solver runs in the runtime experiment.
const RuntimeRuns = 3
