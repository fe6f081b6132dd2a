package solver

import (
	"errors"
	"fmt"
	"time"

	"gridmdp/experiments/metrics"
	"gridmdp/grid"
	"gridmdp/meta"
)

var (
	ErrInvalidConfig  = fmt.Errorf("solver: %w", grid.ErrInvalidConfig)
	ErrNotConverged   = errors.New("solver did not converge")
	ErrSingularSystem = errors.New("policy evaluation system is singular")
)

// Status is the state of a solver run.
type Status int

const (
	Sweeping Status = iota
	Converged
)

func (s Status) String() string {
	if s == Converged {
		return "converged"
	}
	return "sweeping"
}

// Result describes a finished run. For policy iteration Sweeps counts every
// evaluation sweep and Residuals holds the last residual of each evaluation.
type Result struct {
	Sweeps     int
	Iterations int
	Residuals  []float64
	Converged  bool
	Duration   time.Duration
}

type Option func(s *settings)

type settings struct {
	theta               float64
	goroutines          int
	maxSweeps           int
	maxIterations       int
	maxEvaluationSweeps int
	tolerance           float64
	metrics             metrics.Collector
}

func newSettings(options []Option) (settings, error) {
	s := settings{ // Default values
		theta:               meta.Theta,
		goroutines:          meta.Goroutines,
		maxSweeps:           meta.MaxSweeps,
		maxIterations:       meta.MaxIterations,
		maxEvaluationSweeps: meta.MaxEvaluationSweeps,
		metrics:             metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(&s)
	}
	if s.theta <= 0 {
		return s, fmt.Errorf("%w: theta %v must be positive", ErrInvalidConfig, s.theta)
	}
	return s, nil
}

// WithTheta sets the residual below which a sweep loop stops.
func WithTheta(theta float64) Option {
	return func(s *settings) {
		s.theta = theta
	}
}

func WithGoroutines(goroutines int) Option {
	return func(s *settings) {
		if goroutines > 0 {
			s.goroutines = goroutines
		}
	}
}

// WithMaxSweeps caps value iteration.
func WithMaxSweeps(sweeps int) Option {
	return func(s *settings) {
		if sweeps > 0 {
			s.maxSweeps = sweeps
		}
	}
}

// WithMaxIterations caps policy iteration's evaluate/improve rounds.
func WithMaxIterations(iterations int) Option {
	return func(s *settings) {
		if iterations > 0 {
			s.maxIterations = iterations
		}
	}
}

// WithMaxEvaluationSweeps caps the sweeps of a single policy evaluation.
func WithMaxEvaluationSweeps(sweeps int) Option {
	return func(s *settings) {
		if sweeps > 0 {
			s.maxEvaluationSweeps = sweeps
		}
	}
}

// WithTolerance makes policy improvement treat action values closer than
// tolerance as equal. Zero keeps the exact comparison.
func WithTolerance(tolerance float64) Option {
	return func(s *settings) {
		if tolerance >= 0 {
			s.tolerance = tolerance
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(s *settings) {
		if collector != nil {
			s.metrics = collector
		}
	}
}
