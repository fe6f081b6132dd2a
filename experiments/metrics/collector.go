package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// SolveMetric summarises one solver run.
type SolveMetric struct {
	Solver        string
	Goroutines    int
	States        int // Walkable tiles
	Sweeps        int // Bellman sweeps, including policy evaluation sweeps
	Iterations    int // Evaluate/improve rounds (policy iteration only)
	Backups       int64
	Residuals     []float64
	FinalResidual float64
	Converged     bool
	Duration      time.Duration
}

// RolloutMetric summarises one Monte-Carlo estimate.
type RolloutMetric struct {
	Start      string
	Goroutines int
	Trials     int
	Mean       float64
	StdErr     float64
	MeanMoves  float64
	Solver     float64 // Utility the solver assigned to the start tile
	Exact      float64 // Utility from the linear Bellman system
	Duration   time.Duration
}

type Collector interface {
	Start(solver string, goroutines, states int)
	AddSweep(residual float64)
	AddIteration()
	AddBackups(n int)
	SetConverged(value bool)
	Complete() SolveMetric
}

type collector struct {
	mu         sync.Mutex
	solver     string
	goroutines int
	states     int
	startTime  time.Time
	residuals  []float64
	iterations int
	backups    atomic.Int64
	converged  atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(solver string, goroutines, states int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.startTime = time.Now()
	m.solver = solver
	m.goroutines = goroutines
	m.states = states
	m.residuals = nil
	m.iterations = 0
	m.backups.Store(0)
	m.converged.Store(false)
}

func (m *collector) AddSweep(residual float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.residuals = append(m.residuals, residual)
}

func (m *collector) AddIteration() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.iterations++
}

func (m *collector) AddBackups(n int) {
	m.backups.Add(int64(n))
}

func (m *collector) SetConverged(value bool) {
	m.converged.Store(value)
}

func (m *collector) Complete() SolveMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	final := 0.0
	if len(m.residuals) > 0 {
		final = m.residuals[len(m.residuals)-1]
	}
	return SolveMetric{
		Solver:        m.solver,
		Goroutines:    m.goroutines,
		States:        m.states,
		Sweeps:        len(m.residuals),
		Iterations:    m.iterations,
		Backups:       m.backups.Load(),
		Residuals:     append([]float64(nil), m.residuals...),
		FinalResidual: final,
		Converged:     m.converged.Load(),
		Duration:      time.Since(m.startTime),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(solver string, goroutines, states int) {}
func (m *dummyCollector) AddSweep(residual float64)                  {}
func (m *dummyCollector) AddIteration()                              {}
func (m *dummyCollector) AddBackups(n int)                           {}
func (m *dummyCollector) SetConverged(value bool)                    {}
func (m *dummyCollector) Complete() SolveMetric                      { return SolveMetric{} }
