package experiments

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gridmdp/config"
	"gridmdp/experiments/metrics"
	"gridmdp/grid"
	"gridmdp/mdp"
	"gridmdp/solver"

	"github.com/rs/zerolog/log"
)

const (
	RuntimeSize      = 70 // Rows and columns of the benchmark grid
	RuntimeWallRatio = 25
)

var goroutineCounts = []int{1, 2, 4, 8}

// RunRuntime times value iteration and policy iteration on a large random
// grid, runs times per goroutine count, wiping the grid before every run.
// The average duration per solver and goroutine count is printed to out.
func RunRuntime(cfg config.Config, runs int, out io.Writer) (string, error) {
	const name = "runtime"
	start := time.Now()
	log.Info().Msgf("starting %s experiment...", name)

	layout := grid.Layout{
		Rows:       RuntimeSize,
		Cols:       RuntimeSize,
		Randomized: true,
		GoalRatio:  cfg.GoalRatio,
		WallRatio:  RuntimeWallRatio,
	}
	g, err := buildLayout(cfg, layout)
	if err != nil {
		return "", err
	}
	return runRuntime(cfg, g, runs, name, start, out)
}

func runRuntime(cfg config.Config, g *grid.Grid, runs int, name string, start time.Time, out io.Writer) (string, error) {
	collector := metrics.NewCollector()
	records := []metrics.SolveRecord{}
	count := 0

	for ci, goroutines := range goroutineCounts {
		log.Info().Msgf("starting config %d of %d with %d goroutines...", ci+1, len(goroutineCounts), goroutines)
		options := solverOptions(cfg, goroutines, collector)

		for i := 0; i < runs; i++ {
			log.Info().Msgf("starting run %d of %d...", i+1, runs)

			g.Wipe()
			vi, err := solver.NewValueIteration(g, options...)
			if err != nil {
				return "", err
			}
			if _, err := vi.Run(); err != nil && !errors.Is(err, solver.ErrNotConverged) {
				return "", err
			}
			count++
			records = append(records, metrics.SolveRecord{Run: count, SolveMetric: collector.Complete()})

			g.Wipe()
			pi, err := solver.NewPolicyIteration(g, mdp.Uniform(g, grid.Up), options...)
			if err != nil {
				return "", err
			}
			if _, err := pi.Run(); err != nil {
				return "", err
			}
			count++
			records = append(records, metrics.SolveRecord{Run: count, SolveMetric: collector.Complete()})

			log.Info().Msgf("completed run %d of %d", i+1, runs)
		}
		log.Info().Msgf("completed config %d of %d", ci+1, len(goroutineCounts))
	}

	log.Info().Msgf("completed %s experiment", name)
	if err := printAverages(out, records); err != nil {
		return "", err
	}

	writer, err := metrics.NewWriter(cfg.Output, name)
	if err != nil {
		return "", err
	}
	if err := writeSolveResults(writer, start, cfg, records); err != nil {
		return "", err
	}
	return writer.Dir(), nil
}

type runtimeKey struct {
	solver     string
	goroutines int
}

func printAverages(out io.Writer, records []metrics.SolveRecord) error {
	keys := []runtimeKey{}
	totals := map[runtimeKey]time.Duration{}
	counts := map[runtimeKey]int{}
	for _, record := range records {
		key := runtimeKey{solver: record.Solver, goroutines: record.Goroutines}
		if _, ok := totals[key]; !ok {
			keys = append(keys, key)
		}
		totals[key] += record.Duration
		counts[key]++
	}

	for _, key := range keys {
		average := totals[key] / time.Duration(counts[key])
		if _, err := fmt.Fprintf(out, "%-16s goroutines=%-3d average=%v\n", key.solver, key.goroutines, average); err != nil {
			return err
		}
	}
	return nil
}
