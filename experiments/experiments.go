package experiments

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gridmdp/config"
	"gridmdp/experiments/metrics"
	"gridmdp/grid"
	"gridmdp/mdp"
	"gridmdp/report"
	"gridmdp/rollout"
	"gridmdp/solver"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// RunSolve solves the configured grid with value iteration and then with
// policy iteration from a clean slate, prints both solutions to out and
// stores their records and residual chart. It returns the results directory.
func RunSolve(cfg config.Config, out io.Writer) (string, error) {
	const name = "solve"
	start := time.Now()
	log.Info().Msgf("starting %s experiment...", name)

	g, err := buildGrid(cfg)
	if err != nil {
		return "", err
	}
	printer := report.NewPrinter(out, cfg.Colors(isTerminal(out)))

	collector := metrics.NewCollector()
	records := []metrics.SolveRecord{}

	vi, err := solver.NewValueIteration(g, solverOptions(cfg, cfg.Goroutines, collector)...)
	if err != nil {
		return "", err
	}
	if _, err := vi.Run(); err != nil && !errors.Is(err, solver.ErrNotConverged) {
		return "", err
	}
	records = append(records, metrics.SolveRecord{Run: 1, SolveMetric: collector.Complete()})
	log.Info().Msgf("completed value iteration in %d sweeps", records[0].Sweeps)
	if err := printSolution(printer, out, "value iteration", g); err != nil {
		return "", err
	}

	g.Wipe()
	pi, err := solver.NewPolicyIteration(g, mdp.Uniform(g, grid.Up), solverOptions(cfg, cfg.Goroutines, collector)...)
	if err != nil {
		return "", err
	}
	if _, err := pi.Run(); err != nil {
		return "", err
	}
	records = append(records, metrics.SolveRecord{Run: 2, SolveMetric: collector.Complete()})
	log.Info().Msgf("completed policy iteration in %d iterations", records[1].Iterations)
	if err := printSolution(printer, out, "policy iteration", g); err != nil {
		return "", err
	}

	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(cfg.Output, name)
	if err != nil {
		return "", err
	}
	solves := make([]metrics.SolveMetric, 0, len(records))
	for _, record := range records {
		solves = append(solves, record.SolveMetric)
	}
	if err := writer.WriteResidualChart(fmt.Sprintf("%dx%d grid", g.Rows(), g.Cols()), solves); err != nil {
		return "", err
	}
	if err := writeSolveResults(writer, start, cfg, records); err != nil {
		return "", err
	}
	return writer.Dir(), nil
}

// RunRollout extracts a policy with policy iteration, picks a random
// walkable start tile and compares the Monte-Carlo estimate of its utility
// with the solver's and the exact one.
func RunRollout(cfg config.Config, out io.Writer) (string, error) {
	const name = "rollout"
	start := time.Now()
	log.Info().Msgf("starting %s experiment...", name)

	g, err := buildGrid(cfg)
	if err != nil {
		return "", err
	}
	pi, err := solver.NewPolicyIteration(g, mdp.Uniform(g, grid.Up), solverOptions(cfg, cfg.Goroutines, nil)...)
	if err != nil {
		return "", err
	}
	if _, err := pi.Run(); err != nil {
		return "", err
	}
	policy := pi.Policy()

	seed := seedOf(cfg)
	tile := g.RandomWalkable(rand.New(rand.NewSource(seed)))
	if tile == nil {
		return "", fmt.Errorf("%w: grid has no walkable tile", grid.ErrInvalidConfig)
	}

	exact, err := solver.EvaluateExact(g, policy)
	if err != nil {
		return "", err
	}

	evaluator := rollout.NewEvaluator(g, rollout.WithGoroutines(cfg.Goroutines), rollout.WithSeed(seed))
	estimate, err := evaluator.Estimate(tile, policy, cfg.Rollouts)
	if err != nil {
		return "", err
	}

	record := metrics.RolloutRecord{
		Run: 1,
		RolloutMetric: metrics.RolloutMetric{
			Start:      tile.Coord().String(),
			Goroutines: cfg.Goroutines,
			Trials:     estimate.Trials,
			Mean:       estimate.Mean,
			StdErr:     estimate.StdErr,
			MeanMoves:  estimate.MeanMoves,
			Solver:     tile.Utility,
			Exact:      exact[tile.Coord()],
			Duration:   estimate.Duration,
		},
	}
	_, err = fmt.Fprintf(out, "%v: rollout %.4f ± %.4f over %d trials, solver %.4f, exact %.4f\n",
		tile.Coord(), estimate.Mean, estimate.StdErr, estimate.Trials, tile.Utility, record.Exact)
	if err != nil {
		return "", err
	}
	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(cfg.Output, name)
	if err != nil {
		return "", err
	}
	if err := writer.WriteSetup(start, time.Now(), cfg); err != nil {
		return "", err
	}
	log.Info().Msg("stored setup")
	if err := writer.WriteRolloutRecords([]metrics.RolloutRecord{record}); err != nil {
		return "", err
	}
	log.Info().Msg("stored rollout records")
	return writer.Dir(), nil
}

func buildGrid(cfg config.Config) (*grid.Grid, error) {
	return buildLayout(cfg, cfg.Layout())
}

func buildLayout(cfg config.Config, layout grid.Layout) (*grid.Grid, error) {
	g, err := grid.Generate(layout, cfg.Params(), grid.WithSeed(seedOf(cfg)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate grid: %w", err)
	}
	log.Info().Msgf("generated %dx%d grid with %d walkable tiles", g.Rows(), g.Cols(), len(g.Walkable()))
	return g, nil
}

func seedOf(cfg config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

func solverOptions(cfg config.Config, goroutines int, collector metrics.Collector) []solver.Option {
	options := []solver.Option{
		solver.WithTheta(cfg.Theta),
		solver.WithGoroutines(goroutines),
		solver.WithMaxSweeps(cfg.MaxSweeps),
		solver.WithMaxIterations(cfg.MaxIterations),
		solver.WithMaxEvaluationSweeps(cfg.MaxEvaluationSweeps),
	}
	if collector != nil {
		options = append(options, solver.WithMetrics(collector))
	}
	return options
}

func printSolution(printer *report.Printer, out io.Writer, title string, g *grid.Grid) error {
	if _, err := fmt.Fprintf(out, "%s utilities:\n", title); err != nil {
		return err
	}
	if err := printer.Utilities(g); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%s directions:\n", title); err != nil {
		return err
	}
	if err := printer.Directions(g); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%s action values:\n", title); err != nil {
		return err
	}
	return printer.ActionValues(g)
}

// isTerminal reports whether out is a terminal that can show colours.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeSolveResults(writer *metrics.Writer, start time.Time, cfg config.Config, records []metrics.SolveRecord) error {
	if err := writer.WriteSetup(start, time.Now(), cfg); err != nil {
		return err
	}
	log.Info().Msg("stored setup")

	if err := writer.WriteSolveRecords(records); err != nil {
		return err
	}
	log.Info().Msg("stored solve records")
	return nil
}
