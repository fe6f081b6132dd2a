package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type SolveRecord struct {
	Run int
	SolveMetric
}

type RolloutRecord struct {
	Run int
	RolloutMetric
}

type Setup struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Config    any           `json:"config"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
}

type Writer struct {
	id      string
	name    string
	baseDir string
}

// NewWriter creates <root>/<name>/<timestamp>-<run id> for one experiment run.
func NewWriter(root, name string) (*Writer, error) {
	id := uuid.NewString()
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp+"-"+id[:8])
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		id:      id,
		name:    name,
		baseDir: baseDir,
	}, nil
}

func (w *Writer) ID() string  { return w.id }
func (w *Writer) Dir() string { return w.baseDir }

func (w *Writer) WriteSetup(start, end time.Time, config any) error {
	setup := Setup{
		ID:        w.id,
		Name:      w.name,
		Config:    config,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}

	f, err := os.Create(filepath.Join(w.baseDir, "setup.json"))
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}

	return nil
}

func (w *Writer) WriteSolveRecords(records []SolveRecord) error {
	header := []string{"run", "solver", "goroutines", "states", "sweeps", "iterations", "backups", "final_residual", "converged", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Run),
			record.Solver,
			strconv.Itoa(record.Goroutines),
			strconv.Itoa(record.States),
			strconv.Itoa(record.Sweeps),
			strconv.Itoa(record.Iterations),
			strconv.FormatInt(record.Backups, 10),
			strconv.FormatFloat(record.FinalResidual, 'g', -1, 64),
			strconv.FormatBool(record.Converged),
			record.Duration.String(),
		})
	}
	return w.writeCSV("solve_records.csv", header, rows)
}

func (w *Writer) WriteRolloutRecords(records []RolloutRecord) error {
	header := []string{"run", "start", "goroutines", "trials", "mean", "stderr", "mean_moves", "solver", "exact", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Run),
			record.Start,
			strconv.Itoa(record.Goroutines),
			strconv.Itoa(record.Trials),
			strconv.FormatFloat(record.Mean, 'f', 6, 64),
			strconv.FormatFloat(record.StdErr, 'f', 6, 64),
			strconv.FormatFloat(record.MeanMoves, 'f', 2, 64),
			strconv.FormatFloat(record.Solver, 'f', 6, 64),
			strconv.FormatFloat(record.Exact, 'f', 6, 64),
			record.Duration.String(),
		})
	}
	return w.writeCSV("rollout_records.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.baseDir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}
	return nil
}
