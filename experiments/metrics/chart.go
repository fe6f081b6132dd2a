package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteResidualChart renders the Bellman residual of every solve as one line
// per run into residuals.html.
func (w *Writer) WriteResidualChart(title string, solves []SolveMetric) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Bellman residual per sweep",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "log",
		}),
	)

	longest := 0
	for _, solve := range solves {
		longest = max(longest, len(solve.Residuals))
	}
	sweeps := make([]string, 0, longest)
	for i := 1; i <= longest; i++ {
		sweeps = append(sweeps, fmt.Sprintf("%d", i))
	}

	line = line.SetXAxis(sweeps)
	for i, solve := range solves {
		items := make([]opts.LineData, 0, len(solve.Residuals))
		for _, residual := range solve.Residuals {
			items = append(items, opts.LineData{Value: residual})
		}
		line.AddSeries(fmt.Sprintf("%s #%d", solve.Solver, i+1), items)
	}

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(filepath.Join(w.baseDir, "residuals.html"))
	if err != nil {
		return fmt.Errorf("failed to create residual chart: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render residual chart: %w", err)
	}
	return nil
}
