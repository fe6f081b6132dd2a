package report

import (
	"fmt"
	"io"
	"strings"

	"gridmdp/grid"
	"gridmdp/utils"

	"github.com/logrusorgru/aurora"
)

// Printer renders a grid as text. Colours are only emitted when enabled,
// so output written to files stays plain.
type Printer struct {
	w  io.Writer
	au aurora.Aurora
}

func NewPrinter(w io.Writer, colors bool) *Printer {
	return &Printer{w: w, au: aurora.NewAurora(colors)}
}

// Utilities prints one row per grid row with every tile's utility.
func (p *Printer) Utilities(g *grid.Grid) error {
	return p.table(g, func(t *grid.Tile) aurora.Value {
		cell := fmt.Sprintf("%7.3f", t.Utility)
		switch {
		case t.IsWall():
			return p.au.Gray(12, fmt.Sprintf("%7s", "#"))
		case t.IsDiamond():
			return p.au.Green(cell)
		case t.IsPit():
			return p.au.Red(cell)
		}
		return p.au.Blue(cell)
	})
}

// Directions prints the current policy using one letter per tile.
func (p *Printer) Directions(g *grid.Grid) error {
	return p.table(g, func(t *grid.Tile) aurora.Value {
		switch {
		case t.IsWall():
			return p.au.Gray(12, " #")
		case t.IsDiamond():
			return p.au.Green(" +")
		case t.IsPit():
			return p.au.Red(" -")
		}
		return p.au.Bold(" " + t.Direction.String())
	})
}

// ActionValues prints the four action values of every walkable tile with
// the greedy one highlighted.
func (p *Printer) ActionValues(g *grid.Grid) error {
	for _, t := range g.Walkable() {
		best, _ := utils.ArgMax(t.ActionValues[:])
		var b strings.Builder
		fmt.Fprintf(&b, "%-8s", t.Coord())
		for _, a := range grid.Actions {
			cell := fmt.Sprintf(" %s:%7.3f", a, t.ActionValues[a])
			if int(a) == best {
				b.WriteString(p.au.Yellow(cell).String())
			} else {
				b.WriteString(cell)
			}
		}
		if _, err := fmt.Fprintln(p.w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) table(g *grid.Grid, cell func(t *grid.Tile) aurora.Value) error {
	for row := 0; row < g.Rows(); row++ {
		var b strings.Builder
		for col := 0; col < g.Cols(); col++ {
			b.WriteString(cell(g.Tile(row, col)).String())
			b.WriteString(p.au.White("|").String())
		}
		if _, err := fmt.Fprintln(p.w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
