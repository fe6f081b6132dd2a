package solver

import (
	"math"

	"gridmdp/grid"

	"golang.org/x/sync/errgroup"
)

// sweeper runs one phase of a sweep over contiguous chunks of tiles. Each
// call returns only after every chunk is done, which is the barrier between
// the read phase and the write phase.
type sweeper struct {
	goroutines int
	tiles      []*grid.Tile
	bounds     [][2]int
	partial    []float64
}

func newSweeper(tiles []*grid.Tile, goroutines int) *sweeper {
	chunks := max(1, min(goroutines, len(tiles)))
	size := (len(tiles) + chunks - 1) / chunks
	bounds := make([][2]int, 0, chunks)
	for lo := 0; lo < len(tiles); lo += size {
		bounds = append(bounds, [2]int{lo, min(lo+size, len(tiles))})
	}
	return &sweeper{
		goroutines: goroutines,
		tiles:      tiles,
		bounds:     bounds,
		partial:    make([]float64, len(bounds)),
	}
}

// each applies fn to every tile with its index.
func (s *sweeper) each(fn func(i int, t *grid.Tile) error) error {
	_, err := s.max(func(i int, t *grid.Tile) (float64, error) {
		return 0, fn(i, t)
	})
	return err
}

// max applies fn to every tile and returns the largest value it produced.
func (s *sweeper) max(fn func(i int, t *grid.Tile) (float64, error)) (float64, error) {
	run := func(chunk int) error {
		best := 0.0
		lo, hi := s.bounds[chunk][0], s.bounds[chunk][1]
		for i := lo; i < hi; i++ {
			v, err := fn(i, s.tiles[i])
			if err != nil {
				return err
			}
			best = math.Max(best, v)
		}
		s.partial[chunk] = best
		return nil
	}

	if len(s.bounds) <= 1 || s.goroutines <= 1 {
		for chunk := range s.bounds {
			if err := run(chunk); err != nil {
				return 0, err
			}
		}
	} else {
		var group errgroup.Group
		group.SetLimit(s.goroutines)
		for chunk := range s.bounds {
			chunk := chunk
			group.Go(func() error {
				return run(chunk)
			})
		}
		if err := group.Wait(); err != nil {
			return 0, err
		}
	}

	best := 0.0
	for _, v := range s.partial {
		best = math.Max(best, v)
	}
	return best, nil
}
