package solver

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"gridmdp/grid"

	"github.com/stretchr/testify/require"
)

func TestSweeper(t *testing.T) {
	tiles := fixedGrid(t).Walkable()

	t.Run("visits every tile once", func(t *testing.T) {
		for _, goroutines := range []int{1, 2, 7, 64} {
			s := newSweeper(tiles, goroutines)
			visits := make([]atomic.Int32, len(tiles))
			err := s.each(func(i int, tile *grid.Tile) error {
				if tiles[i] != tile {
					return fmt.Errorf("tile %d out of place", i)
				}
				visits[i].Add(1)
				return nil
			})
			require.NoError(t, err)
			for i := range visits {
				require.Equal(t, int32(1), visits[i].Load(), "goroutines %d tile %d", goroutines, i)
			}
		}
	})

	t.Run("returns the maximum", func(t *testing.T) {
		s := newSweeper(tiles, 4)
		got, err := s.max(func(i int, _ *grid.Tile) (float64, error) {
			return float64(i), nil
		})
		require.NoError(t, err)
		require.Equal(t, float64(len(tiles)-1), got)
	})

	t.Run("propagates errors", func(t *testing.T) {
		boom := errors.New("boom")
		s := newSweeper(tiles, 4)
		err := s.each(func(i int, _ *grid.Tile) error {
			if i == 5 {
				return boom
			}
			return nil
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("empty tile set", func(t *testing.T) {
		s := newSweeper(nil, 4)
		got, err := s.max(func(int, *grid.Tile) (float64, error) {
			return 1, nil
		})
		require.NoError(t, err)
		require.Zero(t, got)
	})
}
