package grid

import "github.com/zyedidia/generic/mapset"

// IsConnected reports whether every non-wall tile can be reached from a
// terminal. A grid without terminals is never connected.
func (g *Grid) IsConnected() bool {
	open := 0
	start := -1
	for i, t := range g.tiles {
		if t.IsWall() {
			continue
		}
		open++
		if start < 0 && t.IsTerminal() {
			start = i
		}
	}
	if start < 0 {
		return false
	}

	visited := mapset.New[int]()
	stack := []int{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Has(current) {
			continue
		}
		visited.Put(current)
		for _, n := range g.adjacent(current) {
			if !visited.Has(n) {
				stack = append(stack, n)
			}
		}
	}
	return visited.Size() == open
}

// adjacent returns the indices of the non-wall 4-neighbours of tile i.
func (g *Grid) adjacent(i int) []int {
	t := g.tiles[i]
	neighbors := make([]int, 0, NumActions)
	for _, d := range offsets {
		if n := g.Tile(t.Row+d.Row, t.Col+d.Col); n != nil && !n.IsWall() {
			neighbors = append(neighbors, n.Row*g.cols+n.Col)
		}
	}
	return neighbors
}

// addWallSafely turns t into a wall unless that would strand part of the
// grid, in which case t is restored.
func (g *Grid) addWallSafely(t *Tile) bool {
	t.setWall()
	if !g.IsConnected() {
		t.setWalkable()
		return false
	}
	return true
}
