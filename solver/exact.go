package solver

import (
	"fmt"

	"gridmdp/grid"
	"gridmdp/mdp"

	"gonum.org/v1/gonum/mat"
)

// EvaluateExact solves the linear Bellman system (I - γP)V = R of policy
// over the walkable tiles. Terminal utilities enter as constants. The grid
// is not modified.
func EvaluateExact(g *grid.Grid, policy mdp.Policy) (map[grid.Coord]float64, error) {
	if err := policy.Validate(g); err != nil {
		return nil, err
	}

	walkable := g.Walkable()
	values := make(map[grid.Coord]float64, len(walkable))
	if len(walkable) == 0 {
		return values, nil
	}

	index := make(map[grid.Coord]int, len(walkable))
	for i, t := range walkable {
		index[t.Coord()] = i
	}

	n := len(walkable)
	params := g.Params()
	model := mdp.New(g)
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for i, t := range walkable {
		a.Set(i, i, 1)
		outcomes, err := model.Outcomes(t, policy[t.Coord()])
		if err != nil {
			return nil, err
		}
		rhs := 0.0
		for _, o := range outcomes {
			rhs += o.Probability * params.LivingReward
			if o.Tile.IsWalkable() {
				j := index[o.Tile.Coord()]
				a.Set(i, j, a.At(i, j)-o.Probability*params.Discount)
			} else {
				rhs += o.Probability * params.Discount * o.Tile.Utility
			}
		}
		b.SetVec(i, rhs)
	}

	var v mat.VecDense
	if err := v.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	for i, t := range walkable {
		values[t.Coord()] = v.AtVec(i)
	}
	return values, nil
}
