package mdp

import "gridmdp/grid"

// Outcome is one branch of the slip distribution.
type Outcome struct {
	Tile        *grid.Tile
	Probability float64
}

// Model adds the action-noise semantics of the MDP on top of a grid's
// deterministic move function: the intended action happens with probability
// 1-noise and each perpendicular slip with probability noise/2.
type Model struct {
	grid   *grid.Grid
	params grid.Params
}

func New(g *grid.Grid) *Model {
	if g == nil {
		panic("model needs a grid")
	}
	return &Model{grid: g, params: g.Params()}
}

func (m *Model) Grid() *grid.Grid {
	return m.grid
}

func (m *Model) Params() grid.Params {
	return m.params
}

// Commit returns the intended, noise-free outcome of taking a from t.
func (m *Model) Commit(t *grid.Tile, a grid.Action) (*grid.Tile, error) {
	return m.grid.Neighbor(t, a)
}

// Outcomes returns the intended outcome followed by the two slips
// (a rotated back, a rotated forward).
func (m *Model) Outcomes(t *grid.Tile, a grid.Action) ([3]Outcome, error) {
	var outcomes [3]Outcome
	p := m.params.Noise
	for i, branch := range [3]struct {
		action grid.Action
		prob   float64
	}{
		{a, 1 - p},
		{a.Rotate(-1), p / 2},
		{a.Rotate(1), p / 2},
	} {
		next, err := m.Commit(t, branch.action)
		if err != nil {
			return outcomes, err
		}
		outcomes[i] = Outcome{Tile: next, Probability: branch.prob}
	}
	return outcomes, nil
}

// ExpectedUtility is the one-step Bellman expectation of taking a from t,
// read against the utilities currently stored on the grid.
func (m *Model) ExpectedUtility(t *grid.Tile, a grid.Action) (float64, error) {
	outcomes, err := m.Outcomes(t, a)
	if err != nil {
		return 0, err
	}
	r, gamma := m.params.LivingReward, m.params.Discount
	expected := 0.0
	for _, o := range outcomes {
		expected += o.Probability * (r + gamma*o.Tile.Utility)
	}
	return expected, nil
}

// Sample maps a uniform draw u in [0, 1) onto the slip distribution.
func (m *Model) Sample(t *grid.Tile, a grid.Action, u float64) (*grid.Tile, error) {
	p := m.params.Noise
	switch {
	case u < 1-p:
		return m.Commit(t, a)
	case u < 1-p/2:
		return m.Commit(t, a.Rotate(-1))
	default:
		return m.Commit(t, a.Rotate(1))
	}
}
