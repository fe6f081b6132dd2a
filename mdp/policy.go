package mdp

import (
	"errors"
	"fmt"

	"gridmdp/grid"
)

var ErrMissingPolicyEntry = errors.New("policy has no action for walkable tile")

// Policy maps a tile coordinate to the action taken there.
type Policy map[grid.Coord]grid.Action

// Uniform returns a policy that plays the same action on every walkable tile.
func Uniform(g *grid.Grid, a grid.Action) Policy {
	policy := make(Policy)
	for _, t := range g.Walkable() {
		policy[t.Coord()] = a
	}
	return policy
}

// Extract reads the policy currently stored in the tiles' directions.
func Extract(g *grid.Grid) Policy {
	policy := make(Policy)
	for _, t := range g.Walkable() {
		policy[t.Coord()] = t.Direction
	}
	return policy
}

// Validate checks that every walkable tile of g has a valid action. Entries
// for other tiles are ignored.
func (p Policy) Validate(g *grid.Grid) error {
	for _, t := range g.Walkable() {
		a, ok := p[t.Coord()]
		if !ok {
			return fmt.Errorf("%w: %v", ErrMissingPolicyEntry, t.Coord())
		}
		if !a.Valid() {
			return fmt.Errorf("%w: %d at %v", grid.ErrInvalidAction, int(a), t.Coord())
		}
	}
	return nil
}

// Action returns the action for t.
func (p Policy) Action(t *grid.Tile) (grid.Action, error) {
	a, ok := p[t.Coord()]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrMissingPolicyEntry, t.Coord())
	}
	return a, nil
}
