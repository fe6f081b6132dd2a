package grid

import (
	"fmt"
	"strconv"
	"strings"

	"gridmdp/utils"
)

// Action is one of the four compass moves. The numeric order matters:
// rotating by one step yields the perpendicular slip directions.
type Action int

const (
	Left Action = iota
	Up
	Right
	Down
)

// NumActions is the size of the action space.
const NumActions = 4

// Actions lists every action in tie-break order.
var Actions = [NumActions]Action{Left, Up, Right, Down}

var (
	shortNames = []string{"L", "U", "R", "D"}
	longNames  = []string{"left", "up", "right", "down"}
	offsets    = [NumActions]Coord{Left: {0, -1}, Up: {-1, 0}, Right: {0, 1}, Down: {1, 0}}
)

// Valid reports whether a is one of Left, Up, Right or Down.
func (a Action) Valid() bool {
	return a >= Left && a <= Down
}

// Rotate returns the action k quarter turns clockwise (k may be negative).
func (a Action) Rotate(k int) Action {
	return Action(((int(a)+k)%NumActions + NumActions) % NumActions)
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return shortNames[a]
}

// ParseAction decodes "L", "U", "R", "D", their long names or the
// numeric indices 0-3.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if i := utils.FindIndex(shortNames, strings.ToUpper(s)); i >= 0 {
		return Action(i), nil
	}
	if i := utils.FindIndex(longNames, strings.ToLower(s)); i >= 0 {
		return Action(i), nil
	}
	if n, err := strconv.Atoi(s); err == nil && Action(n).Valid() {
		return Action(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}
