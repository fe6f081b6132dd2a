package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"L", "U", "R"}, "U"))
	require.Equal(t, -1, FindIndex([]string{"L", "U", "R"}, "D"))
}

func TestArgMax(t *testing.T) {
	t.Run("first maximum wins ties", func(t *testing.T) {
		i, v := ArgMax([]float64{0.5, 0.7, 0.7, 0.1})
		require.Equal(t, 1, i)
		require.Equal(t, 0.7, v)
	})

	t.Run("panics on empty slice", func(t *testing.T) {
		require.Panics(t, func() {
			ArgMax([]float64{})
		})
	})
}
