package utils

import "cmp"

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// ArgMax returns the index and value of the first maximum element. Later
// elements only win when strictly greater, so ties go to the lowest index.
func ArgMax[T cmp.Ordered](slice []T) (int, T) {
	if len(slice) == 0 {
		panic("argmax of empty slice")
	}
	best := 0
	for i := 1; i < len(slice); i++ {
		if slice[i] > slice[best] {
			best = i
		}
	}
	return best, slice[best]
}
