package fit

// Select returns the first candidate for which fits reports true, in the
// order given. When none fits it returns the last candidate. An empty slice
// yields the zero value.
func Select[T any](candidates []T, fits func(T) bool) T {
	var zero T
	i := SelectIndex(candidates, fits)
	if i < 0 {
		return zero
	}
	return candidates[i]
}

// SelectIndex is Select returning the position of the chosen candidate, or
// -1 for an empty slice.
func SelectIndex[T any](candidates []T, fits func(T) bool) int {
	if len(candidates) == 0 {
		return -1
	}
	for i, c := range candidates {
		if fits(c) {
			return i
		}
	}
	return len(candidates) - 1
}
