package scrollable

// removeFirst deletes the first item matching pred and returns the shortened
// slice, the removed item, and whether anything matched. Order is preserved.
func removeFirst[T any](s []T, pred func(T) bool) ([]T, T, bool) {
	for i, v := range s {
		if pred(v) {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1], v, true
		}
	}
	var zero T
	return s, zero, false
}

// eachReverse calls fn from the last item to the first, stopping when fn
// returns false.
func eachReverse[T any](s []T, fn func(int, T) bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if !fn(i, s[i]) {
			return
		}
	}
}

// insertAt inserts v before index i.
func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
