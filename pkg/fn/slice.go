package fn

// Map returns f applied to every item. The result is never nil.
func Map[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i := range items {
		out[i] = f(items[i])
	}
	return out
}

// Filter keeps the items pred accepts, in order. It returns nil when none
// are kept; callers that encode the result should substitute an empty slice.
func Filter[T any](items []T, pred func(T) bool) []T {
	return FilterMap(items, func(v T) (T, bool) { return v, pred(v) })
}

// FilterMap maps each item with f and drops those it rejects.
func FilterMap[T, U any](items []T, f func(T) (U, bool)) []U {
	var out []U
	for _, v := range items {
		u, keep := f(v)
		if keep {
			out = append(out, u)
		}
	}
	return out
}

// Unique drops repeats, keeping the first occurrence of each value.
func Unique[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	return Filter(items, func(v T) bool {
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
		return true
	})
}

// Set indexes items for membership tests.
func Set[T comparable](items []T) map[T]struct{} {
	out := make(map[T]struct{}, len(items))
	for _, v := range items {
		out[v] = struct{}{}
	}
	return out
}
