package notify

// Deduplicate returns xs without later entries whose id was already seen.
// Order of first occurrences is kept and xs is not modified.
func Deduplicate[T any, K comparable](xs []T, id func(T) K) []T {
	out := make([]T, 0, len(xs))
	seen := make(map[K]struct{}, len(xs))
	for _, x := range xs {
		k := id(x)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, x)
	}
	return out
}

// UniqueIDs is Deduplicate for plain id lists.
func UniqueIDs(ids []uint) []uint {
	return Deduplicate(ids, func(id uint) uint { return id })
}
