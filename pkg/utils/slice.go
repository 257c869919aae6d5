// Package utils holds small generic helpers shared across packages.
package utils

// Map each element in sli with mapper.
//
// The result has the same length as sli, and the N-th element is mapper(sli[N]).
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}
