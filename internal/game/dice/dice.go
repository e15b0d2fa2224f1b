// Package dice provides the randomness abstraction used by skill allocation.
package dice

import "fmt"

// Source is the randomness provider for every random draw.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// IntRange draws a uniform int from the inclusive range [lo, hi].
//
// Precondition: lo <= hi; src must be non-nil.
// Postcondition: lo <= result <= hi.
func IntRange(src Source, lo, hi int) int {
	if lo > hi {
		panic(fmt.Sprintf("dice: IntRange called with lo %d > hi %d", lo, hi))
	}
	return lo + src.Intn(hi-lo+1)
}
