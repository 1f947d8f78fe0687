package engine

import "hash/fnv"

// Assigner picks the owning worker for a symbol at registration time. The
// assignment is permanent for the process lifetime; correctness only needs
// stickiness, not balance.
type Assigner func(symbol string, workers int) int

// RoundRobin spreads symbols over workers in registration order.
func RoundRobin() Assigner {
	next := 0
	return func(_ string, workers int) int {
		w := next % workers
		next++
		return w
	}
}

// HashAssign pins a symbol by FNV-1a hash, so placement does not depend on
// registration order.
func HashAssign() Assigner {
	return func(symbol string, workers int) int {
		h := fnv.New32a()
		_, _ = h.Write([]byte(symbol))
		return int(h.Sum32() % uint32(workers))
	}
}
