package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundRobinCyclesWorkers(t *testing.T) {
	assign := RoundRobin()
	got := make([]int, 0, 6)
	for _, s := range []string{"A", "B", "C", "D", "E", "F"} {
		got = append(got, assign(s, 3))
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, got)
}

func TestHashAssignDeterministic(t *testing.T) {
	assign := HashAssign()
	for _, s := range []string{"MSFT", "AAPL", "GOOG", "BRK.A"} {
		first := assign(s, 7)
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 7)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, assign(s, 7))
		}
	}
}
