package services

import (
	"math/rand"
	"time"
)

// maxDrawAttempts bounds the rejection-sampling loop. The expected number of
// attempts is small and does not grow with group size, so hitting this bound
// means something is deeply wrong rather than bad luck.
const maxDrawAttempts = 1000

// Drawer produces secret gift assignments for a set of member identifiers.
// It is pure: no storage, no side effects. Given a fixed random source the
// output is deterministic, which the tests rely on.
type Drawer struct {
	rng *rand.Rand
}

// NewDrawer creates a Drawer seeded from the current time.
func NewDrawer() *Drawer {
	return &Drawer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewDrawerWithSource creates a Drawer with an explicit random source.
func NewDrawerWithSource(rng *rand.Rand) *Drawer {
	return &Drawer{rng: rng}
}

// Draw computes a secret pairing over the given member ids: every id gives
// to exactly one other id, receives from exactly one other id, nobody is
// paired with themselves, and following the mapping from any start visits
// every member exactly once before returning (a single cycle - no closed
// sub-loops that would split the group into isolated exchanges).
//
// The ids are shuffled with an unbiased Fisher-Yates shuffle and each member
// in canonical order is paired with the member at the next circular position
// of the shuffled order. Because the two orders are independent, the induced
// mapping can contain fixed points or decompose into several cycles; those
// samples are rejected and the shuffle repeated. Uniformity of the shuffle
// makes every valid cycle equally likely, which is the fairness guarantee
// the whole feature rests on.
//
// Fails with ErrInsufficientMembers for fewer than three ids and with
// ErrAssignmentUnsatisfiable if the retry bound is exhausted.
func (d *Drawer) Draw(memberIDs []int) (map[int]int, error) {
	if len(memberIDs) < 3 {
		return nil, ErrInsufficientMembers
	}

	n := len(memberIDs)
	shuffled := make([]int, n)
	copy(shuffled, memberIDs)

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		d.rng.Shuffle(n, func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		assignments := make(map[int]int, n)
		valid := true
		for i, giver := range memberIDs {
			receiver := shuffled[(i+1)%n]
			if giver == receiver {
				valid = false
				break
			}
			assignments[giver] = receiver
		}

		if valid && isSingleCycle(assignments, memberIDs) {
			return assignments, nil
		}
	}

	return nil, ErrAssignmentUnsatisfiable
}

// isSingleCycle reports whether following the mapping from the first member
// visits every member exactly once before returning to the start.
func isSingleCycle(assignments map[int]int, memberIDs []int) bool {
	start := memberIDs[0]
	visited := make(map[int]bool, len(memberIDs))
	current := start

	for !visited[current] {
		visited[current] = true
		next, ok := assignments[current]
		if !ok {
			return false
		}
		current = next
	}

	return current == start && len(visited) == len(memberIDs)
}
