package upscale

import (
	"math"
	"math/rand"
)

// RandomStreams holds one deterministic generator per clone index. Generator
// i is seeded with i and is reused for the i-th clone of every person, so the
// same factor and input order always produce the same clones.
type RandomStreams struct {
	rnds []*rand.Rand
}

// NewRandomStreams returns the generators needed for an upscaling factor:
// max(0, ceil(factor)-1) of them.
func NewRandomStreams(factor float64) *RandomStreams {
	n := MaxClones(factor)
	rs := &RandomStreams{rnds: make([]*rand.Rand, n)}
	for i := range rs.rnds {
		rs.rnds[i] = rand.New(rand.NewSource(int64(i)))
	}
	return rs
}

// Len returns the number of generators.
func (rs *RandomStreams) Len() int { return len(rs.rnds) }

// Stream returns the generator of clone index i. It panics if i is out of
// range. A generator must not be used by two goroutines at once.
func (rs *RandomStreams) Stream(i int) *rand.Rand { return rs.rnds[i] }

// MaxClones is the largest number of clones CloneCount can return for factor.
func MaxClones(factor float64) int {
	n := int(math.Ceil(factor)) - 1
	if n < 0 {
		return 0
	}
	return n
}
