// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package upscale

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Default jitter widths applied to cloned activities.
const (
	DefaultCoordJitter = 100.0
	DefaultTimeJitter  = 1800.0
)

// CloneCount returns how many clones a person gets for factor, given a
// uniform draw u in [0,1). Together with the original person this makes
// factor copies in expectation: the integer part is always realized and the
// fractional part with probability frac.
func CloneCount(factor, u float64) int {
	floor := math.Floor(factor)
	frac := factor - floor
	n := int(floor) - 1
	if frac > 0 && u <= frac {
		n++
	}
	if n < 0 {
		return 0
	}
	return n
}

// CloneID returns the id of the i-th clone of the person with id personID.
func CloneID(personID string, i int) string {
	return fmt.Sprintf("%s_cloned_%d", personID, i)
}

// Cloner synthesizes clones of a person whose activities are moved around a
// little in space and time. Clone i of every person draws from generator i
// of Streams.
type Cloner struct {
	Streams     *RandomStreams
	MainModes   MainModeIdentifier
	CoordJitter float64
	TimeJitter  float64
}

// NewCloner returns a Cloner with the default jitter widths.
func NewCloner(streams *RandomStreams, mainModes MainModeIdentifier) *Cloner {
	return &Cloner{
		Streams:     streams,
		MainModes:   mainModes,
		CoordJitter: DefaultCoordJitter,
		TimeJitter:  DefaultTimeJitter,
	}
}

// Clone returns the i-th clone of p. The clone has one plan with a jittered
// copy of every main activity of the selected plan of p, and one bare leg
// per trip carrying the trip's main mode. Routes and leg times are left
// unset for a router to fill in.
func (c *Cloner) Clone(p *Person, i int) (*Person, error) {
	plan := p.SelectedPlan()
	if plan == nil {
		return nil, &StructuralInvariantError{PersonID: p.ID, Reason: "person has no plans"}
	}
	acts := MainActivities(plan)
	trips := Trips(plan)
	if err := checkActsAndTrips(acts, trips); err != nil {
		err.(*StructuralInvariantError).PersonID = p.ID
		return nil, err
	}
	rnd := c.Streams.Stream(i)

	newPlan := &Plan{Selected: true, Elements: make([]PlanElement, 0, 2*len(acts)-1)}
	for j, act := range acts {
		newPlan.AddActivity(c.cloneActivity(act, rnd))
		if j == len(trips) {
			break
		}
		mainMode, err := c.MainModes.IdentifyMainMode(trips[j].Legs())
		if err != nil {
			return nil, errors.Wrapf(err, "identifying main mode of trip %d of person %s", j, p.ID)
		}
		newPlan.AddLeg(&Leg{Mode: mainMode})
	}

	return &Person{
		ID:    CloneID(p.ID, i),
		Plans: []*Plan{newPlan},
	}, nil
}

func (c *Cloner) cloneActivity(act *Activity, rnd *rand.Rand) *Activity {
	newAct := &Activity{Type: act.Type}
	if act.Coord != nil {
		coord := orb.Point{
			jitter(act.Coord.X(), c.CoordJitter, rnd),
			jitter(act.Coord.Y(), c.CoordJitter, rnd),
		}
		newAct.Coord = &coord
	} else {
		// nothing to move; keep the clone locatable
		newAct.LinkID = act.LinkID
	}
	newAct.StartTime = c.jitterTime(act.StartTime, rnd)
	newAct.EndTime = c.jitterTime(act.EndTime, rnd)
	newAct.MaxDuration = c.jitterTime(act.MaxDuration, rnd)
	return newAct
}

// jitterTime moves a defined time by up to TimeJitter in either direction.
// Negative results are floored at 0.
func (c *Cloner) jitterTime(t Time, rnd *rand.Rand) Time {
	s, ok := t.Seconds()
	if !ok {
		return UndefinedTime
	}
	return Seconds(math.Max(0, jitter(s, c.TimeJitter, rnd)))
}

// jitter draws uniformly from [v-width, v+width).
func jitter(v, width float64, rnd *rand.Rand) float64 {
	return v - width + 2*width*rnd.Float64()
}
