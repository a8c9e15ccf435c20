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

	"github.com/paulmach/orb"
)

// Person is one agent of a travel demand population. It carries one or more
// alternative daily plans, one of which is selected.
type Person struct {
	ID    string  `json:"id"`
	Plans []*Plan `json:"plans"`

	// Vehicles maps each transport mode to the id of the vehicle this person
	// uses for it. It is filled by a VehicleAssigner.
	Vehicles map[string]string `json:"vehicles,omitempty"`
}

// SelectedPlan returns the plan flagged as selected, or the first plan if no
// plan is flagged. It returns nil for a person without plans.
func (p *Person) SelectedPlan() *Plan {
	for _, plan := range p.Plans {
		if plan.Selected {
			return plan
		}
	}
	if len(p.Plans) > 0 {
		return p.Plans[0]
	}
	return nil
}

// Plan is an ordered sequence of activities and legs.
type Plan struct {
	Selected bool          `json:"selected,omitempty"`
	Score    *float64      `json:"score,omitempty"`
	Elements []PlanElement `json:"elements"`
}

// AddActivity appends an activity to the plan.
func (p *Plan) AddActivity(a *Activity) { p.Elements = append(p.Elements, a) }

// AddLeg appends a leg to the plan.
func (p *Plan) AddLeg(l *Leg) { p.Elements = append(p.Elements, l) }

// Legs returns all legs of the plan in order.
func (p *Plan) Legs() []*Leg {
	legs := make([]*Leg, 0, len(p.Elements)/2)
	for _, e := range p.Elements {
		if l, ok := e.(*Leg); ok {
			legs = append(legs, l)
		}
	}
	return legs
}

// PlanElement is either an *Activity or a *Leg.
type PlanElement interface {
	planElement()
}

// Activity is a stay at a location.
type Activity struct {
	Type        string     `json:"type"`
	Coord       *orb.Point `json:"coord,omitempty"`
	LinkID      string     `json:"link,omitempty"`
	FacilityID  string     `json:"facility,omitempty"`
	StartTime   Time       `json:"start"`
	EndTime     Time       `json:"end"`
	MaxDuration Time       `json:"dur"`
}

func (*Activity) planElement() {}

func (a *Activity) String() string {
	return fmt.Sprintf("act[type=%s link=%s facility=%s]", a.Type, a.LinkID, a.FacilityID)
}

// Leg is a movement between two activities.
type Leg struct {
	Mode string `json:"mode"`

	// RoutingMode is the mode the enclosing trip was planned with. Empty
	// means unset.
	RoutingMode   string `json:"routingMode,omitempty"`
	Route         *Route `json:"route,omitempty"`
	DepartureTime Time   `json:"dep"`
	TravelTime    Time   `json:"trav"`
}

func (*Leg) planElement() {}

func (l *Leg) String() string {
	return fmt.Sprintf("leg[mode=%s routingMode=%s]", l.Mode, l.RoutingMode)
}

// NetworkRouteType is the Route.Type of a route running along a sequence of
// network links.
const NetworkRouteType = "links"

// GenericRouteType is the Route.Type of a teleported route.
const GenericRouteType = "generic"

// Route describes how a leg gets from its start link to its end link.
type Route struct {
	Type        string   `json:"type"`
	StartLinkID string   `json:"start,omitempty"`
	EndLinkID   string   `json:"end,omitempty"`
	LinkIDs     []string `json:"links,omitempty"`
	Distance    float64  `json:"distance"`
	TravelTime  Time     `json:"trav"`
	VehicleID   string   `json:"vehicle,omitempty"`
}

// IsNetworkRoute reports whether r runs along network links.
func (r *Route) IsNetworkRoute() bool {
	return r != nil && r.Type == NetworkRouteType
}

// Time is a point in time or a duration in seconds which may be undefined.
// The zero value is undefined.
type Time struct {
	seconds float64
	defined bool
}

// Seconds returns a defined Time.
func Seconds(s float64) Time { return Time{seconds: s, defined: true} }

// UndefinedTime is a Time without a value.
var UndefinedTime = Time{}

// IsDefined reports whether t carries a value.
func (t Time) IsDefined() bool { return t.defined }

// Seconds returns the value of t and whether it is defined.
func (t Time) Seconds() (float64, bool) { return t.seconds, t.defined }

func (t Time) String() string {
	if !t.defined {
		return "undefined"
	}
	return fmt.Sprintf("%gs", t.seconds)
}
