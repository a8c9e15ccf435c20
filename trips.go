package upscale

import (
	"fmt"
	"strings"
)

// StageActivitySuffix marks activity types which are transient stages of a
// trip (e.g. "pt interaction") rather than destinations.
const StageActivitySuffix = " interaction"

// IsStageActivity reports whether a is a stage activity.
func IsStageActivity(a *Activity) bool {
	return strings.HasSuffix(a.Type, StageActivitySuffix)
}

// Trip is a maximal run of legs (and stage activities) between two main
// activities of a plan. Trips are derived from a plan, never stored.
type Trip struct {
	Origin      *Activity
	Destination *Activity
	Elements    []PlanElement
}

// Legs returns the legs of the trip.
func (t Trip) Legs() []*Leg {
	legs := make([]*Leg, 0, len(t.Elements))
	for _, e := range t.Elements {
		if l, ok := e.(*Leg); ok {
			legs = append(legs, l)
		}
	}
	return legs
}

func (t Trip) String() string {
	parts := make([]string, 0, len(t.Elements)+2)
	parts = append(parts, t.Origin.String())
	for _, e := range t.Elements {
		parts = append(parts, fmt.Sprint(e))
	}
	parts = append(parts, t.Destination.String())
	return "[" + strings.Join(parts, ", ") + "]"
}

// MainActivities returns the activities of plan which are not stage
// activities.
func MainActivities(plan *Plan) []*Activity {
	acts := make([]*Activity, 0, len(plan.Elements)/2+1)
	for _, e := range plan.Elements {
		if a, ok := e.(*Activity); ok && !IsStageActivity(a) {
			acts = append(acts, a)
		}
	}
	return acts
}

// Trips splits plan into trips. Two main activities without a leg between
// them do not form a trip.
func Trips(plan *Plan) []Trip {
	var trips []Trip
	var origin *Activity
	var current []PlanElement
	hasLeg := false
	for _, e := range plan.Elements {
		switch et := e.(type) {
		case *Activity:
			if IsStageActivity(et) {
				if origin != nil {
					current = append(current, et)
				}
				continue
			}
			if origin != nil && hasLeg {
				trips = append(trips, Trip{Origin: origin, Destination: et, Elements: current})
			}
			origin, current, hasLeg = et, nil, false
		case *Leg:
			if origin != nil {
				current = append(current, et)
				hasLeg = true
			}
		}
	}
	return trips
}

// CheckPlan verifies that plan has exactly one main activity more than it
// has trips, and that it alternates between activities and legs, starting
// and ending with an activity.
func CheckPlan(plan *Plan) error {
	if plan == nil || len(plan.Elements) == 0 {
		return &StructuralInvariantError{Reason: "plan has no elements"}
	}
	if err := checkActsAndTrips(MainActivities(plan), Trips(plan)); err != nil {
		return err
	}
	for i, e := range plan.Elements {
		_, isAct := e.(*Activity)
		if isAct != (i%2 == 0) {
			return &StructuralInvariantError{Reason: fmt.Sprintf("element %d (%v) breaks the activity/leg alternation", i, e)}
		}
	}
	if _, ok := plan.Elements[len(plan.Elements)-1].(*Activity); !ok {
		return &StructuralInvariantError{Reason: "plan ends with a leg"}
	}
	return nil
}

func checkActsAndTrips(acts []*Activity, trips []Trip) error {
	if len(acts) != len(trips)+1 {
		return &StructuralInvariantError{
			Activities: len(acts),
			Trips:      len(trips),
			Reason:     "expected one more main activity than trips",
		}
	}
	return nil
}
