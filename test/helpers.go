package test

import (
	"reflect"
	"testing"

	"github.com/paulmach/orb"
	"github.com/qsimtools/upscale"
)

// MustBe uses reflect.DeepEqual to assert that thing1 and thing2 are equal, and
// fails otherwise.
func MustBe(t *testing.T, thing1, thing2 interface{}, context ...string) {
	t.Helper()
	var ctx string
	if len(context) == 0 {
		ctx = ""
	} else {
		ctx = context[0] + ": "
	}
	if !reflect.DeepEqual(thing1, thing2) {
		t.Fatalf("%v'%#v' != '%#v'", ctx, thing1, thing2)
	}
}

// ErrNil asserts that the err is nil and fails otherwise.
func ErrNil(t *testing.T, err error, ctx string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v: %v", ctx, err)
	}
}

// Person returns a person with a single selected plan made of elems.
func Person(id string, elems ...upscale.PlanElement) *upscale.Person {
	return &upscale.Person{
		ID:    id,
		Plans: []*upscale.Plan{{Selected: true, Elements: elems}},
	}
}

// Act returns an activity at (x, y) on link which ends at end seconds. A
// negative end leaves the end time undefined.
func Act(typ string, x, y float64, link string, end float64) *upscale.Activity {
	a := &upscale.Activity{
		Type:   typ,
		Coord:  &orb.Point{x, y},
		LinkID: link,
	}
	if end >= 0 {
		a.EndTime = upscale.Seconds(end)
	}
	return a
}

// Leg returns a leg with mode and routing mode.
func Leg(mode, routingMode string) *upscale.Leg {
	return &upscale.Leg{Mode: mode, RoutingMode: routingMode}
}

// HomeWorkHome returns a person going from home to work and back by mode.
func HomeWorkHome(id, mode string) *upscale.Person {
	return Person(id,
		Act("home", 0, 0, "1", 8*3600),
		Leg(mode, mode),
		Act("work", 1000, 500, "2", 17*3600),
		Leg(mode, mode),
		Act("home", 0, 0, "1", -1),
	)
}
