package upscale_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/test"
)

func TestSanitize(t *testing.T) {
	work := test.Act("work", 0, 0, "", 7200)
	work.Coord = nil
	work.FacilityID = "f1"
	selected := &upscale.Plan{Selected: true, Elements: []upscale.PlanElement{
		test.Act("home", 0, 0, "1", 3600),
		test.Leg("car", "car"),
		work,
		test.Leg("car", "car"),
		test.Act("home", 0, 0, "1", -1),
	}}
	p := &upscale.Person{ID: "1", Plans: []*upscale.Plan{{}, selected, {}}}

	s := &upscale.Sanitizer{Facilities: upscale.NewMapFacilities(upscale.Facility{ID: "f1", Coord: orb.Point{5, 6}, LinkID: "7"})}
	test.ErrNil(t, s.Sanitize(p), "sanitizing")

	if len(p.Plans) != 1 || p.Plans[0] != selected {
		t.Fatalf("expected only the selected plan, got %v", p.Plans)
	}
	test.MustBe(t, work.LinkID, "7")
	test.MustBe(t, *work.Coord, orb.Point{5, 6})
}

func TestSanitizeMissingFacility(t *testing.T) {
	noFacility := test.Act("work", 0, 0, "", 7200)
	unknownFacility := test.Act("work", 0, 0, "", 7200)
	unknownFacility.FacilityID = "nope"

	for _, act := range []*upscale.Activity{noFacility, unknownFacility} {
		p := test.Person("1",
			test.Act("home", 0, 0, "1", 3600),
			test.Leg("car", ""),
			act,
		)
		s := &upscale.Sanitizer{Facilities: upscale.NewMapFacilities()}
		err := s.Sanitize(p)
		mfe, ok := errors.Cause(err).(*upscale.MissingFacilityError)
		if !ok {
			t.Fatalf("expected a MissingFacilityError, got %v", err)
		}
		test.MustBe(t, mfe.PersonID, "1")
		if !upscale.IsPersonError(err) {
			t.Fatal("a missing facility should only invalidate its person")
		}
	}
}

func TestSanitizeIgnoresStageActivities(t *testing.T) {
	p := test.Person("1",
		test.Act("home", 0, 0, "1", 3600),
		test.Leg("walk", "pt"),
		test.Act("pt interaction", 0, 0, "", -1),
		test.Leg("pt", "pt"),
		test.Act("work", 0, 0, "2", -1),
	)
	s := &upscale.Sanitizer{}
	test.ErrNil(t, s.Sanitize(p), "sanitizing")
}
