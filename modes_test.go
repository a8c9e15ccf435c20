package upscale_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/test"
)

func trip(legs ...*upscale.Leg) *upscale.Person {
	elems := []upscale.PlanElement{test.Act("home", 0, 0, "1", 3600)}
	for i, l := range legs {
		elems = append(elems, l)
		if i < len(legs)-1 {
			elems = append(elems, test.Act("bus interaction", 0, 0, "2", -1))
		}
	}
	elems = append(elems, test.Act("work", 0, 0, "3", -1))
	return test.Person("1", elems...)
}

func modes(p *upscale.Person) (modes, routingModes []string) {
	for _, l := range p.SelectedPlan().Legs() {
		modes = append(modes, l.Mode)
		routingModes = append(routingModes, l.RoutingMode)
	}
	return modes, routingModes
}

func TestNormalizeAccessEgressWalk(t *testing.T) {
	n := &upscale.ModeNormalizer{MainModes: upscale.DefaultMainModeIdentifier{}}
	for _, tagged := range []string{"", "bus"} {
		p := trip(test.Leg("access_walk", tagged), test.Leg("bus", tagged), test.Leg("egress_walk", tagged))
		test.ErrNil(t, n.Normalize(p), "normalizing")
		ms, rms := modes(p)
		test.MustBe(t, ms, []string{"non_network_walk", "bus", "non_network_walk"}, tagged)
		test.MustBe(t, rms, []string{"bus", "bus", "bus"}, tagged)
	}
}

func TestNormalizeLegacyModes(t *testing.T) {
	n := &upscale.ModeNormalizer{MainModes: upscale.DefaultMainModeIdentifier{}}
	tests := []struct {
		name      string
		legs      []*upscale.Leg
		wantModes []string
		wantRM    string
	}{
		{
			name:      "single leg adopts its mode",
			legs:      []*upscale.Leg{test.Leg("car", "")},
			wantModes: []string{"car"},
			wantRM:    "car",
		},
		{
			name:      "transit walk",
			legs:      []*upscale.Leg{test.Leg("transit_walk", "")},
			wantModes: []string{"walk"},
			wantRM:    "pt",
		},
		{
			name:      "drt walk",
			legs:      []*upscale.Leg{test.Leg("drt_walk", "")},
			wantModes: []string{"walk"},
			wantRM:    "drt",
		},
		{
			name:      "fallback",
			legs:      []*upscale.Leg{test.Leg("taxi_fallback", "")},
			wantModes: []string{"walk"},
			wantRM:    "taxi",
		},
		{
			name:      "non network walk to a vehicle",
			legs:      []*upscale.Leg{test.Leg("non_network_walk", ""), test.Leg("car", ""), test.Leg("non_network_walk", "")},
			wantModes: []string{"walk", "car", "walk"},
			wantRM:    "car",
		},
		{
			name:      "lone non network walk",
			legs:      []*upscale.Leg{test.Leg("non_network_walk", "")},
			wantModes: []string{"non_network_walk"},
			wantRM:    "non_network_walk",
		},
		{
			name:      "tagged trip keeps its routing mode",
			legs:      []*upscale.Leg{test.Leg("drt_walk", "drt2"), test.Leg("drt", "drt2")},
			wantModes: []string{"walk", "drt"},
			wantRM:    "drt2",
		},
		{
			name:      "drt access walks",
			legs:      []*upscale.Leg{test.Leg("drt_walk", ""), test.Leg("drt", ""), test.Leg("drt_walk", "")},
			wantModes: []string{"walk", "drt", "walk"},
			wantRM:    "drt",
		},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			p := trip(tst.legs...)
			test.ErrNil(t, n.Normalize(p), "normalizing")
			ms, rms := modes(p)
			test.MustBe(t, ms, tst.wantModes)
			for _, rm := range rms {
				test.MustBe(t, rm, tst.wantRM)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := &upscale.ModeNormalizer{MainModes: upscale.DefaultMainModeIdentifier{}}
	persons := []*upscale.Person{
		trip(test.Leg("access_walk", ""), test.Leg("bus", ""), test.Leg("egress_walk", "")),
		trip(test.Leg("non_network_walk", ""), test.Leg("car", ""), test.Leg("non_network_walk", "")),
		trip(test.Leg("transit_walk", "")),
		trip(test.Leg("drt_fallback", "")),
		trip(test.Leg("bike", "")),
		trip(test.Leg("walk", ""), test.Leg("car", ""), test.Leg("walk", "")),
	}
	for _, p := range persons {
		test.ErrNil(t, n.Normalize(p), "first pass")
		ms1, rms1 := modes(p)
		test.ErrNil(t, n.Normalize(p), "second pass")
		ms2, rms2 := modes(p)
		test.MustBe(t, ms2, ms1)
		test.MustBe(t, rms2, rms1)
	}
}

func TestNormalizeKeepsTaggedNonNetworkWalk(t *testing.T) {
	n := &upscale.ModeNormalizer{}
	p := trip(test.Leg("non_network_walk", "car"), test.Leg("car", "car"), test.Leg("non_network_walk", "car"))
	test.ErrNil(t, n.Normalize(p), "normalizing")
	ms, rms := modes(p)
	test.MustBe(t, ms, []string{"non_network_walk", "car", "non_network_walk"})
	test.MustBe(t, rms, []string{"car", "car", "car"})

	p = trip(test.Leg("non_network_walk", ""), test.Leg("car", ""), test.Leg("non_network_walk", ""))
	n.MainModes = upscale.DefaultMainModeIdentifier{}
	test.ErrNil(t, n.Normalize(p), "normalizing untagged")
	ms, _ = modes(p)
	test.MustBe(t, ms, []string{"walk", "car", "walk"})
}

func TestNormalizeInconsistent(t *testing.T) {
	n := &upscale.ModeNormalizer{MainModes: upscale.DefaultMainModeIdentifier{}}
	for _, p := range []*upscale.Person{
		trip(test.Leg("walk", "car"), test.Leg("car", "")),
		trip(test.Leg("walk", ""), test.Leg("car", "car")),
		trip(test.Leg("walk", "car"), test.Leg("car", "ride")),
	} {
		err := n.Normalize(p)
		e, ok := errors.Cause(err).(*upscale.InconsistentTripModeError)
		if !ok {
			t.Fatalf("expected an InconsistentTripModeError, got %v", err)
		}
		test.MustBe(t, e.PersonID, "1")
		if len(e.Trip.Legs()) != 2 {
			t.Errorf("expected the offending trip in the error, got %v", e.Trip)
		}
	}
}

func TestNormalizeUnresolved(t *testing.T) {
	n := &upscale.ModeNormalizer{}
	err := n.Normalize(trip(test.Leg("walk", ""), test.Leg("car", "")))
	if _, ok := errors.Cause(err).(*upscale.UnresolvedRoutingModeError); !ok {
		t.Fatalf("expected an UnresolvedRoutingModeError, got %v", err)
	}

	// single legs and tagged trips need no identifier
	test.ErrNil(t, n.Normalize(trip(test.Leg("car", ""))), "single leg")
	test.ErrNil(t, n.Normalize(trip(test.Leg("walk", "car"), test.Leg("car", "car"))), "tagged")

	failing := upscale.MainModeIdentifierFunc(func([]*upscale.Leg) (string, error) {
		return "", errors.New("no idea")
	})
	n = &upscale.ModeNormalizer{MainModes: failing}
	err = n.Normalize(trip(test.Leg("walk", ""), test.Leg("car", "")))
	if _, ok := errors.Cause(err).(*upscale.UnresolvedRoutingModeError); !ok {
		t.Fatalf("expected an UnresolvedRoutingModeError, got %v", err)
	}
}

func TestDefaultMainModeIdentifier(t *testing.T) {
	id := upscale.DefaultMainModeIdentifier{}
	tests := []struct {
		legs []*upscale.Leg
		want string
	}{
		{[]*upscale.Leg{test.Leg("walk", "car"), test.Leg("car", "car")}, "car"},
		{[]*upscale.Leg{test.Leg("access_walk", "")}, "access_walk"},
		{[]*upscale.Leg{test.Leg("walk", ""), test.Leg("bus", ""), test.Leg("walk", "")}, "bus"},
		{[]*upscale.Leg{test.Leg("drt_walk", ""), test.Leg("drt_walk", "")}, "drt"},
		{[]*upscale.Leg{test.Leg("walk", ""), test.Leg("non_network_walk", "")}, "walk"},
	}
	for _, tst := range tests {
		got, err := id.IdentifyMainMode(tst.legs)
		test.ErrNil(t, err, "identifying")
		test.MustBe(t, got, tst.want)
	}
	if _, err := id.IdentifyMainMode(nil); err == nil {
		t.Fatal("expected an error for a trip without legs")
	}
}
