package upscale_test

import (
	"math"
	"testing"

	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/test"
)

func TestTeleportationRouter(t *testing.T) {
	p := test.Person("1",
		test.Act("home", 0, 0, "1", 3600),
		test.Leg("walk", "walk"),
		test.Act("shop", 300, 400, "2", 7200),
		test.Leg("car", "car"),
		test.Act("home", 0, 0, "1", -1),
	)
	pr := upscale.PlanRouter{Router: upscale.NewTeleportationRouter()}
	test.ErrNil(t, pr.RoutePlan(p.SelectedPlan()), "routing")

	legs := p.SelectedPlan().Legs()
	walk := legs[0]
	test.MustBe(t, walk.Route.Type, upscale.GenericRouteType)
	test.MustBe(t, walk.Route.StartLinkID, "1")
	test.MustBe(t, walk.Route.EndLinkID, "2")
	if math.Abs(walk.Route.Distance-650) > 1e-9 {
		t.Errorf("walk distance %v", walk.Route.Distance)
	}
	tt, _ := walk.TravelTime.Seconds()
	if math.Abs(tt-650/(3.0/3.6)) > 1e-9 {
		t.Errorf("walk travel time %v", tt)
	}
	dep, _ := walk.DepartureTime.Seconds()
	test.MustBe(t, dep, 3600.0)
	dep, _ = legs[1].DepartureTime.Seconds()
	test.MustBe(t, dep, 7200.0)
	if legs[1].Route.IsNetworkRoute() {
		t.Fatal("teleported route claims to be a network route")
	}
}

func TestTeleportationRouterUnknownMode(t *testing.T) {
	p := test.Person("1",
		test.Act("home", 0, 0, "1", 3600),
		test.Leg("hoverboard", "hoverboard"),
		test.Act("work", 300, 400, "2", -1),
	)
	pr := upscale.PlanRouter{Router: upscale.NewTeleportationRouter()}
	if err := pr.RoutePlan(p.SelectedPlan()); err == nil {
		t.Fatal("expected an error for a mode without speed")
	}
}
