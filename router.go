package upscale

import (
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// Router computes a route for one leg between two activities, departing at
// the given time.
type Router interface {
	Route(from, to *Activity, leg *Leg, departure float64) (*Route, error)
}

// PlanRouter routes every leg of a plan, keeping track of the time along the
// way. It accepts freshly cloned plans whose legs have no route and no times.
type PlanRouter struct {
	Router Router
}

// RoutePlan sets route, departure time and travel time on each leg of plan.
func (pr PlanRouter) RoutePlan(plan *Plan) error {
	now := 0.0
	for i, e := range plan.Elements {
		switch et := e.(type) {
		case *Activity:
			if end, ok := et.EndTime.Seconds(); ok {
				now = end
			} else if dur, ok := et.MaxDuration.Seconds(); ok {
				now += dur
			}
		case *Leg:
			if i == 0 || i == len(plan.Elements)-1 {
				return errors.Errorf("leg at %d has no surrounding activities", i)
			}
			from, ok1 := plan.Elements[i-1].(*Activity)
			to, ok2 := plan.Elements[i+1].(*Activity)
			if !ok1 || !ok2 {
				return errors.Errorf("leg at %d has no surrounding activities", i)
			}
			route, err := pr.Router.Route(from, to, et, now)
			if err != nil {
				return errors.Wrapf(err, "routing leg %d", i)
			}
			et.Route = route
			et.DepartureTime = Seconds(now)
			et.TravelTime = route.TravelTime
			if tt, ok := route.TravelTime.Seconds(); ok {
				now += tt
			}
		}
	}
	return nil
}

// DefaultTeleportSpeeds are the speeds in m/s modes are teleported with.
var DefaultTeleportSpeeds = map[string]float64{
	ModeWalk:           3.0 / 3.6,
	ModeNonNetworkWalk: 3.0 / 3.6,
	ModeBike:           15.0 / 3.6,
	ModeRide:           30.0 / 3.6,
	ModeCar:            30.0 / 3.6,
}

// DefaultBeelineFactor is the ratio of travelled to beeline distance.
const DefaultBeelineFactor = 1.3

// TeleportationRouter moves agents along the beeline between activities at a
// fixed speed per mode.
type TeleportationRouter struct {
	Speeds        map[string]float64
	BeelineFactor float64
}

// NewTeleportationRouter returns a router using DefaultTeleportSpeeds and
// DefaultBeelineFactor.
func NewTeleportationRouter() *TeleportationRouter {
	return &TeleportationRouter{
		Speeds:        DefaultTeleportSpeeds,
		BeelineFactor: DefaultBeelineFactor,
	}
}

// Route implements Router.
func (r *TeleportationRouter) Route(from, to *Activity, leg *Leg, departure float64) (*Route, error) {
	speed, ok := r.Speeds[leg.Mode]
	if !ok || speed <= 0 {
		return nil, errors.Errorf("no teleportation speed for mode '%s'", leg.Mode)
	}
	if from.Coord == nil || to.Coord == nil {
		return nil, errors.Errorf("can't teleport %s from %v to %v without coordinates", leg.Mode, from, to)
	}
	dist := planar.Distance(*from.Coord, *to.Coord) * r.BeelineFactor
	return &Route{
		Type:        GenericRouteType,
		StartLinkID: from.LinkID,
		EndLinkID:   to.LinkID,
		Distance:    dist,
		TravelTime:  Seconds(dist / speed),
	}, nil
}
