package upscale

import (
	"github.com/pkg/errors"
)

// MainModeIdentifier determines the mode a trip is mainly made with from its
// legs.
type MainModeIdentifier interface {
	IdentifyMainMode(legs []*Leg) (string, error)
}

// MainModeIdentifierFunc adapts a function to a MainModeIdentifier.
type MainModeIdentifierFunc func(legs []*Leg) (string, error)

// IdentifyMainMode implements MainModeIdentifier.
func (f MainModeIdentifierFunc) IdentifyMainMode(legs []*Leg) (string, error) { return f(legs) }

// DefaultMainModeIdentifier picks the routing mode of the first leg if there
// is one. Otherwise the first leg which isn't some kind of walking determines
// the main mode, and trips made only of walk legs are walk trips. Legacy walk
// modes which encode their main mode (drt_walk, transit_walk, car_fallback)
// yield that mode.
type DefaultMainModeIdentifier struct{}

// IdentifyMainMode implements MainModeIdentifier.
func (DefaultMainModeIdentifier) IdentifyMainMode(legs []*Leg) (string, error) {
	if len(legs) == 0 {
		return "", errors.New("can't identify the main mode of a trip without legs")
	}
	if legs[0].RoutingMode != "" {
		return legs[0].RoutingMode, nil
	}
	if len(legs) == 1 {
		return legs[0].Mode, nil
	}
	for _, l := range legs {
		if !isWalkMode(l.Mode) {
			return l.Mode, nil
		}
	}
	for _, l := range legs {
		if _, mainMode := migrateMode(l.Mode, false); mainMode != "" {
			return mainMode, nil
		}
	}
	return ModeWalk, nil
}
