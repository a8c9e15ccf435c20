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
	"strings"
)

// Transport modes the upscaler knows by name.
const (
	ModeCar            = "car"
	ModePT             = "pt"
	ModeWalk           = "walk"
	ModeBike           = "bike"
	ModeRide           = "ride"
	ModeNonNetworkWalk = "non_network_walk"

	// legacy modes, only ever read
	ModeAccessWalk  = "access_walk"
	ModeEgressWalk  = "egress_walk"
	ModeTransitWalk = "transit_walk"

	legacyWalkSuffix     = "_walk"
	legacyFallbackSuffix = "_fallback"
)

// isWalkMode reports whether mode is walking in any of its current or legacy
// spellings.
func isWalkMode(mode string) bool {
	return mode == ModeWalk ||
		strings.HasSuffix(mode, legacyWalkSuffix) ||
		strings.HasSuffix(mode, legacyFallbackSuffix)
}

// ModeNormalizer gives every trip of a plan one consistent routing mode and
// migrates deprecated walk modes to their current names.
//
// non_network_walk is rewritten to walk only on trips which carry no routing
// mode yet and contain a non-walk leg. Tagged trips keep their
// non_network_walk legs, so normalizing a normalized plan changes nothing.
type ModeNormalizer struct {
	// MainModes identifies the routing mode of multi-leg trips which have
	// none. If nil, such trips are an error.
	MainModes MainModeIdentifier
	Log       Logger
}

// Normalize normalizes every trip of the selected plan of p. Applying it to
// an already normalized plan changes nothing.
func (n *ModeNormalizer) Normalize(p *Person) error {
	plan := p.SelectedPlan()
	if plan == nil {
		return nil
	}
	for _, trip := range Trips(plan) {
		if err := n.normalizeTrip(p.ID, trip); err != nil {
			return err
		}
	}
	return nil
}

func (n *ModeNormalizer) normalizeTrip(personID string, trip Trip) error {
	legs := trip.Legs()
	if len(legs) == 0 {
		return nil
	}
	routingMode := legs[0].RoutingMode
	for _, l := range legs {
		if (l.RoutingMode == "") != (routingMode == "") {
			return &InconsistentTripModeError{PersonID: personID, Trip: trip, Mixed: true}
		}
		if l.RoutingMode != routingMode {
			return &InconsistentTripModeError{PersonID: personID, Trip: trip}
		}
	}
	legacy := routingMode == ""
	if legacy && len(legs) > 1 && n.MainModes == nil {
		return &UnresolvedRoutingModeError{PersonID: personID, Trip: trip}
	}

	for _, l := range legs {
		if l.Mode == ModeWalk && l.Route.IsNetworkRoute() {
			n.logger().Printf("person %s: found a walk leg with a network route. walk legs are routed on the walk router, not the network. trip: %v", personID, trip)
		}
	}

	accessToVehicle := false
	for _, l := range legs {
		if !isWalkMode(l.Mode) {
			accessToVehicle = true
			break
		}
	}

	override := ""
	for _, l := range legs {
		mode, mainMode := migrateMode(l.Mode, legacy && accessToVehicle)
		l.Mode = mode
		if override == "" {
			override = mainMode
		}
	}

	if legacy {
		switch {
		case override != "":
			routingMode = override
		case len(legs) == 1:
			routingMode = legs[0].Mode
		default:
			mm, err := n.MainModes.IdentifyMainMode(legs)
			if err != nil {
				return &UnresolvedRoutingModeError{PersonID: personID, Trip: trip}
			}
			routingMode = mm
		}
	}
	for _, l := range legs {
		l.RoutingMode = routingMode
	}
	return nil
}

// migrateMode maps a possibly deprecated leg mode to its current name. The
// first matching rule wins. If the old name encoded the main mode of the
// trip, it is returned as well. nonNetworkWalkToWalk enables the rewrite of
// non_network_walk as access or egress to a vehicle mode.
func migrateMode(mode string, nonNetworkWalkToWalk bool) (newMode, mainMode string) {
	switch {
	case mode == ModeAccessWalk || mode == ModeEgressWalk:
		return ModeNonNetworkWalk, ""
	case mode == ModeNonNetworkWalk:
		if nonNetworkWalkToWalk {
			return ModeWalk, ""
		}
		return mode, ""
	case mode == ModeTransitWalk:
		return ModeWalk, ModePT
	case strings.HasSuffix(mode, legacyWalkSuffix):
		return ModeWalk, strings.TrimSuffix(mode, legacyWalkSuffix)
	case strings.HasSuffix(mode, legacyFallbackSuffix):
		return ModeWalk, strings.TrimSuffix(mode, legacyFallbackSuffix)
	}
	return mode, ""
}

func (n *ModeNormalizer) logger() Logger {
	if n.Log == nil {
		return NopLogger{}
	}
	return n.Log
}
