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
	"strings"

	"github.com/pkg/errors"
)

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

// ErrFacilityNotFound is returned by a FacilityResolver which does not know
// the requested facility.
const ErrFacilityNotFound = Error("facility not found")

// ErrDuplicateVehicle is returned by a VehicleRegistry when a vehicle id is
// registered twice.
const ErrDuplicateVehicle = Error("vehicle id already registered")

// MissingFacilityError means an activity can't be located: it has no link and
// its facility is unset or unknown.
type MissingFacilityError struct {
	PersonID   string
	Activity   *Activity
	FacilityID string
	Err        error
}

func (e *MissingFacilityError) Error() string {
	if e.FacilityID == "" {
		return fmt.Sprintf("person %s: %v has neither a link nor a facility", e.PersonID, e.Activity)
	}
	return fmt.Sprintf("person %s: resolving facility %s for %v: %v", e.PersonID, e.FacilityID, e.Activity, e.Err)
}

// StructuralInvariantError means a plan is not a proper alternation of
// activities and legs, or its main activities don't outnumber its trips by
// exactly one. Upstream data is not to be trusted after this.
type StructuralInvariantError struct {
	PersonID   string
	Activities int
	Trips      int
	Reason     string
}

func (e *StructuralInvariantError) Error() string {
	if e.Activities == 0 && e.Trips == 0 {
		return fmt.Sprintf("person %s: malformed plan: %s", e.PersonID, e.Reason)
	}
	return fmt.Sprintf("person %s: malformed plan with %d main activities and %d trips: %s. Plans must look like Activity->Leg->Activity->Leg->Activity",
		e.PersonID, e.Activities, e.Trips, e.Reason)
}

// InconsistentTripModeError means the legs of a trip disagree on their
// routing mode.
type InconsistentTripModeError struct {
	PersonID string
	Trip     Trip
	Mixed    bool
}

func (e *InconsistentTripModeError) Error() string {
	if e.Mixed {
		return fmt.Sprintf("found a mixed trip having some legs with routingMode set and others without. Agent id: %s\nTrip: %v", e.PersonID, e.Trip)
	}
	return fmt.Sprintf("found a trip whose legs have different routingModes. Agent id: %s\nTrip: %v", e.PersonID, e.Trip)
}

// UnresolvedRoutingModeError means a trip with several legs and no routing
// mode was found while no MainModeIdentifier is configured.
type UnresolvedRoutingModeError struct {
	PersonID string
	Trip     Trip
}

func (e *UnresolvedRoutingModeError) Error() string {
	return fmt.Sprintf("found a trip with multiple legs and no routingMode. Person id %s\nTrip: %v\nconfigure a main mode identifier to resolve it", e.PersonID, e.Trip)
}

// IsPersonError reports whether err, after unwrapping, only invalidates the
// person it occurred for. Structural errors are not person errors: they
// always abort a run.
func IsPersonError(err error) bool {
	switch errors.Cause(err).(type) {
	case *MissingFacilityError, *InconsistentTripModeError, *UnresolvedRoutingModeError:
		return true
	}
	return false
}

// Errors collects the errors of operations which are all attempted even if
// some fail, like closing several sinks.
type Errors []error

func (errs Errors) Error() string {
	errstrings := make([]string, len(errs))
	for i, err := range errs {
		errstrings[i] = err.Error()
	}
	return strings.Join(errstrings, "; ")
}
