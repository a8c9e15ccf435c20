package upscale

import (
	"github.com/pkg/errors"
)

// Sanitizer reduces a person to its selected plan and repairs main
// activities which lack a link by copying coordinate and link from their
// facility.
type Sanitizer struct {
	Facilities FacilityResolver
	Log        Logger
}

// Sanitize mutates p in place.
func (s *Sanitizer) Sanitize(p *Person) error {
	plan := p.SelectedPlan()
	if plan == nil {
		return &StructuralInvariantError{PersonID: p.ID, Reason: "person has no plans"}
	}
	plan.Selected = true
	p.Plans = []*Plan{plan}

	for _, a := range MainActivities(plan) {
		if a.LinkID != "" {
			continue
		}
		if a.FacilityID == "" || s.Facilities == nil {
			return &MissingFacilityError{PersonID: p.ID, Activity: a, FacilityID: a.FacilityID, Err: ErrFacilityNotFound}
		}
		f, err := s.Facilities.Facility(a.FacilityID)
		if err != nil {
			return &MissingFacilityError{PersonID: p.ID, Activity: a, FacilityID: a.FacilityID, Err: errors.Wrap(err, "resolving")}
		}
		coord := f.Coord
		a.Coord = &coord
		a.LinkID = f.LinkID
		s.logger().Printf("found empty activity of person %s. adding coord %v and link-id %s from facility %s", p.ID, coord, f.LinkID, f.ID)
	}
	return nil
}

func (s *Sanitizer) logger() Logger {
	if s.Log == nil {
		return NopLogger{}
	}
	return s.Log
}
