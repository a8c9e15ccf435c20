package upscale

// TransitFilter classifies persons as transit users.
type TransitFilter struct {
	Mode string
}

// NewTransitFilter returns a filter for the pt mode.
func NewTransitFilter() TransitFilter {
	return TransitFilter{Mode: ModePT}
}

// IsTransitPerson reports whether any leg of the selected plan uses the
// transit mode, either as its mode or as its routing mode.
func (f TransitFilter) IsTransitPerson(p *Person) bool {
	plan := p.SelectedPlan()
	if plan == nil {
		return false
	}
	for _, l := range plan.Legs() {
		if l.Mode == f.Mode || l.RoutingMode == f.Mode {
			return true
		}
	}
	return false
}
