package upscale

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// MarshalJSON encodes an undefined Time as null and a defined one as its
// number of seconds.
func (t Time) MarshalJSON() ([]byte, error) {
	if !t.defined {
		return []byte("null"), nil
	}
	return json.Marshal(t.seconds)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = UndefinedTime
		return nil
	}
	var s float64
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "decoding time")
	}
	*t = Seconds(s)
	return nil
}

// planElementJSON is the wire shape of a PlanElement. Exactly one of the two
// fields is set.
type planElementJSON struct {
	Activity *Activity `json:"activity,omitempty"`
	Leg      *Leg      `json:"leg,omitempty"`
}

type planJSON struct {
	Selected bool              `json:"selected,omitempty"`
	Score    *float64          `json:"score,omitempty"`
	Elements []planElementJSON `json:"elements"`
}

// MarshalJSON implements json.Marshaler.
func (p *Plan) MarshalJSON() ([]byte, error) {
	pj := planJSON{
		Selected: p.Selected,
		Score:    p.Score,
		Elements: make([]planElementJSON, len(p.Elements)),
	}
	for i, e := range p.Elements {
		switch et := e.(type) {
		case *Activity:
			pj.Elements[i].Activity = et
		case *Leg:
			pj.Elements[i].Leg = et
		default:
			return nil, errors.Errorf("unknown plan element %T at %d", e, i)
		}
	}
	return json.Marshal(pj)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var pj planJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	p.Selected = pj.Selected
	p.Score = pj.Score
	p.Elements = make([]PlanElement, len(pj.Elements))
	for i, e := range pj.Elements {
		switch {
		case e.Activity != nil && e.Leg == nil:
			p.Elements[i] = e.Activity
		case e.Leg != nil && e.Activity == nil:
			p.Elements[i] = e.Leg
		default:
			return errors.Errorf("plan element %d must be exactly one of activity or leg", i)
		}
	}
	return nil
}
