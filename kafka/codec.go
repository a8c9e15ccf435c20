package kafka

import (
	"encoding/binary"
	"encoding/json"

	"github.com/elodina/go-avro"
	"github.com/linkedin/goavro"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// Codec turns persons into kafka message values and back.
type Codec interface {
	Encode(p *upscale.Person) ([]byte, error)
	Decode(data []byte) (*upscale.Person, error)
}

// NewCodec returns the codec for format, which is "json" or "avro".
func NewCodec(format string) (Codec, error) {
	switch format {
	case "json":
		return JSONCodec{}, nil
	case "avro":
		return NewAvroCodec(DefaultSchemaID)
	}
	return nil, errors.Errorf("unsupported message format: '%v'", format)
}

// JSONCodec encodes persons as json.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(p *upscale.Person) ([]byte, error) {
	data, err := json.Marshal(p)
	return data, errors.Wrap(err, "marshaling json")
}

// Decode implements Codec.
func (JSONCodec) Decode(data []byte) (*upscale.Person, error) {
	p := &upscale.Person{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "unmarshaling json")
	}
	return p, nil
}

// DefaultSchemaID is the schema registry id written in front of avro
// encoded persons.
const DefaultSchemaID = 1

// PersonSchema is the avro schema of a person with its selected plan. Plan
// elements are flattened into one record type discriminated by kind.
const PersonSchema = `{
  "type": "record",
  "name": "Person",
  "namespace": "org.qsimtools.upscale",
  "fields": [
    {"name": "id", "type": "string"},
    {"name": "score", "type": ["null", "double"], "default": null},
    {"name": "vehicles", "type": {"type": "map", "values": "string"}},
    {"name": "elements", "type": {"type": "array", "items": {
      "type": "record",
      "name": "Element",
      "fields": [
        {"name": "kind", "type": "string"},
        {"name": "type", "type": "string"},
        {"name": "x", "type": ["null", "double"], "default": null},
        {"name": "y", "type": ["null", "double"], "default": null},
        {"name": "link", "type": "string"},
        {"name": "facility", "type": "string"},
        {"name": "start", "type": ["null", "double"], "default": null},
        {"name": "end", "type": ["null", "double"], "default": null},
        {"name": "dur", "type": ["null", "double"], "default": null},
        {"name": "mode", "type": "string"},
        {"name": "routingMode", "type": "string"},
        {"name": "dep", "type": ["null", "double"], "default": null},
        {"name": "trav", "type": ["null", "double"], "default": null},
        {"name": "routeType", "type": "string"},
        {"name": "routeStart", "type": "string"},
        {"name": "routeEnd", "type": "string"},
        {"name": "routeLinks", "type": {"type": "array", "items": "string"}},
        {"name": "routeDistance", "type": "double"},
        {"name": "routeTrav", "type": ["null", "double"], "default": null},
        {"name": "routeVehicle", "type": "string"}
      ]
    }}}
  ]
}`

const (
	kindActivity = "activity"
	kindLeg      = "leg"
)

// AvroCodec encodes persons in the confluent wire format: a zero byte, the
// big endian schema id and the avro binary encoding of PersonSchema. Only
// the selected plan is encoded.
type AvroCodec struct {
	SchemaID int32

	enc *goavro.Codec
	dec avro.Schema
}

// NewAvroCodec returns an AvroCodec writing schemaID in front of each value.
func NewAvroCodec(schemaID int32) (*AvroCodec, error) {
	enc, err := goavro.NewCodec(PersonSchema)
	if err != nil {
		return nil, errors.Wrap(err, "creating avro encoder")
	}
	dec, err := avro.ParseSchema(PersonSchema)
	if err != nil {
		return nil, errors.Wrap(err, "parsing schema")
	}
	return &AvroCodec{SchemaID: schemaID, enc: enc, dec: dec}, nil
}

// Encode implements Codec.
func (c *AvroCodec) Encode(p *upscale.Person) ([]byte, error) {
	plan := p.SelectedPlan()
	if plan == nil {
		return nil, errors.Errorf("person %s has no plan to encode", p.ID)
	}
	elems := make([]interface{}, len(plan.Elements))
	for i, e := range plan.Elements {
		elems[i] = nativeElement(e)
	}
	vehicles := make(map[string]interface{}, len(p.Vehicles))
	for mode, id := range p.Vehicles {
		vehicles[mode] = id
	}
	var score interface{}
	if plan.Score != nil {
		score = union(*plan.Score, true)
	}
	native := map[string]interface{}{
		"id":       p.ID,
		"score":    score,
		"vehicles": vehicles,
		"elements": elems,
	}
	buf := make([]byte, 5, 256)
	binary.BigEndian.PutUint32(buf[1:], uint32(c.SchemaID))
	buf, err := c.enc.BinaryFromNative(buf, native)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding person %s", p.ID)
	}
	return buf, nil
}

func union(v float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return map[string]interface{}{"double": v}
}

func timeUnion(t upscale.Time) interface{} {
	return union(t.Seconds())
}

func nativeElement(e upscale.PlanElement) map[string]interface{} {
	n := map[string]interface{}{
		"kind": "", "type": "", "x": nil, "y": nil, "link": "", "facility": "",
		"start": nil, "end": nil, "dur": nil, "mode": "", "routingMode": "",
		"dep": nil, "trav": nil, "routeType": "", "routeStart": "", "routeEnd": "",
		"routeLinks": []interface{}{}, "routeDistance": 0.0, "routeTrav": nil, "routeVehicle": "",
	}
	switch et := e.(type) {
	case *upscale.Activity:
		n["kind"] = kindActivity
		n["type"] = et.Type
		if et.Coord != nil {
			n["x"] = union(et.Coord.X(), true)
			n["y"] = union(et.Coord.Y(), true)
		}
		n["link"] = et.LinkID
		n["facility"] = et.FacilityID
		n["start"] = timeUnion(et.StartTime)
		n["end"] = timeUnion(et.EndTime)
		n["dur"] = timeUnion(et.MaxDuration)
	case *upscale.Leg:
		n["kind"] = kindLeg
		n["mode"] = et.Mode
		n["routingMode"] = et.RoutingMode
		n["dep"] = timeUnion(et.DepartureTime)
		n["trav"] = timeUnion(et.TravelTime)
		if r := et.Route; r != nil {
			n["routeType"] = r.Type
			n["routeStart"] = r.StartLinkID
			n["routeEnd"] = r.EndLinkID
			links := make([]interface{}, len(r.LinkIDs))
			for i, l := range r.LinkIDs {
				links[i] = l
			}
			n["routeLinks"] = links
			n["routeDistance"] = r.Distance
			n["routeTrav"] = timeUnion(r.TravelTime)
			n["routeVehicle"] = r.VehicleID
		}
	}
	return n
}

// Decode implements Codec.
func (c *AvroCodec) Decode(data []byte) (*upscale.Person, error) {
	if len(data) <= 5 || data[0] != 0 {
		return nil, errors.Errorf("unexpected magic byte or length in avro kafka value, should be 0x00, but got 0x%.8x", data)
	}
	if id := int32(binary.BigEndian.Uint32(data[1:5])); id != c.SchemaID {
		return nil, errors.Errorf("value written with schema %d, expected %d", id, c.SchemaID)
	}
	reader := avro.NewGenericDatumReader()
	reader.SetSchema(c.dec)
	rec := avro.NewGenericRecord(c.dec)
	if err := reader.Read(rec, avro.NewBinaryDecoder(data[5:])); err != nil {
		return nil, errors.Wrap(err, "reading generic datum")
	}
	return personFromRecord(rec)
}

// field returns the value of name in a decoded record, which is either a
// *avro.GenericRecord or a map.
func field(rec interface{}, name string) interface{} {
	switch r := rec.(type) {
	case *avro.GenericRecord:
		return r.Get(name)
	case map[string]interface{}:
		return r[name]
	}
	return nil
}

func str(rec interface{}, name string) string {
	s, _ := field(rec, name).(string)
	return s
}

func timeField(rec interface{}, name string) upscale.Time {
	if f, ok := field(rec, name).(float64); ok {
		return upscale.Seconds(f)
	}
	return upscale.UndefinedTime
}

func personFromRecord(rec *avro.GenericRecord) (*upscale.Person, error) {
	p := &upscale.Person{ID: str(rec, "id")}
	if p.ID == "" {
		return nil, errors.New("decoded person without id")
	}
	plan := &upscale.Plan{Selected: true}
	if s, ok := field(rec, "score").(float64); ok {
		plan.Score = &s
	}
	if vs, ok := field(rec, "vehicles").(map[string]interface{}); ok && len(vs) > 0 {
		p.Vehicles = make(map[string]string, len(vs))
		for mode, id := range vs {
			p.Vehicles[mode], _ = id.(string)
		}
	}
	elems, _ := field(rec, "elements").([]interface{})
	for i, e := range elems {
		switch kind := str(e, "kind"); kind {
		case kindActivity:
			plan.AddActivity(activityFromRecord(e))
		case kindLeg:
			plan.AddLeg(legFromRecord(e))
		default:
			return nil, errors.Errorf("person %s: element %d has unknown kind '%s'", p.ID, i, kind)
		}
	}
	p.Plans = []*upscale.Plan{plan}
	return p, nil
}

func activityFromRecord(e interface{}) *upscale.Activity {
	a := &upscale.Activity{
		Type:        str(e, "type"),
		LinkID:      str(e, "link"),
		FacilityID:  str(e, "facility"),
		StartTime:   timeField(e, "start"),
		EndTime:     timeField(e, "end"),
		MaxDuration: timeField(e, "dur"),
	}
	x, okx := field(e, "x").(float64)
	y, oky := field(e, "y").(float64)
	if okx && oky {
		a.Coord = &orb.Point{x, y}
	}
	return a
}

func legFromRecord(e interface{}) *upscale.Leg {
	l := &upscale.Leg{
		Mode:          str(e, "mode"),
		RoutingMode:   str(e, "routingMode"),
		DepartureTime: timeField(e, "dep"),
		TravelTime:    timeField(e, "trav"),
	}
	if typ := str(e, "routeType"); typ != "" {
		r := &upscale.Route{
			Type:        typ,
			StartLinkID: str(e, "routeStart"),
			EndLinkID:   str(e, "routeEnd"),
			TravelTime:  timeField(e, "routeTrav"),
			VehicleID:   str(e, "routeVehicle"),
		}
		r.Distance, _ = field(e, "routeDistance").(float64)
		links, _ := field(e, "routeLinks").([]interface{})
		for _, link := range links {
			if s, ok := link.(string); ok {
				r.LinkIDs = append(r.LinkIDs, s)
			}
		}
		l.Route = r
	}
	return l
}
