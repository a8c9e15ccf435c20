package json

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// Source is an upscale.Source for reading a stream of json encoded persons.
type Source struct {
	dec *json.Decoder
}

// NewSource gets a new json source which will decode from the given reader.
func NewSource(r io.Reader) *Source {
	return &Source{
		dec: json.NewDecoder(r),
	}
}

// Person implements upscale.Source. It returns the next person that can be
// decoded from the reader.
func (s *Source) Person() (*upscale.Person, error) {
	p := &upscale.Person{}
	err := s.dec.Decode(p)
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, errors.Wrap(err, "decoding person")
	}
	if p.ID == "" {
		return nil, errors.New("decoded person without id")
	}
	return p, nil
}

// Sink is an upscale.Sink writing one json object per person and line.
type Sink struct {
	w   io.WriteCloser
	enc *json.Encoder
}

// NewSink returns a Sink encoding to w. Closing the Sink closes w.
func NewSink(w io.WriteCloser) *Sink {
	return &Sink{
		w:   w,
		enc: json.NewEncoder(w),
	}
}

// Write implements upscale.Sink.
func (s *Sink) Write(p *upscale.Person) error {
	return errors.Wrapf(s.enc.Encode(p), "encoding person %s", p.ID)
}

// Close implements upscale.Sink.
func (s *Sink) Close() error {
	return s.w.Close()
}
