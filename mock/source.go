package mock

import (
	"io"

	"github.com/qsimtools/upscale"
)

// Source hands out Persons in order, then io.EOF.
type Source struct {
	Persons []*upscale.Person
}

// Person implements upscale.Source.
func (s *Source) Person() (*upscale.Person, error) {
	if len(s.Persons) == 0 {
		return nil, io.EOF
	}
	p := s.Persons[0]
	s.Persons = s.Persons[1:]
	return p, nil
}
