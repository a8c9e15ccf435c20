// Package mock holds in-memory implementations of the upscaler's interfaces
// for use in tests.
package mock

import (
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// Sink keeps every person written to it.
type Sink struct {
	Persons []*upscale.Person
	Closed  bool

	// Err, if set, is returned from Write.
	Err error
}

// Write implements upscale.Sink.
func (s *Sink) Write(p *upscale.Person) error {
	if s.Closed {
		return errors.Errorf("write of %s to closed sink", p.ID)
	}
	if s.Err != nil {
		return s.Err
	}
	s.Persons = append(s.Persons, p)
	return nil
}

// Close implements upscale.Sink.
func (s *Sink) Close() error {
	s.Closed = true
	return nil
}

// IDs returns the ids of the persons written, in order.
func (s *Sink) IDs() []string {
	ids := make([]string, len(s.Persons))
	for i, p := range s.Persons {
		ids[i] = p.ID
	}
	return ids
}
