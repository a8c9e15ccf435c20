package upscale

import (
	"math/rand"

	"github.com/pkg/errors"
)

// SampledSink is a Sink which receives a record with the given probability.
type SampledSink struct {
	Probability float64
	Sink        Sink
}

// FanOut writes each record to every sink whose probability is at least one
// shared uniform draw. Since all sinks see the same draw, a record written to
// a sink is also written to every sink with a larger probability: the samples
// are nested. FanOut is not safe for concurrent use.
type FanOut struct {
	sinks     []SampledSink
	written   []int
	rnd       *rand.Rand
	capture   Sink
	captureID string
	captured  bool
	closed    bool
}

// FanOutOption is a functional option for FanOut.
type FanOutOption func(f *FanOut)

// OptFanOutCapture sets a sink which receives exactly one record and is
// closed right after. Without an id it gets the first record; with one it
// gets the record with that id.
func OptFanOutCapture(s Sink, id string) FanOutOption {
	return func(f *FanOut) {
		f.capture = s
		f.captureID = id
	}
}

// NewFanOut returns a FanOut over sinks, drawing from rnd.
func NewFanOut(rnd *rand.Rand, sinks []SampledSink, opts ...FanOutOption) *FanOut {
	f := &FanOut{
		sinks:   sinks,
		written: make([]int, len(sinks)),
		rnd:     rnd,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Write routes p to the capture sink, if it is still waiting for its record,
// and to the sampled sinks.
func (f *FanOut) Write(p *Person) error {
	if f.capture != nil && !f.captured && (f.captureID == "" || f.captureID == p.ID) {
		f.captured, f.closed = true, true
		if err := f.capture.Write(p); err != nil {
			return errors.Wrapf(err, "capturing person %s", p.ID)
		}
		if err := f.capture.Close(); err != nil {
			return errors.Wrap(err, "closing capture sink")
		}
	}

	u := f.rnd.Float64()
	for i, s := range f.sinks {
		if s.Probability < u {
			continue
		}
		if err := s.Sink.Write(p); err != nil {
			return errors.Wrapf(err, "writing person %s to sink %d", p.ID, i)
		}
		f.written[i]++
	}
	return nil
}

// Written returns the number of records written to each sink, in sink order.
func (f *FanOut) Written() []int {
	w := make([]int, len(f.written))
	copy(w, f.written)
	return w
}

// Captured reports whether the capture sink got its record.
func (f *FanOut) Captured() bool { return f.captured }

// Close closes every sink, and the capture sink if it never got a record.
func (f *FanOut) Close() error {
	var errs Errors
	for i, s := range f.sinks {
		if err := s.Sink.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "closing sink %d", i))
		}
	}
	if f.capture != nil && !f.closed {
		f.closed = true
		if err := f.capture.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "closing capture sink"))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
