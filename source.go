package upscale

import (
	"io"
)

// Source is the interface for getting persons one at a time. Person returns
// io.EOF once the stream is exhausted.
type Source interface {
	Person() (*Person, error)
}

// NamedReadCloser is a stream of raw population data with the name of the
// file or object it comes from.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
}

// RawSource hands out the files or objects of a population one after the
// other. NextReader returns io.EOF when there are no more.
type RawSource interface {
	NextReader() (NamedReadCloser, error)
}

// Sink receives finished persons. Close flushes and releases the underlying
// stream; a Sink is not written to after Close.
type Sink interface {
	Write(p *Person) error
	Close() error
}

// LogSink is a Sink which only logs the id of each person written to it.
type LogSink struct {
	Log Logger
}

// Write implements Sink.
func (s LogSink) Write(p *Person) error {
	s.Log.Printf("person %s", p.ID)
	return nil
}

// Close implements Sink.
func (LogSink) Close() error { return nil }
