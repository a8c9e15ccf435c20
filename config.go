package upscale

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultSampleSizes are the sample sizes written by default, as fractions of
// the upscaled population.
var DefaultSampleSizes = []string{"1.0", "0.9", "0.8", "0.7", "0.6", "0.5", "0.4", "0.3", "0.2", "0.1", "0.01", "0.001"}

// ParseSampleSizes parses sample sizes given as decimal fractions within
// [0,1].
func ParseSampleSizes(sizes []string) ([]float64, error) {
	if len(sizes) == 0 {
		return nil, errors.New("no sample sizes given")
	}
	ret := make([]float64, len(sizes))
	for i, s := range sizes {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing sample size '%s'", s)
		}
		if f < 0 || f > 1 {
			return nil, errors.Errorf("sample size %v not within [0,1]", f)
		}
		ret[i] = f
	}
	return ret, nil
}

// OpenLogger returns a logger writing to the file at path, or to stderr if
// path is empty. The returned closer closes the log file.
func OpenLogger(path string, verbose bool) (Logger, io.Closer, error) {
	var out io.WriteCloser = nopWriteCloser{os.Stderr}
	if path != "" {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening log file")
		}
		out = f
	}
	if verbose {
		return NewVerboseLogger(out), out, nil
	}
	return NewStdLogger(out), out, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
