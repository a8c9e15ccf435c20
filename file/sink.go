// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package file

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale/json"
)

// gzipFile closes the gzip stream before the file beneath it.
type gzipFile struct {
	*gzip.Writer
	f *os.File
}

func (g *gzipFile) Close() error {
	if err := g.Writer.Close(); err != nil {
		g.f.Close()
		return errors.Wrap(err, "closing gzip stream")
	}
	return g.f.Close()
}

// NewSink creates the file at pathname and returns a sink writing json
// encoded persons to it. Files whose name ends in .gz are compressed.
func NewSink(pathname string) (*json.Sink, error) {
	if dir := filepath.Dir(pathname); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating directory %s", dir)
		}
	}
	f, err := os.Create(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", pathname)
	}
	var w io.WriteCloser = f
	if strings.HasSuffix(pathname, ".gz") {
		w = &gzipFile{Writer: gzip.NewWriter(f), f: f}
	}
	return json.NewSink(w), nil
}

// PopulationSuffix is appended to the names of population files.
const PopulationSuffix = ".plans.json.gz"

// SampleName returns the name of the output of run for a sample size given
// as a fraction of the full population: <runID>-<percent>pct, the percentage
// rounded to an integer.
func SampleName(runID string, size float64) string {
	return fmt.Sprintf("%s-%dpct", runID, int(math.Round(size*100)))
}

// ScaledSampleName is SampleName with the percentage printed with one
// decimal, for sample sizes below one percent.
func ScaledSampleName(runID string, size float64) string {
	return fmt.Sprintf("%s-%.1fpct", runID, size*100)
}
