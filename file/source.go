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
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/json"
)

// Source is an upscale.Source reading json encoded persons from the readers
// of a RawSource. Readers whose name ends in .gz are decompressed.
type Source struct {
	rawSource upscale.RawSource
	cur       upscale.NamedReadCloser
	gz        *gzip.Reader
	src       *json.Source
}

// SrcOption is a functional option type for file.Source.
type SrcOption func(s *Source) error

// OptSrcPath reads from a file or from all files of a directory.
func OptSrcPath(pathname string) SrcOption {
	return func(s *Source) (err error) {
		s.rawSource, err = NewRawSource(pathname)
		if err != nil {
			return errors.Wrap(err, "getting raw source")
		}
		return nil
	}
}

// OptSrcRawSource reads from rs, e.g. an S3 bucket.
func OptSrcRawSource(rs upscale.RawSource) SrcOption {
	return func(s *Source) error {
		s.rawSource = rs
		return nil
	}
}

// NewSource returns a Source with the options applied.
func NewSource(opts ...SrcOption) (*Source, error) {
	s := &Source{}
	for _, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, err
		}
	}
	if s.rawSource == nil {
		return nil, errors.New("no path or raw source given")
	}
	return s, nil
}

// Person implements upscale.Source.
func (s *Source) Person() (*upscale.Person, error) {
	for {
		if s.src == nil {
			if err := s.next(); err != nil {
				return nil, err
			}
		}
		p, err := s.src.Person()
		if err == io.EOF {
			if err := s.closeCur(); err != nil {
				return nil, err
			}
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading %s", s.cur.Name())
		}
		return p, nil
	}
}

func (s *Source) next() error {
	reader, err := s.rawSource.NextReader()
	if err == io.EOF {
		return io.EOF
	} else if err != nil {
		return errors.Wrap(err, "getting next reader")
	}
	s.cur = reader
	var r io.Reader = reader
	if strings.HasSuffix(reader.Name(), ".gz") {
		s.gz, err = gzip.NewReader(reader)
		if err != nil {
			reader.Close()
			return errors.Wrapf(err, "decompressing %s", reader.Name())
		}
		r = s.gz
	}
	s.src = json.NewSource(r)
	return nil
}

func (s *Source) closeCur() error {
	s.src = nil
	if s.gz != nil {
		s.gz.Close()
		s.gz = nil
	}
	return errors.Wrapf(s.cur.Close(), "closing %s", s.cur.Name())
}

// RawSource is an upscale.RawSource over a single file or the files of a
// directory, in name order.
type RawSource struct {
	files   []string
	fileIdx *uint64
}

// NewRawSource returns a RawSource for the file or directory at pathname.
func NewRawSource(pathname string) (*RawSource, error) {
	fileIdx := uint64(0)
	s := &RawSource{
		fileIdx: &fileIdx,
	}
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if info.IsDir() {
		infos, err := ioutil.ReadDir(pathname)
		if err != nil {
			return nil, errors.Wrap(err, "reading directory")
		}
		s.files = make([]string, 0, len(infos))
		for _, info = range infos {
			if info.IsDir() {
				continue
			}
			s.files = append(s.files, path.Join(pathname, info.Name()))
		}
		sort.Strings(s.files)
	} else {
		s.files = []string{pathname}
	}
	return s, nil
}

type namedFile struct {
	*os.File
}

func (f *namedFile) Name() string {
	return filepath.Base(f.File.Name())
}

// NextReader implements upscale.RawSource.
func (s *RawSource) NextReader() (upscale.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}

	file, err := os.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.files[idx])
	}
	return &namedFile{file}, nil
}
