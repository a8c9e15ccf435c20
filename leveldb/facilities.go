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

// Package leveldb stores facilities in a leveldb database so that large
// facility sets can be resolved without holding them in memory.
package leveldb

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var _ upscale.FacilityResolver = &Facilities{}

// Facilities is an upscale.FacilityResolver backed by leveldb. It is safe for
// concurrent use.
type Facilities struct {
	db *leveldb.DB
}

// NewFacilities opens or creates the facility database in dirname.
func NewFacilities(dirname string) (*Facilities, error) {
	err := os.MkdirAll(filepath.Dir(dirname), 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", dirname)
	}
	return &Facilities{db: db}, nil
}

// Close closes the underlying leveldb.
func (f *Facilities) Close() error {
	return f.db.Close()
}

// Put stores fac, replacing any facility with the same id.
func (f *Facilities) Put(fac upscale.Facility) error {
	err := f.db.Put([]byte(fac.ID), encode(fac), &opt.WriteOptions{})
	return errors.Wrapf(err, "putting facility %s", fac.ID)
}

// PutAll stores facs in one batch.
func (f *Facilities) PutAll(facs []upscale.Facility) error {
	batch := new(leveldb.Batch)
	for _, fac := range facs {
		batch.Put([]byte(fac.ID), encode(fac))
	}
	return errors.Wrap(f.db.Write(batch, &opt.WriteOptions{}), "writing batch")
}

// Facility implements upscale.FacilityResolver.
func (f *Facilities) Facility(id string) (upscale.Facility, error) {
	data, err := f.db.Get([]byte(id), &opt.ReadOptions{})
	if err == leveldb.ErrNotFound {
		return upscale.Facility{}, upscale.ErrFacilityNotFound
	} else if err != nil {
		return upscale.Facility{}, errors.Wrapf(err, "fetching facility %s", id)
	}
	fac, err := decode(data)
	if err != nil {
		return upscale.Facility{}, errors.Wrapf(err, "decoding facility %s", id)
	}
	fac.ID = id
	return fac, nil
}

// Len counts the stored facilities.
func (f *Facilities) Len() (int, error) {
	iter := f.db.NewIterator(nil, nil)
	defer iter.Release()
	n := 0
	for iter.Next() {
		n++
	}
	return n, errors.Wrap(iter.Error(), "iterating")
}

// encode lays a facility out as x and y as big endian float64 bits followed
// by the link id.
func encode(fac upscale.Facility) []byte {
	buf := make([]byte, 16+len(fac.LinkID))
	binary.BigEndian.PutUint64(buf[0:8], math.Float64bits(fac.Coord.X()))
	binary.BigEndian.PutUint64(buf[8:16], math.Float64bits(fac.Coord.Y()))
	copy(buf[16:], fac.LinkID)
	return buf
}

func decode(data []byte) (upscale.Facility, error) {
	if len(data) < 16 {
		return upscale.Facility{}, errors.Errorf("facility record too short: %d bytes", len(data))
	}
	return upscale.Facility{
		Coord: orb.Point{
			math.Float64frombits(binary.BigEndian.Uint64(data[0:8])),
			math.Float64frombits(binary.BigEndian.Uint64(data[8:16])),
		},
		LinkID: string(data[16:]),
	}, nil
}
