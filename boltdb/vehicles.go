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

// Package boltdb provides a vehicle registry persisted in a bolt database.
package boltdb

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

var _ upscale.VehicleRegistry = &Vehicles{}

var (
	vehicleBucket = []byte("vehicles")
	modeBucket    = []byte("modes")
)

// Vehicles is an upscale.VehicleRegistry which stores vehicles in bolt, keyed
// by vehicle id. A second bucket per mode lists the ids of that mode.
type Vehicles struct {
	Db *bolt.DB
}

// NewVehicles opens or creates the vehicle store at filename.
func NewVehicles(filename string) (v *Vehicles, err error) {
	v = &Vehicles{}
	v.Db, err = bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second, NoGrowSync: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	v.Db.MaxBatchDelay = 400 * time.Microsecond
	err = v.Db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(vehicleBucket); err != nil {
			return errors.Wrap(err, "creating vehicle bucket")
		}
		if _, err := tx.CreateBucketIfNotExists(modeBucket); err != nil {
			return errors.Wrap(err, "creating mode bucket")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return v, nil
}

// Reset removes every stored vehicle. A store reused by a new run must be
// reset first, or its vehicle ids collide with the ones already stored.
func (v *Vehicles) Reset() error {
	return v.Db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{vehicleBucket, modeBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return errors.Wrapf(err, "deleting bucket %s", name)
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return errors.Wrapf(err, "creating bucket %s", name)
			}
		}
		return nil
	})
}

// Close syncs and closes the underlying boltdb.
func (v *Vehicles) Close() error {
	err := v.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return v.Db.Close()
}

// Register implements upscale.VehicleRegistry. Registering an id twice
// returns upscale.ErrDuplicateVehicle.
func (v *Vehicles) Register(veh upscale.Vehicle) error {
	data, err := json.Marshal(veh)
	if err != nil {
		return errors.Wrap(err, "encoding vehicle")
	}
	return v.Db.Batch(func(tx *bolt.Tx) error {
		vb := tx.Bucket(vehicleBucket)
		if vb.Get([]byte(veh.ID)) != nil {
			return upscale.ErrDuplicateVehicle
		}
		if err := vb.Put([]byte(veh.ID), data); err != nil {
			return errors.Wrap(err, "inserting into vehicle bucket")
		}
		mb, err := tx.Bucket(modeBucket).CreateBucketIfNotExists([]byte(veh.Mode))
		if err != nil {
			return errors.Wrap(err, "adding "+veh.Mode+" to mode bucket")
		}
		return errors.Wrap(mb.Put([]byte(veh.ID), nil), "inserting into mode bucket")
	})
}

// Get returns the vehicle with id.
func (v *Vehicles) Get(id string) (veh upscale.Vehicle, ok bool, err error) {
	err = v.Db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(vehicleBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(data, &veh)
	})
	return veh, ok, errors.Wrapf(err, "getting vehicle %s", id)
}

// Len returns the number of registered vehicles.
func (v *Vehicles) Len() (n int, err error) {
	err = v.Db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(vehicleBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// IDs returns the ids of all vehicles of mode in key order.
func (v *Vehicles) IDs(mode string) (ids []string, err error) {
	err = v.Db.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket(modeBucket).Bucket([]byte(mode))
		if mb == nil {
			return nil
		}
		return mb.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// Modes returns all modes with at least one vehicle.
func (v *Vehicles) Modes() (modes []string, err error) {
	err = v.Db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(modeBucket).ForEach(func(k, _ []byte) error {
			modes = append(modes, string(k))
			return nil
		})
	})
	return modes, err
}
