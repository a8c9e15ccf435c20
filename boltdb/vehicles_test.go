package boltdb

import (
	"io/ioutil"
	"os"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/test"
)

func tempFileName(t *testing.T) string {
	tf, err := ioutil.TempFile("", "vehicles")
	if err != nil {
		t.Fatalf("getting temp file: %v", err)
	}
	err = tf.Close()
	if err != nil {
		t.Fatalf("closing temp file: %v", err)
	}
	return tf.Name()
}

func TestVehicles(t *testing.T) {
	boltFile := tempFileName(t)
	defer os.Remove(boltFile)
	v, err := NewVehicles(boltFile)
	if err != nil {
		t.Fatalf("couldn't get bolt db: %v", err)
	}

	va := upscale.NewVehicleAssigner(v, []string{"car"}, []string{"car", "bike"})
	p := test.HomeWorkHome("p1", "car")
	test.ErrNil(t, va.Assign(p), "assigning")
	test.MustBe(t, p.Vehicles["bike"], "p1_bike")

	err = va.Assign(test.HomeWorkHome("p1", "car"))
	if errors.Cause(err) != upscale.ErrDuplicateVehicle {
		t.Fatalf("expected duplicate vehicle, got %v", err)
	}

	test.ErrNil(t, v.Close(), "closing")
	v, err = NewVehicles(boltFile)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer v.Close()

	veh, ok, err := v.Get("p1_car")
	test.ErrNil(t, err, "getting")
	test.MustBe(t, ok, true)
	test.MustBe(t, veh, upscale.Vehicle{ID: "p1_car", PersonID: "p1", Mode: "car", Type: "car"})
	_, ok, err = v.Get("p2_car")
	test.ErrNil(t, err, "getting")
	test.MustBe(t, ok, false)

	n, err := v.Len()
	test.ErrNil(t, err, "counting")
	test.MustBe(t, n, 2)
	modes, err := v.Modes()
	test.ErrNil(t, err, "listing modes")
	test.MustBe(t, modes, []string{"bike", "car"})
}

func TestVehiclesReset(t *testing.T) {
	boltFile := tempFileName(t)
	defer os.Remove(boltFile)
	for run := 0; run < 2; run++ {
		v, err := NewVehicles(boltFile)
		if err != nil {
			t.Fatalf("opening run %d: %v", run, err)
		}
		test.ErrNil(t, v.Reset(), "resetting")
		va := upscale.NewVehicleAssigner(v, []string{"car"}, nil)
		test.ErrNil(t, va.Assign(test.HomeWorkHome("a", "car")), "assigning")
		n, err := v.Len()
		test.ErrNil(t, err, "counting")
		test.MustBe(t, n, 1)
		ids, err := v.IDs("car")
		test.ErrNil(t, err, "listing ids")
		test.MustBe(t, ids, []string{"a_car"})
		test.ErrNil(t, v.Close(), "closing")
	}
}

func TestVehiclesConcurrentRegister(t *testing.T) {
	boltFile := tempFileName(t)
	defer os.Remove(boltFile)
	v, err := NewVehicles(boltFile)
	if err != nil {
		t.Fatalf("couldn't get bolt db: %v", err)
	}
	defer v.Close()

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every id is registered twice
			id := upscale.VehicleID(string(rune('a'+i/2)), "car")
			errs[i] = v.Register(upscale.Vehicle{ID: id, Mode: "car"})
		}(i)
	}
	wg.Wait()
	dups := 0
	for _, err := range errs {
		if err == upscale.ErrDuplicateVehicle {
			dups++
		} else if err != nil {
			t.Fatalf("registering: %v", err)
		}
	}
	test.MustBe(t, dups, 10)
	ids, err := v.IDs("car")
	test.ErrNil(t, err, "listing ids")
	test.MustBe(t, len(ids), 10)
}
