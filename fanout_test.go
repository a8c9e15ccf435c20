package upscale_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/mock"
	"github.com/qsimtools/upscale/test"
)

func TestFanOutNestedSamples(t *testing.T) {
	full, half, tenth := &mock.Sink{}, &mock.Sink{}, &mock.Sink{}
	f := upscale.NewFanOut(rand.New(rand.NewSource(1)), []upscale.SampledSink{
		{Probability: 1, Sink: full},
		{Probability: 0.5, Sink: half},
		{Probability: 0.1, Sink: tenth},
	})
	const n = 10000
	for i := 0; i < n; i++ {
		test.ErrNil(t, f.Write(test.HomeWorkHome(strconv.Itoa(i), "car")), "writing")
	}
	test.ErrNil(t, f.Close(), "closing")

	written := f.Written()
	test.MustBe(t, written[0], n)
	test.MustBe(t, len(full.Persons), n)
	if written[1] < 4700 || written[1] > 5300 {
		t.Errorf("half sample has %d persons", written[1])
	}
	if written[2] < 850 || written[2] > 1150 {
		t.Errorf("tenth sample has %d persons", written[2])
	}

	inHalf := make(map[string]bool)
	for _, id := range half.IDs() {
		inHalf[id] = true
	}
	for _, id := range tenth.IDs() {
		if !inHalf[id] {
			t.Fatalf("person %s is in the smaller sample but not the larger one", id)
		}
	}
	if !full.Closed || !half.Closed || !tenth.Closed {
		t.Fatal("not all sinks closed")
	}
}

func TestFanOutCapture(t *testing.T) {
	capture, all := &mock.Sink{}, &mock.Sink{}
	f := upscale.NewFanOut(rand.New(rand.NewSource(1)),
		[]upscale.SampledSink{{Probability: 1, Sink: all}},
		upscale.OptFanOutCapture(capture, ""))
	for _, id := range []string{"a", "b", "c"} {
		test.ErrNil(t, f.Write(test.HomeWorkHome(id, "car")), "writing")
	}
	test.MustBe(t, capture.IDs(), []string{"a"})
	if !capture.Closed {
		t.Fatal("capture sink not closed right after capturing")
	}
	test.MustBe(t, f.Captured(), true)
	test.ErrNil(t, f.Close(), "closing")
	test.MustBe(t, all.IDs(), []string{"a", "b", "c"})
}

func TestFanOutCaptureByID(t *testing.T) {
	capture := &mock.Sink{}
	f := upscale.NewFanOut(rand.New(rand.NewSource(1)), nil, upscale.OptFanOutCapture(capture, "b"))
	for _, id := range []string{"a", "b", "c"} {
		test.ErrNil(t, f.Write(test.HomeWorkHome(id, "car")), "writing")
	}
	test.MustBe(t, capture.IDs(), []string{"b"})

	capture = &mock.Sink{}
	f = upscale.NewFanOut(rand.New(rand.NewSource(1)), nil, upscale.OptFanOutCapture(capture, "nobody"))
	test.ErrNil(t, f.Write(test.HomeWorkHome("a", "car")), "writing")
	test.ErrNil(t, f.Close(), "closing")
	test.MustBe(t, f.Captured(), false)
	test.MustBe(t, len(capture.Persons), 0)
	test.MustBe(t, capture.Closed, true)
}
