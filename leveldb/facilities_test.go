package leveldb_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/leveldb"
	"github.com/qsimtools/upscale/test"
)

func mustTempDir(t *testing.T) string {
	t.Helper()
	d, err := ioutil.TempDir("", "facilities")
	if err != nil {
		t.Fatalf("getting temp dir: %v", err)
	}
	return d
}

func TestFacilities(t *testing.T) {
	d := mustTempDir(t)
	defer os.RemoveAll(d)

	facs, err := leveldb.NewFacilities(filepath.Join(d, "db"))
	test.ErrNil(t, err, "opening")
	defer facs.Close()

	want := upscale.Facility{ID: "home_1", Coord: orb.Point{4.5, -3.25}, LinkID: "link 7"}
	test.ErrNil(t, facs.Put(want), "putting")
	got, err := facs.Facility("home_1")
	test.ErrNil(t, err, "getting")
	test.MustBe(t, got, want)

	if _, err := facs.Facility("nope"); err != upscale.ErrFacilityNotFound {
		t.Fatalf("expected ErrFacilityNotFound, got %v", err)
	}
}

func TestLoadAndSanitize(t *testing.T) {
	d := mustTempDir(t)
	defer os.RemoveAll(d)

	facs, err := leveldb.NewFacilities(filepath.Join(d, "db"))
	test.ErrNil(t, err, "opening")
	defer facs.Close()

	data := `{"id": "f1", "coord": [1, 2], "link": "l1"}
{"id": "f2", "coord": [3, 4], "link": "l2"}
{"id": "f3", "coord": [5, 6], "link": "l3"}
`
	n, err := leveldb.Load(facs, strings.NewReader(data), 2)
	test.ErrNil(t, err, "loading")
	test.MustBe(t, n, 3)
	l, err := facs.Len()
	test.ErrNil(t, err, "counting")
	test.MustBe(t, l, 3)

	p := test.HomeWorkHome("p", "car")
	work := upscale.MainActivities(p.SelectedPlan())[1]
	work.LinkID = ""
	work.FacilityID = "f3"
	s := &upscale.Sanitizer{Facilities: facs}
	test.ErrNil(t, s.Sanitize(p), "sanitizing")
	test.MustBe(t, work.LinkID, "l3")

	if _, err := leveldb.Load(facs, strings.NewReader(`{"coord": [1, 2]}`), 2); err == nil {
		t.Fatal("expected an error for a facility without id")
	}
}

func TestLoaderMain(t *testing.T) {
	d := mustTempDir(t)
	defer os.RemoveAll(d)
	path := filepath.Join(d, "facilities.json")
	test.ErrNil(t, ioutil.WriteFile(path, []byte(`{"id": "f1", "coord": [1, 2], "link": "l1"}`), 0600), "writing")

	m := leveldb.NewMain()
	m.Path = path
	m.DB = filepath.Join(d, "db")
	test.ErrNil(t, m.Run(), "running")

	facs, err := leveldb.NewFacilities(m.DB)
	test.ErrNil(t, err, "reopening")
	defer facs.Close()
	f, err := facs.Facility("f1")
	test.ErrNil(t, err, "getting")
	test.MustBe(t, f.LinkID, "l1")
}
