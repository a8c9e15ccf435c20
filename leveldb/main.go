package leveldb

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// Main loads a facility file into a leveldb facility store.
type Main struct {
	Path      string `help:"Facility file to load: one json facility per line, optionally gzipped."`
	DB        string `help:"Directory of the leveldb facility store."`
	BatchSize int    `help:"Number of facilities written per batch."`
	Verbose   bool   `help:"Enable verbose logging."`
	LogPath   string `help:"Log file to write to. Empty means stderr."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		DB:        "facilities.ldb",
		BatchSize: 10000,
	}
}

// Run loads the facilities.
func (m *Main) Run() (err error) {
	if m.Path == "" {
		return errors.New("no facility file given")
	}
	if m.BatchSize < 1 {
		return errors.Errorf("batch size must be positive, got %d", m.BatchSize)
	}
	log, closer, err := upscale.OpenLogger(m.LogPath, m.Verbose)
	if err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer closer.Close()
	f, err := os.Open(m.Path)
	if err != nil {
		return errors.Wrap(err, "opening facility file")
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(m.Path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "decompressing facility file")
		}
		defer gz.Close()
		r = gz
	}

	facs, err := NewFacilities(m.DB)
	if err != nil {
		return errors.Wrap(err, "opening facility store")
	}
	defer func() {
		cerr := facs.Close()
		if err == nil {
			err = errors.Wrap(cerr, "closing facility store")
		}
	}()

	n, err := Load(facs, r, m.BatchSize)
	if err != nil {
		return err
	}
	log.Printf("loaded %d facilities into %s", n, m.DB)
	return nil
}

// Load decodes json facilities from r and stores them in batches of
// batchSize. It returns the number of facilities stored.
func Load(facs *Facilities, r io.Reader, batchSize int) (n int, err error) {
	dec := json.NewDecoder(r)
	batch := make([]upscale.Facility, 0, batchSize)
	for {
		var fac upscale.Facility
		err := dec.Decode(&fac)
		if err == io.EOF {
			break
		} else if err != nil {
			return n, errors.Wrapf(err, "decoding facility %d", n+len(batch))
		}
		if fac.ID == "" {
			return n, errors.Errorf("facility %d has no id", n+len(batch))
		}
		batch = append(batch, fac)
		if len(batch) == batchSize {
			if err := facs.PutAll(batch); err != nil {
				return n, err
			}
			n += len(batch)
			batch = batch[:0]
		}
	}
	if err := facs.PutAll(batch); err != nil {
		return n, err
	}
	return n + len(batch), nil
}
