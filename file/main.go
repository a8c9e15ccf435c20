package file

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/aws/s3"
	"github.com/qsimtools/upscale/boltdb"
	"github.com/qsimtools/upscale/leveldb"
	"github.com/qsimtools/upscale/network"
	"github.com/qsimtools/upscale/termstat"
)

// Main upscales a population read from files or S3 and writes one
// population file per sample size.
type Main struct {
	Input         string   `help:"Population file, directory of population files, or s3://bucket/prefix. Files ending in .gz are decompressed."`
	Region        string   `help:"AWS region used for s3:// input."`
	OutputDir     string   `help:"Directory the sampled populations are written to."`
	RunID         string   `help:"Prefix of all output file names."`
	Factor        float64  `help:"Upscaling factor. Each person is written factor times in expectation, counting its clones."`
	SampleSizes   []string `help:"Fractions of the upscaled population to write, one file each."`
	SingleAgent   bool     `help:"Also write a single person to <run-id>-single-agent.plans.json.gz."`
	SingleAgentID string   `help:"Id of the person written by single-agent. Empty means the first person read."`
	Network       string   `help:"Network file. If set, a copy without the links of transit-mode is written next to the populations."`
	FacilityDB    string   `help:"Leveldb facility store for activities without link. Empty means such activities are an error."`
	VehicleDB     string   `help:"Bolt file the registered vehicles are stored in, replacing any vehicles of an earlier run. Empty keeps them in memory."`
	MainModes     []string `help:"Modes every person gets a vehicle for."`
	NetworkModes  []string `help:"Network modes every person gets a vehicle for."`
	TransitMode   string   `help:"Persons using this mode are dropped."`

	UseMainModeIdentifier bool `help:"Derive the routing mode of multi-leg trips without one from their legs. Without it such trips are an error."`

	Route         bool     `help:"Teleport the legs of clones by beeline distance."`
	CountSeed     int64    `help:"Seed of the random draws deciding how many clones a person gets."`
	SampleSeed    int64    `help:"Seed of the random draws assigning persons to samples."`
	Concurrency   int      `help:"Number of clones of a person synthesized concurrently."`
	SkipInvalid   bool     `help:"Skip persons with missing facilities or inconsistent modes instead of aborting."`
	Stats         bool     `help:"Print counters to stderr while running."`
	Verbose       bool     `help:"Enable verbose logging."`
	LogPath       string   `help:"Log file to write to. Empty means stderr."`

	log    upscale.Logger
	stats  upscale.Statter
	counts upscale.Counts
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		OutputDir:    ".",
		RunID:        "upscaled",
		Factor:       10,
		SampleSizes:  upscale.DefaultSampleSizes,
		MainModes:    []string{upscale.ModeCar},
		NetworkModes: []string{upscale.ModeCar},
		TransitMode:  upscale.ModePT,
		CountSeed:    upscale.DefaultCountSeed,
		SampleSeed:   upscale.DefaultSampleSeed,
		Concurrency:  4,
		Region:       "us-east-1",
	}
}

// Run upscales the population.
func (m *Main) Run() (err error) {
	closeLog, err := m.setup()
	if err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer closeLog()
	sizes, err := upscale.ParseSampleSizes(m.SampleSizes)
	if err != nil {
		return errors.Wrap(err, "validating configuration")
	}

	src, err := OpenSource(m.Input, m.Region)
	if err != nil {
		return errors.Wrap(err, "opening population")
	}

	opts := []upscale.UpscalerOption{
		upscale.OptUpscalerFactor(m.Factor),
		upscale.OptUpscalerTransitMode(m.TransitMode),
		upscale.OptUpscalerSeeds(m.CountSeed, m.SampleSeed),
		upscale.OptUpscalerCloneConcurrency(m.Concurrency),
		upscale.OptUpscalerSkipInvalid(m.SkipInvalid),
		upscale.OptUpscalerLogger(m.log),
		upscale.OptUpscalerStatter(m.stats),
	}
	if m.UseMainModeIdentifier {
		opts = append(opts, upscale.OptUpscalerMainModes(upscale.DefaultMainModeIdentifier{}))
	}
	if m.Route {
		opts = append(opts, upscale.OptUpscalerRouter(upscale.NewTeleportationRouter()))
	}

	if m.FacilityDB != "" {
		facs, err := leveldb.NewFacilities(m.FacilityDB)
		if err != nil {
			return errors.Wrap(err, "opening facility store")
		}
		defer facs.Close()
		opts = append(opts, upscale.OptUpscalerFacilities(facs))
	}

	var registry upscale.VehicleRegistry = upscale.NewMemVehicles()
	if m.VehicleDB != "" {
		vehicles, verr := boltdb.NewVehicles(m.VehicleDB)
		if verr != nil {
			return errors.Wrap(verr, "opening vehicle store")
		}
		defer func() {
			cerr := vehicles.Close()
			if err == nil {
				err = errors.Wrap(cerr, "closing vehicle store")
			}
		}()
		if err := vehicles.Reset(); err != nil {
			return errors.Wrap(err, "resetting vehicle store")
		}
		registry = vehicles
	}
	opts = append(opts, upscale.OptUpscalerVehicles(registry, m.MainModes, m.NetworkModes))

	names := make([]string, len(sizes))
	for i, size := range sizes {
		names[i] = SampleName(m.RunID, size)
	}
	sinks, err := openSinks(m.OutputDir, names, sizes)
	if err != nil {
		return err
	}
	var capture upscale.Sink
	if m.SingleAgent {
		capture, err = NewSink(filepath.Join(m.OutputDir, m.RunID+"-single-agent"+PopulationSuffix))
		if err != nil {
			closeSinks(sinks, nil)
			return errors.Wrap(err, "creating single agent file")
		}
		opts = append(opts, upscale.OptUpscalerCapture(capture, m.SingleAgentID))
	}

	m.counts, err = process(src, sinks, capture, opts)
	if err != nil {
		return err
	}
	m.log.Printf("wrote %v persons to %v", m.counts.Written, names)
	if m.Network != "" {
		return m.writeNetwork()
	}
	return nil
}

// Counts returns the counts of the last run.
func (m *Main) Counts() upscale.Counts { return m.counts }

func (m *Main) setup() (func(), error) {
	log, closer, err := upscale.OpenLogger(m.LogPath, m.Verbose)
	if err != nil {
		return nil, err
	}
	m.log = log
	m.stats = upscale.NopStatter{}
	if !m.Stats {
		return func() { closer.Close() }, nil
	}
	ts := termstat.NewCollector(os.Stderr, 2*time.Second)
	m.stats = ts
	return func() {
		ts.Close()
		closer.Close()
	}, nil
}

func openSinks(dir string, names []string, sizes []float64) ([]upscale.SampledSink, error) {
	sinks := make([]upscale.SampledSink, 0, len(names))
	for i, name := range names {
		s, err := NewSink(filepath.Join(dir, name+PopulationSuffix))
		if err != nil {
			closeSinks(sinks, nil)
			return nil, errors.Wrapf(err, "creating sample %s", name)
		}
		sinks = append(sinks, upscale.SampledSink{Probability: sizes[i], Sink: s})
	}
	return sinks, nil
}

func (m *Main) writeNetwork() error {
	n, err := network.ReadFile(m.Network)
	if err != nil {
		return errors.Wrap(err, "reading network")
	}
	if err := network.Prune(n, m.TransitMode, m.log); err != nil {
		return err
	}
	out := filepath.Join(m.OutputDir, m.RunID+".network.json.gz")
	return errors.Wrap(network.WriteFile(out, n), "writing network")
}

func closeSinks(sinks []upscale.SampledSink, capture upscale.Sink) {
	for _, s := range sinks {
		s.Sink.Close()
	}
	if capture != nil {
		capture.Close()
	}
}

// process runs an Upscaler over src which writes to sinks. The sinks are
// closed in any case.
func process(src upscale.Source, sinks []upscale.SampledSink, capture upscale.Sink, opts []upscale.UpscalerOption) (upscale.Counts, error) {
	u, err := upscale.NewUpscaler(append(opts, upscale.OptUpscalerSinks(sinks...))...)
	if err != nil {
		closeSinks(sinks, capture)
		return upscale.Counts{}, errors.Wrap(err, "creating upscaler")
	}
	counts, err := u.Process(src)
	return counts, errors.Wrap(err, "upscaling")
}

// OpenSource returns a Source reading persons from a file, a directory of
// files or, for locations of the form s3://bucket/prefix, from S3.
func OpenSource(location, region string) (upscale.Source, error) {
	if location == "" {
		return nil, errors.New("no input given")
	}
	if bucket, prefix, ok := s3.ParseURL(location); ok {
		rs, err := s3.NewRawSource(region, bucket, prefix)
		if err != nil {
			return nil, errors.Wrap(err, "getting s3 source")
		}
		return NewSource(OptSrcRawSource(rs))
	}
	return NewSource(OptSrcPath(location))
}
