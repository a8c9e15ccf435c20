package file

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// ScaleMain rescales a population sample of one size to another. Upscaling
// clones persons, downscaling samples them.
type ScaleMain struct {
	Input            string  `help:"Population file, directory of population files, or s3://bucket/prefix."`
	Region           string  `help:"AWS region used for s3:// input."`
	OutputDir        string  `help:"Directory the rescaled population is written to."`
	RunID            string  `help:"Prefix of all output file names."`
	SourceSampleSize float64 `help:"Sample size of the input population as a fraction of the real population."`
	TargetSampleSize float64 `help:"Sample size of the output population as a fraction of the real population."`
	Network          string  `help:"Network file. If set, a copy without the links of transit-mode is written next to the population."`
	TransitMode      string  `help:"Persons using this mode are dropped."`
	CountSeed        int64   `help:"Seed of the random draws deciding how many clones a person gets."`
	SampleSeed       int64   `help:"Seed of the random draws deciding which persons are kept when downscaling."`

	UseMainModeIdentifier bool `help:"Derive the routing mode of multi-leg trips without one from their legs. Without it such trips are an error."`

	SkipInvalid      bool    `help:"Skip persons with missing facilities or inconsistent modes instead of aborting."`
	Verbose          bool    `help:"Enable verbose logging."`
	LogPath          string  `help:"Log file to write to. Empty means stderr."`

	counts upscale.Counts
}

// NewScaleMain gets a new ScaleMain with the default configuration.
func NewScaleMain() *ScaleMain {
	return &ScaleMain{
		OutputDir:   ".",
		RunID:       "scaled",
		TransitMode: upscale.ModePT,
		CountSeed:   upscale.DefaultCountSeed,
		SampleSeed:  upscale.DefaultSampleSeed,
		Region:      "us-east-1",
	}
}

// Factor returns the scaling factor target/source sample size.
func (m *ScaleMain) Factor() float64 {
	return m.TargetSampleSize / m.SourceSampleSize
}

// OutputName returns the name of the population file Run writes.
func (m *ScaleMain) OutputName() string {
	return ScaledSampleName(m.RunID, m.TargetSampleSize) + PopulationSuffix
}

// Counts returns the counts of the last run.
func (m *ScaleMain) Counts() upscale.Counts { return m.counts }

// Run rescales the population.
func (m *ScaleMain) Run() error {
	if m.SourceSampleSize <= 0 || m.TargetSampleSize <= 0 {
		return errors.Errorf("sample sizes must be positive, got source %v and target %v", m.SourceSampleSize, m.TargetSampleSize)
	}
	log, closer, err := upscale.OpenLogger(m.LogPath, m.Verbose)
	if err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer closer.Close()

	src, err := OpenSource(m.Input, m.Region)
	if err != nil {
		return errors.Wrap(err, "opening population")
	}

	// factors up to 1 keep persons with probability factor and clone nobody
	factor, probability := m.Factor(), 1.0
	if factor <= 1 {
		factor, probability = 1, m.Factor()
	}
	log.Printf("scaling from %v to %v by %v", m.SourceSampleSize, m.TargetSampleSize, m.Factor())

	sinks, err := openSinks(m.OutputDir, []string{ScaledSampleName(m.RunID, m.TargetSampleSize)}, []float64{probability})
	if err != nil {
		return err
	}
	opts := []upscale.UpscalerOption{
		upscale.OptUpscalerFactor(factor),
		upscale.OptUpscalerTransitMode(m.TransitMode),
		upscale.OptUpscalerSeeds(m.CountSeed, m.SampleSeed),
		upscale.OptUpscalerSkipInvalid(m.SkipInvalid),
		upscale.OptUpscalerLogger(log),
	}
	if m.UseMainModeIdentifier {
		opts = append(opts, upscale.OptUpscalerMainModes(upscale.DefaultMainModeIdentifier{}))
	}
	m.counts, err = process(src, sinks, nil, opts)
	if err != nil {
		return err
	}
	if m.Network != "" {
		nm := &Main{Network: m.Network, OutputDir: filepath.Clean(m.OutputDir), RunID: m.RunID, TransitMode: m.TransitMode, log: log}
		return nm.writeNetwork()
	}
	return nil
}
