package kafka

import (
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/file"
)

// Main holds the options for upscaling a population consumed from kafka and
// producing each sample to its own topic.
type Main struct {
	Hosts        []string      `help:"Comma separated list of Kafka hosts and ports"`
	Topics       []string      `help:"Comma separated list of Kafka topics the population is consumed from"`
	Group        string        `help:"Kafka consumer group"`
	Format       string        `help:"Message format, json or avro."`
	TopicPrefix  string        `help:"Samples are produced to <topic-prefix>-<percent>pct."`
	MaxMsgs      int           `help:"Number of persons to consume. 0 means until idle-timeout."`
	IdleTimeout  time.Duration `help:"The population is complete once no message arrives for this long."`
	Factor       float64       `help:"Upscaling factor."`
	SampleSizes  []string      `help:"Fractions of the upscaled population to produce, one topic each."`
	MainModes    []string      `help:"Modes every person gets a vehicle for."`
	NetworkModes []string      `help:"Network modes every person gets a vehicle for."`
	TransitMode  string        `help:"Persons using this mode are dropped."`

	UseMainModeIdentifier bool `help:"Derive the routing mode of multi-leg trips without one from their legs. Without it such trips are an error."`

	CountSeed    int64         `help:"Seed of the random draws deciding how many clones a person gets."`
	SampleSeed   int64         `help:"Seed of the random draws assigning persons to samples."`
	Concurrency  int           `help:"Number of clones of a person synthesized concurrently."`
	SkipInvalid  bool          `help:"Skip persons with missing facilities or inconsistent modes instead of aborting."`
	Verbose      bool          `help:"Enable verbose logging."`
	LogPath      string        `help:"Log file to write to. Empty means stderr."`

	newProducer func(hosts []string) (sarama.SyncProducer, error)
	source      upscale.Source
	counts      upscale.Counts
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Hosts:        []string{"localhost:9092"},
		Topics:       []string{"population"},
		Group:        "upscale",
		Format:       "json",
		TopicPrefix:  "upscaled",
		IdleTimeout:  10 * time.Second,
		Factor:       10,
		SampleSizes:  upscale.DefaultSampleSizes,
		MainModes:    []string{upscale.ModeCar},
		NetworkModes: []string{upscale.ModeCar},
		TransitMode:  upscale.ModePT,
		CountSeed:    upscale.DefaultCountSeed,
		SampleSeed:   upscale.DefaultSampleSeed,
		Concurrency:  4,
		newProducer:  NewProducer,
	}
}

// Counts returns the counts of the last run.
func (m *Main) Counts() upscale.Counts { return m.counts }

// Topic returns the topic a sample of size is produced to.
func (m *Main) Topic(size float64) string {
	return file.SampleName(m.TopicPrefix, size)
}

// Run consumes, upscales and produces the population.
func (m *Main) Run() (err error) {
	log, closer, err := upscale.OpenLogger(m.LogPath, m.Verbose)
	if err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer closer.Close()
	sizes, err := upscale.ParseSampleSizes(m.SampleSizes)
	if err != nil {
		return errors.Wrap(err, "validating configuration")
	}
	codec, err := NewCodec(m.Format)
	if err != nil {
		return errors.Wrap(err, "validating configuration")
	}

	sinks := make([]upscale.SampledSink, 0, len(sizes))
	closeSinks := func() {
		for _, s := range sinks {
			s.Sink.Close()
		}
	}
	for _, size := range sizes {
		producer, err := m.newProducer(m.Hosts)
		if err != nil {
			closeSinks()
			return errors.Wrap(err, "opening kafka producer")
		}
		sinks = append(sinks, upscale.SampledSink{Probability: size, Sink: NewSink(producer, m.Topic(size), codec)})
	}

	opts := []upscale.UpscalerOption{
		upscale.OptUpscalerFactor(m.Factor),
		upscale.OptUpscalerSinks(sinks...),
		upscale.OptUpscalerVehicles(upscale.NewMemVehicles(), m.MainModes, m.NetworkModes),
		upscale.OptUpscalerTransitMode(m.TransitMode),
		upscale.OptUpscalerSeeds(m.CountSeed, m.SampleSeed),
		upscale.OptUpscalerCloneConcurrency(m.Concurrency),
		upscale.OptUpscalerSkipInvalid(m.SkipInvalid),
		upscale.OptUpscalerLogger(log),
	}
	if m.UseMainModeIdentifier {
		opts = append(opts, upscale.OptUpscalerMainModes(upscale.DefaultMainModeIdentifier{}))
	}
	u, err := upscale.NewUpscaler(opts...)
	if err != nil {
		closeSinks()
		return errors.Wrap(err, "creating upscaler")
	}

	src := m.source
	if src == nil {
		ksrc := NewSource()
		ksrc.Hosts = m.Hosts
		ksrc.Topics = m.Topics
		ksrc.Group = m.Group
		ksrc.MaxMsgs = m.MaxMsgs
		ksrc.IdleTimeout = m.IdleTimeout
		ksrc.Codec = codec
		ksrc.Log = log
		if err := ksrc.Open(); err != nil {
			closeSinks()
			return errors.Wrap(err, "opening kafka source")
		}
		defer ksrc.Close()
		src = ksrc
	}

	m.counts, err = u.Process(src)
	if err != nil {
		return errors.Wrap(err, "upscaling")
	}
	for i, size := range sizes {
		log.Printf("produced %d persons to %s", m.counts.Written[i], m.Topic(size))
	}
	return nil
}
