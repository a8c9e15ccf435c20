package kafka

import (
	"io"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/file"
)

// PublishMain produces a population read from files to a kafka topic, to
// feed Main.
type PublishMain struct {
	Input   string   `help:"Population file, directory of population files, or s3://bucket/prefix."`
	Region  string   `help:"AWS region used for s3:// input."`
	Hosts   []string `help:"Comma separated list of Kafka hosts and ports"`
	Topic   string   `help:"Topic the persons are produced to."`
	Format  string   `help:"Message format, json or avro."`
	Verbose bool     `help:"Enable verbose logging."`

	newProducer func(hosts []string) (sarama.SyncProducer, error)
	published   int
}

// NewPublishMain gets a new PublishMain with the default configuration.
func NewPublishMain() *PublishMain {
	return &PublishMain{
		Region:      "us-east-1",
		Hosts:       []string{"localhost:9092"},
		Topic:       "population",
		Format:      "json",
		newProducer: NewProducer,
	}
}

// Published returns the number of persons produced by the last run.
func (m *PublishMain) Published() int { return m.published }

// Run produces the population.
func (m *PublishMain) Run() (err error) {
	log, closer, err := upscale.OpenLogger("", m.Verbose)
	if err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer closer.Close()
	codec, err := NewCodec(m.Format)
	if err != nil {
		return errors.Wrap(err, "validating configuration")
	}
	src, err := file.OpenSource(m.Input, m.Region)
	if err != nil {
		return errors.Wrap(err, "opening population")
	}
	producer, err := m.newProducer(m.Hosts)
	if err != nil {
		return errors.Wrap(err, "opening kafka producer")
	}
	sink := NewSink(producer, m.Topic, codec)
	defer func() {
		cerr := sink.Close()
		if err == nil {
			err = cerr
		}
	}()

	m.published = 0
	for {
		p, err := src.Person()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "reading person")
		}
		if err := sink.Write(p); err != nil {
			return err
		}
		m.published++
		log.Debugf("published %s", p.ID)
	}
	log.Printf("published %d persons to %s", m.published, m.Topic)
	return nil
}
