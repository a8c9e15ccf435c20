package kafka

import (
	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// Sink is an upscale.Sink producing each person to a kafka topic, keyed by
// person id.
type Sink struct {
	Topic string

	producer sarama.SyncProducer
	codec    Codec
}

// NewSink returns a Sink producing to topic with producer. Closing the Sink
// closes the producer.
func NewSink(producer sarama.SyncProducer, topic string, codec Codec) *Sink {
	return &Sink{
		Topic:    topic,
		producer: producer,
		codec:    codec,
	}
}

// NewProducer connects a synchronous producer to hosts.
func NewProducer(hosts []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V0_10_0_0
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionGZIP
	producer, err := sarama.NewSyncProducer(hosts, config)
	return producer, errors.Wrap(err, "getting new producer")
}

// Write implements upscale.Sink.
func (s *Sink) Write(p *upscale.Person) error {
	val, err := s.codec.Encode(p)
	if err != nil {
		return errors.Wrap(err, "encoding person")
	}
	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.Topic,
		Key:   sarama.StringEncoder(p.ID),
		Value: sarama.ByteEncoder(val),
	})
	return errors.Wrapf(err, "producing person %s to %s", p.ID, s.Topic)
}

// Close implements upscale.Sink.
func (s *Sink) Close() error {
	return errors.Wrap(s.producer.Close(), "closing kafka producer")
}
