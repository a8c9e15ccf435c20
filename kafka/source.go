package kafka

import (
	"io"
	"io/ioutil"
	"log"
	"time"

	"github.com/Shopify/sarama"
	cluster "github.com/bsm/sarama-cluster"
	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// consumer is the part of a cluster.Consumer the Source uses.
type consumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	MarkOffset(msg *sarama.ConsumerMessage, metadata string)
	Close() error
}

// Source implements the upscale.Source interface using kafka as a data
// source. A kafka topic has no end, so the Source reports io.EOF after
// MaxMsgs persons or once no message arrived for IdleTimeout.
type Source struct {
	Hosts       []string
	Topics      []string
	Group       string
	MaxMsgs     int
	IdleTimeout time.Duration
	Codec       Codec
	Log         upscale.Logger

	numMsgs  int
	consumer consumer
}

// NewSource gets a new Source
func NewSource() *Source {
	return &Source{
		Hosts:       []string{"localhost:9092"},
		Topics:      []string{"population"},
		Group:       "upscale",
		IdleTimeout: 10 * time.Second,
		Codec:       JSONCodec{},
		Log:         upscale.NopLogger{},
	}
}

// Person returns the person in the next kafka message.
func (s *Source) Person() (*upscale.Person, error) {
	if s.MaxMsgs > 0 && s.numMsgs >= s.MaxMsgs {
		return nil, io.EOF
	}
	var idle <-chan time.Time
	if s.IdleTimeout > 0 {
		timer := time.NewTimer(s.IdleTimeout)
		defer timer.Stop()
		idle = timer.C
	}
	select {
	case msg, ok := <-s.consumer.Messages():
		if !ok {
			return nil, errors.New("messages channel closed")
		}
		s.numMsgs++
		p, err := s.Codec.Decode(msg.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding message at %s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
		}
		s.consumer.MarkOffset(msg, "") // mark message as processed
		return p, nil
	case <-idle:
		s.Log.Printf("no message for %v, assuming the end of the population", s.IdleTimeout)
		return nil, io.EOF
	}
}

// Open initializes the kafka source.
func (s *Source) Open() error {
	// init (custom) config, enable errors and notifications
	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := cluster.NewConfig()
	config.Config.Version = sarama.V0_10_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Group.Return.Notifications = true

	c, err := cluster.NewConsumer(s.Hosts, s.Group, s.Topics, config)
	if err != nil {
		return errors.Wrap(err, "getting new consumer")
	}
	s.consumer = c

	// consume errors
	go func() {
		for err := range c.Errors() {
			s.Log.Printf("kafka consumer error: %v", err)
		}
	}()

	// consume notifications
	go func() {
		for ntf := range c.Notifications() {
			s.Log.Debugf("rebalanced: %+v", ntf)
		}
	}()
	return nil
}

// Close closes the underlying kafka consumer.
func (s *Source) Close() error {
	err := s.consumer.Close()
	return errors.Wrap(err, "closing kafka consumer")
}
