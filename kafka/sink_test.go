package kafka

import (
	"strconv"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/qsimtools/upscale"
	"github.com/qsimtools/upscale/test"
)

func TestSink(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		p, err := JSONCodec{}.Decode(val)
		if err != nil {
			return err
		}
		if p.ID != "a" {
			t.Errorf("unexpected person %s", p.ID)
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	s := NewSink(producer, "upscaled-100pct", JSONCodec{})
	test.ErrNil(t, s.Write(test.HomeWorkHome("a", "car")), "writing")
	if err := s.Write(test.HomeWorkHome("b", "car")); err == nil {
		t.Fatal("expected the producer error")
	}
	test.ErrNil(t, s.Close(), "closing")
}

type chanConsumer struct {
	msgs   chan *sarama.ConsumerMessage
	marked int
	closed bool
}

func (c *chanConsumer) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func (c *chanConsumer) MarkOffset(msg *sarama.ConsumerMessage, metadata string) { c.marked++ }

func (c *chanConsumer) Close() error {
	c.closed = true
	return nil
}

func newChanConsumer(t *testing.T, codec Codec, persons ...*upscale.Person) *chanConsumer {
	c := &chanConsumer{msgs: make(chan *sarama.ConsumerMessage, len(persons))}
	for i, p := range persons {
		val, err := codec.Encode(p)
		test.ErrNil(t, err, "encoding")
		c.msgs <- &sarama.ConsumerMessage{Topic: "population", Offset: int64(i), Key: []byte(p.ID), Value: val}
	}
	return c
}

func TestSourceIdleTimeout(t *testing.T) {
	c := newChanConsumer(t, JSONCodec{}, test.HomeWorkHome("a", "car"), test.HomeWorkHome("b", "car"))
	s := NewSource()
	s.IdleTimeout = 50 * time.Millisecond
	s.consumer = c
	var ids []string
	for {
		p, err := s.Person()
		if err != nil {
			break
		}
		ids = append(ids, p.ID)
	}
	test.MustBe(t, ids, []string{"a", "b"})
	test.MustBe(t, c.marked, 2)
	test.ErrNil(t, s.Close(), "closing")
	test.MustBe(t, c.closed, true)
}

func TestSourceMaxMsgs(t *testing.T) {
	c := newChanConsumer(t, JSONCodec{}, test.HomeWorkHome("a", "car"), test.HomeWorkHome("b", "car"))
	s := NewSource()
	s.MaxMsgs = 1
	s.consumer = c
	p, err := s.Person()
	test.ErrNil(t, err, "reading")
	test.MustBe(t, p.ID, "a")
	if _, err := s.Person(); err == nil {
		t.Fatal("expected io.EOF after MaxMsgs")
	}
}

func TestUpscaleMain(t *testing.T) {
	persons := make([]*upscale.Person, 0, 10)
	for i := 0; i < 10; i++ {
		persons = append(persons, test.HomeWorkHome(strconv.Itoa(i), "car"))
	}
	codec, err := NewAvroCodec(DefaultSchemaID)
	test.ErrNil(t, err, "creating codec")
	src := NewSource()
	src.Codec = codec
	src.IdleTimeout = 50 * time.Millisecond
	src.consumer = newChanConsumer(t, codec, persons...)

	m := NewMain()
	m.Format = "avro"
	m.Factor = 2
	m.SampleSizes = []string{"1.0"}
	m.source = src
	m.newProducer = func(hosts []string) (sarama.SyncProducer, error) {
		p := mocks.NewSyncProducer(t, nil)
		for i := 0; i < 20; i++ {
			p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
				_, err := codec.Decode(val)
				return err
			})
		}
		return p, nil
	}
	test.ErrNil(t, m.Run(), "running")
	test.MustBe(t, m.Counts().Written, []int{20})
	test.MustBe(t, m.Topic(1), "upscaled-100pct")
}
