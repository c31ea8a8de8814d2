package kafkasink

import (
	"context"
	"time"

	"quotemaker/pkg/quote"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer the sink needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a batching writer for topic. Messages are keyed by symbol, so each
// instrument stays ordered within its partition.
func NewWriter(brokers []string, topic string, batchSize int, batchTimeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		Async:        true,
	}
}

// Sink writes every quote line to Kafka.
type Sink struct {
	writer Writer
}

func NewSink(w Writer) *Sink {
	return &Sink{writer: w}
}

func (s *Sink) Name() string { return "kafka" }

func (s *Sink) Handle(ctx context.Context, q quote.Quote) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(q.Symbol.String()),
		Value: []byte(q.String()),
		Time:  time.Unix(q.Timestamp, 0),
	})
}

// Close flushes buffered messages.
func (s *Sink) Close() error {
	return s.writer.Close()
}
