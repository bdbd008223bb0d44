package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer reads order events from a topic within a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

// Handler processes one message. A non-nil error leaves the offset
// uncommitted so the message is redelivered.
type Handler func(ctx context.Context, key []byte, value []byte) error

// NewConsumer creates a group consumer; instances sharing groupID split the
// partitions between them.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
	}
}

// Start fetches messages until ctx is cancelled, committing each offset only
// after the handler succeeds.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	log.Printf("kafka consumer started, topic=%s group=%s",
		c.reader.Config().Topic, c.reader.Config().GroupID)

	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("error fetching message: %v", err)
			time.Sleep(time.Second)
			continue
		}

		processCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = handler(processCtx, m.Key, m.Value)
		cancel()
		if err != nil {
			// Uncommitted, Kafka redelivers.
			log.Printf("processing failed (offset %d): %v", m.Offset, err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Printf("failed to commit offset: %v", err)
		}
	}
}

// Close disconnects from the broker.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
