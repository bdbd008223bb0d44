package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []skafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewProducerWithWriter(fw)

	err := p.Publish(context.Background(), "order-123", map[string]string{"status": "Posted"})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "order-123" {
		t.Errorf("key = %q, want order-123", fw.msgs[0].Key)
	}
	var payload map[string]string
	if err := json.Unmarshal(fw.msgs[0].Value, &payload); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if payload["status"] != "Posted" {
		t.Errorf("payload = %v", payload)
	}
}

func TestPublish_WriterError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(fw)

	if err := p.Publish(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected error from failing writer")
	}
}
