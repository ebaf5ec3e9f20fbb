package events

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"cohort/pkg/kafka"
	"cohort/pkg/logger"
)

type mockProducer struct {
	published []kafka.Message
	err       error
}

func (m *mockProducer) Publish(_ context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func (m *mockProducer) Close() error { return nil }

func TestKafkaPublisher_BuildsMessage(t *testing.T) {
	producer := &mockProducer{}
	pub := &KafkaPublisher{producer: producer, source: "portal"}

	err := pub.Publish(context.Background(), Event{
		Type:          TypeRegistrationSubmitted,
		Key:           "asha@north.edu",
		CorrelationID: "session-1",
		Payload:       RegistrationSubmitted{RegistrationID: "reg_1", Amount: 500},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(producer.published) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.published))
	}

	msg := producer.published[0]
	if msg.Key != "asha@north.edu" || msg.GetEventType() != TypeRegistrationSubmitted {
		t.Errorf("unexpected key/type %q %q", msg.Key, msg.GetEventType())
	}
	if msg.GetCorrelationID() != "session-1" || msg.Headers[kafka.HeaderSource] != "portal" {
		t.Errorf("unexpected headers %v", msg.Headers)
	}

	var payload RegistrationSubmitted
	if err := json.Unmarshal(msg.Value, &payload); err != nil || payload.RegistrationID != "reg_1" {
		t.Errorf("unexpected payload %s", msg.Value)
	}
}

func TestLogPublisher_WritesLogLine(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.INFO, Format: logger.JSON, Output: &buf})

	err := NewLogPublisher(log).Publish(context.Background(), Event{Type: TypeCheckoutFailed, Key: "k"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.Contains(buf.String(), TypeCheckoutFailed) {
		t.Errorf("expected event type in log, got %s", buf.String())
	}
}
