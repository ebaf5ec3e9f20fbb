// Package events publishes domain events of the portal. Events carry metadata only,
// never uploaded files or payment signatures.
package events

import (
	"context"
	"time"

	"cohort/pkg/kafka"
	"cohort/pkg/logger"
)

const (
	TypeRegistrationSubmitted = "registration.submitted"
	TypeCheckoutFailed        = "checkout.failed"
	TypeCheckoutCancelled     = "checkout.cancelled"
	TypeCareerApplication     = "career.application.received"

	// TypeBookingChanged is consumed, not published, by the portal.
	TypeBookingChanged = "booking.changed"

	SchemaVersion = "1"
)

type Event struct {
	Type          string
	Key           string
	CorrelationID string
	Payload       any
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type RegistrationSubmitted struct {
	SessionID      string    `json:"sessionId"`
	RegistrationID string    `json:"registrationId"`
	OrderID        string    `json:"orderId"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Organization   string    `json:"organization"`
	Participants   int       `json:"participants"`
	StartDate      string    `json:"startDate"`
	EndDate        string    `json:"endDate"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type CheckoutFinished struct {
	SessionID    string    `json:"sessionId"`
	State        string    `json:"state"`
	FailedIn     string    `json:"failedIn,omitempty"`
	Message      string    `json:"message"`
	OrderID      string    `json:"orderId,omitempty"`
	Organization string    `json:"organization"`
	OccurredAt   time.Time `json:"occurredAt"`
}

type CareerApplicationReceived struct {
	UserKey           string    `json:"userKey"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Position          string    `json:"position"`
	ResumeFilename    string    `json:"resumeFilename"`
	ResumeContentType string    `json:"resumeContentType"`
	ResumeSize        int64     `json:"resumeSize"`
	OccurredAt        time.Time `json:"occurredAt"`
}

// BookingChanged is the payload on the bookings topic. Only its arrival matters;
// the portal always refetches the whole booked set.
type BookingChanged struct {
	OwnerLabel string `json:"ownerLabel,omitempty"`
	Action     string `json:"action,omitempty"`
}

// kafkaProducer is the part of *kafka.Producer the publisher uses.
type kafkaProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer kafkaProducer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.Key).
		WithValue(event.Payload).
		WithEventType(event.Type).
		WithCorrelationID(event.CorrelationID).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher is used when Kafka is disabled: every event becomes a log line.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.log.Info("Event published",
		"event_type", event.Type,
		"key", event.Key,
		"correlation_id", event.CorrelationID,
		"payload", event.Payload,
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
