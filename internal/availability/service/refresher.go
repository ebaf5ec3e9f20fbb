package service

import (
	"context"
	"time"

	"cohort/pkg/events"
	"cohort/pkg/kafka"
	"cohort/pkg/logger"
)

const (
	TriggerStartup = "startup"
	TriggerTicker  = "ticker"
	TriggerEvent   = "event"
)

// Refresher keeps the booked set warm: once at start, on every tick, and whenever
// a booking-changed event arrives. Triggers that arrive while a refresh is pending
// are coalesced.
type Refresher struct {
	service  AvailabilityService
	interval time.Duration
	timeout  time.Duration
	log      *logger.Logger
	trigger  chan string
}

func NewRefresher(service AvailabilityService, interval, timeout time.Duration, log *logger.Logger) *Refresher {
	return &Refresher{
		service:  service,
		interval: interval,
		timeout:  timeout,
		log:      log.Component("availability_refresher"),
		trigger:  make(chan string, 1),
	}
}

func (r *Refresher) Name() string {
	return "availability-refresher"
}

// Run blocks until ctx is cancelled. Refresh failures are logged and never stop it.
func (r *Refresher) Run(ctx context.Context) error {
	r.refresh(ctx, TriggerStartup)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.refresh(ctx, TriggerTicker)
		case reason := <-r.trigger:
			r.refresh(ctx, reason)
		}
	}
}

// Trigger requests an out-of-band refresh without blocking.
func (r *Refresher) Trigger(reason string) {
	select {
	case r.trigger <- reason:
	default:
	}
}

// HandleBookingChanged is the Kafka handler for the bookings topic.
func (r *Refresher) HandleBookingChanged(_ context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != "" && eventType != events.TypeBookingChanged {
		r.log.Debug("Ignoring event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var payload events.BookingChanged
	if len(msg.Value) > 0 {
		if err := msg.DecodeValue(&payload); err != nil {
			return kafka.NewPermanentError("invalid booking.changed payload", err)
		}
	}

	r.log.Info("Booking change received",
		"event_id", msg.GetEventID(),
		"owner_label", payload.OwnerLabel,
		"action", payload.Action,
	)
	r.Trigger(TriggerEvent)
	return nil
}

func (r *Refresher) refresh(ctx context.Context, trigger string) {
	refreshCtx, cancel := context.WithTimeout(WithTrigger(ctx, trigger), r.timeout)
	defer cancel()

	// already logged and recorded by the service
	_ = r.service.Refresh(refreshCtx)
}
