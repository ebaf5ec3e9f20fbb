package client

import (
	"context"
	"time"

	"cohort/pkg/model"
)

// Backend groups the remote collaborators used by the portal.
type Backend struct {
	Bookings      *BookingClient
	Payments      *PaymentClient
	Registrations *RegistrationClient
}

func NewBackend(baseURL string, timeout time.Duration, maxResponseSize int64) *Backend {
	httpClient := NewHttpClient(baseURL, timeout)
	if maxResponseSize > 0 {
		httpClient.MaxResponseSize = maxResponseSize
	}
	return &Backend{
		Bookings:      NewBookingClient(httpClient),
		Payments:      NewPaymentClient(httpClient),
		Registrations: NewRegistrationClient(httpClient),
	}
}

func (b *Backend) GetBookedDates(ctx context.Context) ([]model.BookingRange, error) {
	return b.Bookings.GetBookedDates(ctx)
}

func (b *Backend) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.PaymentOrder, error) {
	return b.Payments.CreateOrder(ctx, req)
}

func (b *Backend) VerifyPayment(ctx context.Context, req model.VerifyPaymentRequest) error {
	return b.Payments.VerifyPayment(ctx, req)
}

func (b *Backend) SubmitRegistration(ctx context.Context, payload model.RegistrationPayload) (*model.SubmissionResult, error) {
	return b.Registrations.Submit(ctx, payload)
}
