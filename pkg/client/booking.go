package client

import (
	"context"
	"fmt"

	"cohort/pkg/model"
)

const bookedDatesPath = "/api/college-bookings/booked-dates"

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(httpClient *HttpClient) *BookingClient {
	return &BookingClient{httpClient: httpClient}
}

type bookedDatesResponse struct {
	envelope
	BookedDates []model.BookingRange `json:"bookedDates"`
}

// GetBookedDates returns the booked ranges in the order the backend lists them.
// A range whose start is after its end makes the whole response invalid.
func (c *BookingClient) GetBookedDates(ctx context.Context) ([]model.BookingRange, error) {
	resp, err := c.httpClient.GET(ctx, bookedDatesPath)
	if err != nil {
		return nil, err
	}

	var body bookedDatesResponse
	if err := resp.DecodeJSON(&body); err != nil && resp.IsSuccess() {
		return nil, fmt.Errorf("failed to decode booked dates: %w", err)
	}
	if err := checkEnvelope("get booked dates", resp, &body.envelope); err != nil {
		return nil, err
	}

	for i, b := range body.BookedDates {
		if !b.Valid() {
			return nil, fmt.Errorf("invalid booked range at index %d: %s..%s", i, b.StartDate, b.EndDate)
		}
	}

	if body.BookedDates == nil {
		return []model.BookingRange{}, nil
	}
	return body.BookedDates, nil
}
