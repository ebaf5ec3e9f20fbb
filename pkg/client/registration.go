package client

import (
	"context"
	"fmt"

	"cohort/pkg/model"
)

const registrationsPath = "/api/college-bookings"

type RegistrationClient struct {
	httpClient *HttpClient
}

func NewRegistrationClient(httpClient *HttpClient) *RegistrationClient {
	return &RegistrationClient{httpClient: httpClient}
}

// Submit posts the verified registration. A success=false answer is returned as a
// *RemoteError carrying the backend's message.
func (c *RegistrationClient) Submit(ctx context.Context, payload model.RegistrationPayload) (*model.SubmissionResult, error) {
	resp, err := c.httpClient.POST(ctx, registrationsPath, payload)
	if err != nil {
		return nil, err
	}

	var body model.SubmissionResult
	if err := resp.DecodeJSON(&body); err != nil && resp.IsSuccess() {
		return nil, fmt.Errorf("failed to decode submission result: %w", err)
	}
	if err := checkEnvelope("submit registration", resp, &envelope{Success: body.Success, Message: body.Message}); err != nil {
		return nil, err
	}
	return &body, nil
}
