package client

import (
	"context"
	"fmt"

	"cohort/pkg/model"
)

const (
	createOrderPath   = "/api/payments/create-order"
	verifyPaymentPath = "/api/payments/verify"
)

type PaymentClient struct {
	httpClient *HttpClient
}

func NewPaymentClient(httpClient *HttpClient) *PaymentClient {
	return &PaymentClient{httpClient: httpClient}
}

type createOrderResponse struct {
	envelope
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (c *PaymentClient) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.PaymentOrder, error) {
	resp, err := c.httpClient.POST(ctx, createOrderPath, req)
	if err != nil {
		return nil, err
	}

	var body createOrderResponse
	if err := resp.DecodeJSON(&body); err != nil && resp.IsSuccess() {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	if err := checkEnvelope("create order", resp, &body.envelope); err != nil {
		return nil, err
	}
	if body.OrderID == "" {
		return nil, &RemoteError{Operation: "create order", StatusCode: resp.StatusCode, Message: "missing order id"}
	}

	currency := body.Currency
	if currency == "" {
		currency = req.Currency
	}
	amount := body.Amount
	if amount == 0 {
		amount = req.Amount
	}

	return &model.PaymentOrder{
		OrderID:  body.OrderID,
		Amount:   amount,
		Currency: currency,
		IssuedAgainst: model.Requester{
			Email:     req.RequesterEmail,
			Org:       req.RequesterOrg,
			Headcount: req.Headcount,
		},
	}, nil
}

func (c *PaymentClient) VerifyPayment(ctx context.Context, req model.VerifyPaymentRequest) error {
	resp, err := c.httpClient.POST(ctx, verifyPaymentPath, req)
	if err != nil {
		return err
	}

	var body envelope
	if err := resp.DecodeJSON(&body); err != nil && resp.IsSuccess() {
		return fmt.Errorf("failed to decode verification: %w", err)
	}
	return checkEnvelope("verify payment", resp, &body)
}
