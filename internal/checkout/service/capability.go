package service

import (
	"context"

	"cohort/pkg/model"
)

// ScriptLoader makes the external checkout capability available. Load must be
// idempotent: once it succeeded, later calls return immediately.
type ScriptLoader interface {
	Load(ctx context.Context) error
	Loaded() bool
}

// Outcome is the single answer of the checkout widget: a proof, or a dismissal.
type Outcome struct {
	Proof     *model.PaymentProof
	Dismissed bool
}

// Widget opens the external checkout UI and blocks until it reports exactly one
// Outcome or ctx ends.
type Widget interface {
	Open(ctx context.Context, cfg model.CheckoutConfig) (Outcome, error)
}

// PaymentBackend is the remote side of a checkout.
type PaymentBackend interface {
	CreateOrder(ctx context.Context, req model.OrderRequest) (*model.PaymentOrder, error)
	VerifyPayment(ctx context.Context, req model.VerifyPaymentRequest) error
	SubmitRegistration(ctx context.Context, payload model.RegistrationPayload) (*model.SubmissionResult, error)
}

type AttemptValidator interface {
	ValidateAttempt(req *model.OrderRequest, reg *model.Registration) error
}
