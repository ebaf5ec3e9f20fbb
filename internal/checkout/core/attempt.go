package core

import "cohort/pkg/model"

// Attempt is the working set of one checkout run. Order and Proof live only for
// the duration of the attempt.
type Attempt struct {
	SessionID      string
	Request        model.OrderRequest
	Registration   model.Registration
	Order          *model.PaymentOrder
	Proof          *model.PaymentProof
	RegistrationID string
}

func NewAttempt(sessionID string, req model.OrderRequest, reg model.Registration) *Attempt {
	return &Attempt{
		SessionID:    sessionID,
		Request:      req,
		Registration: reg,
	}
}

func (a *Attempt) OrderID() string {
	if a.Order == nil {
		return ""
	}
	return a.Order.OrderID
}
