package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cohort/internal/checkout/core"
	checkouterrors "cohort/internal/checkout/errors"
	"cohort/pkg/client"
	"cohort/pkg/config"
	apperrors "cohort/pkg/errors"
	"cohort/pkg/events"
	"cohort/pkg/metrics"
	"cohort/pkg/model"
)

const (
	eventPublishTimeout = 5 * time.Second

	outcomeRejected = "rejected"
)

type (
	SuccessFunc func(registrationID string)
	ErrorFunc   func(message string)
)

type Dependencies struct {
	Backend   PaymentBackend
	Loader    ScriptLoader
	Widget    Widget
	Validator AttemptValidator
	Publisher events.Publisher
	Metrics   *metrics.Metrics
}

// Result describes the last attempt. OrderID is kept for reporting only; the
// order itself is discarded when the attempt ends.
type Result struct {
	State          core.State `json:"state"`
	FailedIn       core.State `json:"failedIn,omitempty"`
	Message        string     `json:"message,omitempty"`
	RegistrationID string     `json:"registrationId,omitempty"`
	OrderID        string     `json:"orderId,omitempty"`
}

// Orchestrator drives one checkout at a time through load, order, widget,
// verification and submission. A second InitiatePayment while one is running is
// rejected without touching the running attempt.
type Orchestrator struct {
	sessionID string
	cfg       *config.Config
	deps      Dependencies
	flow      *core.Flow

	inFlight atomic.Bool
	mu       sync.RWMutex
	machine  *core.Machine
	result   Result
}

func NewOrchestrator(sessionID string, cfg *config.Config, deps Dependencies) *Orchestrator {
	o := &Orchestrator{
		sessionID: sessionID,
		cfg:       cfg,
		deps:      deps,
		machine:   core.NewMachine(),
		result:    Result{State: core.Idle},
	}
	o.flow = core.NewFlow("checkout",
		core.NewStep("validate", core.Idle, o.validate),
		core.NewStep("load_script", core.ScriptLoading, o.loadScript),
		core.NewStep("create_order", core.OrderCreating, o.createOrder),
		core.NewStep("await_checkout", core.AwaitingUserCheckout, o.awaitCheckout),
		core.NewStep("verify_payment", core.Verifying, o.verifyPayment),
		core.NewStep("submit_registration", core.Submitting, o.submitRegistration),
	)
	return o
}

func (o *Orchestrator) State() core.State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.machine.State()
}

func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Result returns the outcome of the last finished attempt, or the live state of
// the running one.
func (o *Orchestrator) Result() Result {
	o.mu.RLock()
	defer o.mu.RUnlock()
	res := o.result
	res.State = o.machine.State()
	return res
}

// InitiatePayment runs one attempt to completion and returns its final state.
// Exactly one of onSuccess or onError is called, after the in-flight flag is
// cleared.
func (o *Orchestrator) InitiatePayment(ctx context.Context, req model.OrderRequest, reg model.Registration, onSuccess SuccessFunc, onError ErrorFunc) core.State {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.cfg.Log.Warn("Rejected concurrent checkout attempt", "session_id", o.sessionID)
		o.deps.Metrics.ObserveCheckoutOutcome(outcomeRejected)
		if onError != nil {
			onError(checkouterrors.ErrAlreadyInProgress.Error())
		}
		return o.State()
	}

	machine := core.NewMachine(o.observeState)
	o.mu.Lock()
	o.machine = machine
	o.result = Result{State: core.Idle}
	o.mu.Unlock()

	attempt := core.NewAttempt(o.sessionID, req, reg)
	err := core.NewEngine(machine).Run(ctx, o.flow, attempt)
	if err == nil {
		err = machine.Transition(core.Succeeded)
	}

	res := o.finish(machine, attempt, err)
	o.publish(ctx, attempt, res)
	attempt.Order = nil
	attempt.Proof = nil

	if res.State == core.Succeeded {
		if onSuccess != nil {
			onSuccess(res.RegistrationID)
		}
	} else if onError != nil {
		onError(res.Message)
	}
	return res.State
}

func (o *Orchestrator) finish(machine *core.Machine, attempt *core.Attempt, err error) Result {
	res := Result{OrderID: attempt.OrderID()}

	if err == nil {
		res.State = core.Succeeded
		res.RegistrationID = attempt.RegistrationID
		o.cfg.Log.Info("Checkout succeeded",
			"session_id", o.sessionID,
			"order_id", res.OrderID,
			"registration_id", res.RegistrationID,
		)
	} else {
		target := core.Errored
		if errors.Is(err, checkouterrors.ErrCancelledByUser) {
			target = core.CancelledByUser
		}

		var stepErr *core.StepError
		if errors.As(err, &stepErr) {
			res.FailedIn = stepErr.State
		}

		if tErr := machine.Transition(target); tErr != nil {
			o.cfg.Log.Error("Failed to record checkout failure", "session_id", o.sessionID, "error", tErr)
			target = core.Errored
		}

		res.State = target
		res.Message = apperrors.MessageOf(err, checkouterrors.ErrSubmissionFailed.Error())
		o.cfg.Log.Warn("Checkout did not complete",
			"session_id", o.sessionID,
			"state", target,
			"failed_in", res.FailedIn,
			"order_id", res.OrderID,
			"message", res.Message,
			"error", err,
		)
	}

	o.mu.Lock()
	o.result = res
	o.mu.Unlock()
	o.inFlight.Store(false)

	o.deps.Metrics.ObserveCheckoutOutcome(res.State.String())
	return res
}

func (o *Orchestrator) observeState(from, to core.State, spent time.Duration) {
	o.deps.Metrics.ObserveCheckoutState(from.String(), spent)
	o.cfg.Log.Debug("Checkout state changed",
		"session_id", o.sessionID,
		"from", from,
		"to", to,
		"spent", spent,
	)
}

func (o *Orchestrator) validate(_ context.Context, attempt *core.Attempt) error {
	attempt.Request = normalizeOrder(attempt.Request)
	attempt.Registration = normalizeRegistration(attempt.Registration)

	if err := o.deps.Validator.ValidateAttempt(&attempt.Request, &attempt.Registration); err != nil {
		return apperrors.Validation(err.Error(), map[string]any{"errors": err})
	}
	return nil
}

func (o *Orchestrator) loadScript(ctx context.Context, _ *core.Attempt) error {
	if o.deps.Loader.Loaded() {
		return nil
	}
	if err := o.deps.Loader.Load(ctx); err != nil {
		return apperrors.Upstream(checkouterrors.ErrGatewayUnavailable.Error(), err)
	}
	return nil
}

func (o *Orchestrator) createOrder(ctx context.Context, attempt *core.Attempt) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.CheckoutOrderTimeout)
	defer cancel()

	req := attempt.Request
	if req.Currency == "" {
		req.Currency = o.cfg.CheckoutCurrency
	}

	order, err := o.deps.Backend.CreateOrder(ctx, req)
	if err != nil {
		return apperrors.Upstream(checkouterrors.ErrOrderFailed.Error(), err)
	}

	attempt.Order = order
	o.cfg.Log.Info("Payment order created",
		"session_id", o.sessionID,
		"order_id", order.OrderID,
		"amount", order.Amount,
		"currency", order.Currency,
	)
	return nil
}

func (o *Orchestrator) checkoutConfig(attempt *core.Attempt) model.CheckoutConfig {
	return model.CheckoutConfig{
		KeyID:       o.cfg.CheckoutKeyID,
		Amount:      attempt.Order.Amount,
		Currency:    attempt.Order.Currency,
		OrderID:     attempt.Order.OrderID,
		Name:        o.cfg.CheckoutMerchantName,
		Description: fmt.Sprintf("Internship registration for %s", attempt.Registration.OrganizationName),
		Prefill: model.CheckoutPrefill{
			Name:    attempt.Request.RequesterName,
			Email:   attempt.Request.RequesterEmail,
			Contact: attempt.Request.RequesterPhone,
		},
		ThemeColor: o.cfg.CheckoutThemeColor,
	}
}

func (o *Orchestrator) awaitCheckout(ctx context.Context, attempt *core.Attempt) error {
	outcome, err := o.deps.Widget.Open(ctx, o.checkoutConfig(attempt))
	if err != nil {
		if errors.Is(err, checkouterrors.ErrAlreadyInProgress) {
			return apperrors.Conflict(checkouterrors.ErrAlreadyInProgress.Error())
		}
		return apperrors.Timeout(checkouterrors.ErrSessionExpired.Error())
	}

	if outcome.Dismissed {
		return apperrors.Cancelled(checkouterrors.ErrCancelledByUser)
	}
	attempt.Proof = outcome.Proof
	return nil
}

func (o *Orchestrator) verifyPayment(ctx context.Context, attempt *core.Attempt) error {
	proof := attempt.Proof
	if proof == nil || proof.PaymentID == "" || proof.Signature == "" {
		return apperrors.Upstream(checkouterrors.ErrVerificationFailed.Error(), errors.New("incomplete payment proof"))
	}
	if proof.OrderID != attempt.Order.OrderID {
		return apperrors.Upstream(checkouterrors.ErrVerificationFailed.Error(),
			fmt.Errorf("proof is for order %q, expected %q", proof.OrderID, attempt.Order.OrderID))
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.CheckoutVerifyTimeout)
	defer cancel()

	err := o.deps.Backend.VerifyPayment(ctx, model.VerifyPaymentRequest{
		OrderID:        attempt.Order.OrderID,
		PaymentID:      proof.PaymentID,
		Signature:      proof.Signature,
		Amount:         attempt.Order.Amount,
		RequesterEmail: attempt.Request.RequesterEmail,
		RequesterOrg:   attempt.Request.RequesterOrg,
	})
	if err != nil {
		return apperrors.Upstream(checkouterrors.ErrVerificationFailed.Error(), err)
	}
	return nil
}

func (o *Orchestrator) submitRegistration(ctx context.Context, attempt *core.Attempt) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.CheckoutSubmitTimeout)
	defer cancel()

	payload := model.RegistrationPayload{
		Registration: attempt.Registration,
		PaymentProof: *attempt.Proof,
		Amount:       attempt.Order.Amount,
	}

	result, err := o.deps.Backend.SubmitRegistration(ctx, payload)
	if err != nil {
		message := checkouterrors.ErrSubmissionFailed.Error()
		var remoteErr *client.RemoteError
		if errors.As(err, &remoteErr) && remoteErr.Message != "" {
			message = remoteErr.Message
		}
		return apperrors.Upstream(message, err)
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = checkouterrors.ErrSubmissionFailed.Error()
		}
		return apperrors.Upstream(message, errors.New("registration rejected"))
	}

	attempt.RegistrationID = result.RegistrationID
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, attempt *core.Attempt, res Result) {
	if o.deps.Publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	now := time.Now().UTC()
	event := events.Event{Key: o.sessionID, CorrelationID: o.sessionID}

	switch res.State {
	case core.Succeeded:
		event.Type = events.TypeRegistrationSubmitted
		event.Payload = events.RegistrationSubmitted{
			SessionID:      o.sessionID,
			RegistrationID: res.RegistrationID,
			OrderID:        res.OrderID,
			Amount:         attempt.Order.Amount,
			Currency:       attempt.Order.Currency,
			Organization:   attempt.Registration.OrganizationName,
			Participants:   len(attempt.Registration.Participants),
			StartDate:      attempt.Registration.StartDate.String(),
			EndDate:        attempt.Registration.EndDate.String(),
			OccurredAt:     now,
		}
	default:
		event.Type = events.TypeCheckoutFailed
		if res.State == core.CancelledByUser {
			event.Type = events.TypeCheckoutCancelled
		}
		event.Payload = events.CheckoutFinished{
			SessionID:    o.sessionID,
			State:        res.State.String(),
			FailedIn:     res.FailedIn.String(),
			Message:      res.Message,
			OrderID:      res.OrderID,
			Organization: attempt.Registration.OrganizationName,
			OccurredAt:   now,
		}
	}

	if err := o.deps.Publisher.Publish(ctx, event); err != nil {
		o.cfg.Log.Error("Failed to publish checkout event",
			"session_id", o.sessionID,
			"event_type", event.Type,
			"error", err,
		)
	}
}
