package service

import (
	"context"
	"sync"
	"time"

	"cohort/internal/checkout/core"
	checkouterrors "cohort/internal/checkout/errors"
	"cohort/pkg/config"
	apperrors "cohort/pkg/errors"
	"cohort/pkg/model"

	"github.com/google/uuid"
)

const minEvictionInterval = time.Second

type Session struct {
	ID        string
	Email     string
	CreatedAt time.Time

	orchestrator *Orchestrator
	widget       *HostedWidget
	cancel       context.CancelFunc
	done         chan struct{}

	mu         sync.Mutex
	finishedAt time.Time
}

func (s *Session) finished() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedAt, !s.finishedAt.IsZero()
}

type SessionView struct {
	SessionID      string                `json:"sessionId"`
	State          core.State            `json:"state"`
	InFlight       bool                  `json:"inFlight"`
	Checkout       *model.CheckoutConfig `json:"checkout,omitempty"`
	Error          string                `json:"error,omitempty"`
	FailedIn       core.State            `json:"failedIn,omitempty"`
	RegistrationID string                `json:"registrationId,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

type CheckoutService interface {
	Start(ctx context.Context, req model.OrderRequest, reg model.Registration) (SessionView, error)
	Get(id string) (SessionView, error)
	Complete(id string, proof model.PaymentProof) error
	Dismiss(id string) error
}

// SessionRegistry runs one Orchestrator per checkout session. Each run is bounded
// by the session TTL and a requester may hold at most one active session.
type SessionRegistry struct {
	cfg  *config.Config
	deps Dependencies
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	active   map[string]string
	closed   bool
	wg       sync.WaitGroup
}

func NewSessionRegistry(cfg *config.Config, deps Dependencies) *SessionRegistry {
	return &SessionRegistry{
		cfg:      cfg,
		deps:     deps,
		now:      time.Now,
		sessions: make(map[string]*Session),
		active:   make(map[string]string),
	}
}

func (r *SessionRegistry) Start(ctx context.Context, req model.OrderRequest, reg model.Registration) (SessionView, error) {
	req = normalizeOrder(req)
	reg = normalizeRegistration(reg)

	if err := r.deps.Validator.ValidateAttempt(&req, &reg); err != nil {
		r.cfg.Log.Warn("Checkout request rejected", "error", err)
		return SessionView{}, apperrors.Validation(err.Error(), map[string]any{"errors": err})
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return SessionView{}, apperrors.Unavailable("checkout")
	}
	if _, busy := r.active[req.RequesterEmail]; busy {
		r.mu.Unlock()
		return SessionView{}, apperrors.Conflict(checkouterrors.ErrSessionActive.Error())
	}

	id := uuid.NewString()
	widget := NewHostedWidget()
	deps := r.deps
	deps.Widget = widget

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.CheckoutSessionTTL)
	s := &Session{
		ID:           id,
		Email:        req.RequesterEmail,
		CreatedAt:    r.now().UTC(),
		orchestrator: NewOrchestrator(id, r.cfg, deps),
		widget:       widget,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	r.sessions[id] = s
	r.active[s.Email] = id
	r.wg.Add(1)
	r.mu.Unlock()

	r.deps.Metrics.SessionStarted()
	r.cfg.Log.Info("Checkout session started",
		"session_id", id,
		"organization", reg.OrganizationName,
		"amount", req.Amount,
	)

	go r.run(runCtx, s, req, reg)
	return r.view(s), nil
}

func (r *SessionRegistry) run(ctx context.Context, s *Session, req model.OrderRequest, reg model.Registration) {
	defer r.wg.Done()
	defer s.cancel()

	s.orchestrator.InitiatePayment(ctx, req, reg,
		func(registrationID string) {
			r.cfg.Log.Info("Checkout session completed", "session_id", s.ID, "registration_id", registrationID)
		},
		func(message string) {
			r.cfg.Log.Info("Checkout session ended without registration", "session_id", s.ID, "reason", message)
		},
	)

	r.mu.Lock()
	if r.active[s.Email] == s.ID {
		delete(r.active, s.Email)
	}
	r.mu.Unlock()

	s.mu.Lock()
	s.finishedAt = r.now()
	s.mu.Unlock()

	close(s.done)
	r.deps.Metrics.SessionFinished()
}

func (r *SessionRegistry) lookup(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Checkout session", id)
	}
	return s, nil
}

func (r *SessionRegistry) Get(id string) (SessionView, error) {
	s, err := r.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	return r.view(s), nil
}

func (r *SessionRegistry) view(s *Session) SessionView {
	res := s.orchestrator.Result()
	v := SessionView{
		SessionID:      s.ID,
		State:          res.State,
		InFlight:       s.orchestrator.InFlight(),
		Error:          res.Message,
		FailedIn:       res.FailedIn,
		RegistrationID: res.RegistrationID,
		CreatedAt:      s.CreatedAt,
	}
	if cfg, ok := s.widget.Pending(); ok {
		v.Checkout = &cfg
	}
	return v
}

// Complete forwards the widget's payment proof to the waiting session.
func (r *SessionRegistry) Complete(id string, proof model.PaymentProof) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	if err := s.widget.Complete(proof); err != nil {
		return apperrors.Conflict(err.Error())
	}
	r.cfg.Log.Info("Checkout completed by user", "session_id", id, "payment_id", proof.PaymentID)
	return nil
}

func (r *SessionRegistry) Dismiss(id string) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	if err := s.widget.Dismiss(); err != nil {
		return apperrors.Conflict(err.Error())
	}
	r.cfg.Log.Info("Checkout dismissed by user", "session_id", id)
	return nil
}

func (r *SessionRegistry) evictExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		finishedAt, ok := s.finished()
		if ok && now.Sub(finishedAt) >= r.cfg.CheckoutSessionTTL {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (r *SessionRegistry) Name() string {
	return "checkout-sessions"
}

// Run evicts finished sessions until ctx ends, then cancels the running ones
// and waits for them to wind down.
func (r *SessionRegistry) Run(ctx context.Context) error {
	interval := r.cfg.CheckoutSessionTTL / 4
	if interval < minEvictionInterval {
		interval = minEvictionInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return nil
		case <-ticker.C:
			if n := r.evictExpired(r.now()); n > 0 {
				r.cfg.Log.Debug("Evicted finished checkout sessions", "count", n)
			}
		}
	}
}

func (r *SessionRegistry) shutdown() {
	r.mu.Lock()
	r.closed = true
	for _, s := range r.sessions {
		s.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
	r.cfg.Log.Info("Checkout sessions stopped")
}
