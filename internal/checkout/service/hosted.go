package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	checkouterrors "cohort/internal/checkout/errors"
	"cohort/pkg/client"
	"cohort/pkg/logger"
	"cohort/pkg/model"
)

// ScriptProbe confirms the gateway's checkout script is reachable. The browser
// loads the script itself; the portal only refuses to create orders it could
// never collect.
type ScriptProbe struct {
	httpClient *client.HttpClient
	log        *logger.Logger
	mu         sync.Mutex
	loaded     atomic.Bool
}

func NewScriptProbe(scriptURL string, timeout time.Duration, log *logger.Logger) *ScriptProbe {
	p := &ScriptProbe{log: log}
	if scriptURL == "" {
		p.loaded.Store(true)
		return p
	}
	p.httpClient = client.NewHttpClient(scriptURL, timeout)
	return p
}

func (p *ScriptProbe) Loaded() bool {
	return p.loaded.Load()
}

func (p *ScriptProbe) Load(ctx context.Context) error {
	if p.loaded.Load() {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded.Load() {
		return nil
	}

	resp, err := p.httpClient.GET(ctx, "")
	if err != nil {
		p.log.Warn("Checkout script probe failed", "url", p.httpClient.BaseURL, "error", err)
		return err
	}
	if !resp.IsSuccess() {
		p.log.Warn("Checkout script probe failed", "url", p.httpClient.BaseURL, "status", resp.StatusCode)
		return fmt.Errorf("checkout script returned status %d", resp.StatusCode)
	}

	p.loaded.Store(true)
	p.log.Info("Checkout script reachable", "url", p.httpClient.BaseURL)
	return nil
}

type pendingCheckout struct {
	config  model.CheckoutConfig
	outcome chan Outcome
}

// HostedWidget hands the checkout config to the browser and waits for the browser
// to report back. Each Open accepts exactly one Complete or Dismiss.
type HostedWidget struct {
	mu      sync.Mutex
	pending *pendingCheckout
}

func NewHostedWidget() *HostedWidget {
	return &HostedWidget{}
}

func (w *HostedWidget) Open(ctx context.Context, cfg model.CheckoutConfig) (Outcome, error) {
	w.mu.Lock()
	if w.pending != nil {
		w.mu.Unlock()
		return Outcome{}, checkouterrors.ErrAlreadyInProgress
	}
	p := &pendingCheckout{config: cfg, outcome: make(chan Outcome, 1)}
	w.pending = p
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.pending == p {
			w.pending = nil
		}
		w.mu.Unlock()
	}()

	select {
	case outcome := <-p.outcome:
		return outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Pending returns the config of the checkout currently awaiting the user.
func (w *HostedWidget) Pending() (model.CheckoutConfig, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return model.CheckoutConfig{}, false
	}
	return w.pending.config, true
}

func (w *HostedWidget) Complete(proof model.PaymentProof) error {
	return w.resolve(Outcome{Proof: &proof})
}

func (w *HostedWidget) Dismiss() error {
	return w.resolve(Outcome{Dismissed: true})
}

func (w *HostedWidget) resolve(outcome Outcome) error {
	w.mu.Lock()
	p := w.pending
	w.pending = nil
	w.mu.Unlock()

	if p == nil {
		return checkouterrors.ErrNotAwaitingCheckout
	}
	p.outcome <- outcome
	return nil
}
