package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cohort/internal/checkout/core"
	checkouterrors "cohort/internal/checkout/errors"
	"cohort/internal/checkout/service"
	"cohort/internal/checkout/validator"
	apperrors "cohort/pkg/errors"
	"cohort/pkg/logger"
	"cohort/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCheckoutService struct {
	start    func(ctx context.Context, req model.OrderRequest, reg model.Registration) (service.SessionView, error)
	get      func(id string) (service.SessionView, error)
	complete func(id string, proof model.PaymentProof) error
	dismiss  func(id string) error
}

func (m *mockCheckoutService) Start(ctx context.Context, req model.OrderRequest, reg model.Registration) (service.SessionView, error) {
	return m.start(ctx, req, reg)
}

func (m *mockCheckoutService) Get(id string) (service.SessionView, error) {
	return m.get(id)
}

func (m *mockCheckoutService) Complete(id string, proof model.PaymentProof) error {
	return m.complete(id, proof)
}

func (m *mockCheckoutService) Dismiss(id string) error {
	return m.dismiss(id)
}

func setupRouter(svc service.CheckoutService) *httprouter.Router {
	log := logger.Discard()
	router := httprouter.New()
	NewCheckoutHandler(svc, validator.NewCheckoutValidator(log), log).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const startBody = `{
	"order": {"amount": 250000, "currency": "INR", "requesterName": "Asha Rao", "requesterOrg": "North College",
		"requesterEmail": "asha@north.edu", "requesterPhone": "+919876543210", "headcount": 1},
	"registration": {"organizationName": "North College", "contactName": "Asha Rao", "contactEmail": "asha@north.edu",
		"contactPhone": "+919876543210", "participants": [{"name": "Ravi Kumar", "email": "ravi@north.edu"}],
		"startDate": "2024-05-01", "endDate": "2024-05-30"}
}`

func TestStart(t *testing.T) {
	var got model.Registration
	svc := &mockCheckoutService{start: func(_ context.Context, req model.OrderRequest, reg model.Registration) (service.SessionView, error) {
		got = reg
		assert.Equal(t, int64(250000), req.Amount)
		return service.SessionView{SessionID: "abc", State: core.Idle}, nil
	}}

	rec := do(setupRouter(svc), http.MethodPost, "/api/v1/checkout/sessions", startBody)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-05-01", got.StartDate.String())

	var resp struct {
		Data service.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp.Data.SessionID)
}

func TestStart_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"malformed json", `{"order":`, nil, http.StatusBadRequest},
		{"unknown field", `{"order": {}, "coupon": "X"}`, nil, http.StatusBadRequest},
		{"validation", startBody, apperrors.Validation("validation failed", nil), http.StatusUnprocessableEntity},
		{"active session", startBody, apperrors.Conflict(checkouterrors.ErrSessionActive.Error()), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCheckoutService{start: func(context.Context, model.OrderRequest, model.Registration) (service.SessionView, error) {
				return service.SessionView{}, tt.serviceErr
			}}
			rec := do(setupRouter(svc), http.MethodPost, "/api/v1/checkout/sessions", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestGet(t *testing.T) {
	svc := &mockCheckoutService{get: func(id string) (service.SessionView, error) {
		if id != "abc" {
			return service.SessionView{}, apperrors.NotFoundWithID("Checkout session", id)
		}
		return service.SessionView{
			SessionID: "abc",
			State:     core.AwaitingUserCheckout,
			InFlight:  true,
			Checkout:  &model.CheckoutConfig{OrderID: "order_1", KeyID: "rzp_test_key"},
		}, nil
	}}
	router := setupRouter(svc)

	rec := do(router, http.MethodGet, "/api/v1/checkout/sessions/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"awaiting_user_checkout"`)
	assert.Contains(t, rec.Body.String(), `"orderId":"order_1"`)

	rec = do(router, http.MethodGet, "/api/v1/checkout/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplete(t *testing.T) {
	var got model.PaymentProof
	svc := &mockCheckoutService{complete: func(id string, proof model.PaymentProof) error {
		if id == "done" {
			return apperrors.Conflict(checkouterrors.ErrNotAwaitingCheckout.Error())
		}
		got = proof
		return nil
	}}
	router := setupRouter(svc)

	body := `{"orderId": "order_1", "paymentId": "pay_1", "signature": "sig"}`
	rec := do(router, http.MethodPost, "/api/v1/checkout/sessions/abc/complete", body)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "pay_1", got.PaymentID)

	rec = do(router, http.MethodPost, "/api/v1/checkout/sessions/abc/complete", `{"orderId": "order_1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/checkout/sessions/done/complete", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDismiss(t *testing.T) {
	svc := &mockCheckoutService{dismiss: func(id string) error {
		if id != "abc" {
			return apperrors.NotFoundWithID("Checkout session", id)
		}
		return nil
	}}
	router := setupRouter(svc)

	rec := do(router, http.MethodPost, "/api/v1/checkout/sessions/abc/dismiss", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/checkout/sessions/other/dismiss", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
