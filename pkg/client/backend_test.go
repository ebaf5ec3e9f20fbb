package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cohort/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBackend(server.URL, 2*time.Second, 0)
}

func TestGetBookedDates_Success(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, bookedDatesPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"bookedDates":[
			{"ownerLabel":"North College","startDate":"2024-01-10","endDate":"2024-01-15"},
			{"ownerLabel":"South College","startDate":"2024-03-01T00:00:00.000Z","endDate":"2024-03-10T00:00:00.000Z"}
		]}`))
	})

	ranges, err := backend.GetBookedDates(context.Background())
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, "North College", ranges[0].OwnerLabel)
	assert.Equal(t, model.MustParseDate("2024-01-15"), ranges[0].EndDate)
	assert.Equal(t, model.MustParseDate("2024-03-01"), ranges[1].StartDate)
}

func TestGetBookedDates_EmptyListIsNotNil(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	ranges, err := backend.GetBookedDates(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ranges)
	assert.Empty(t, ranges)
}

func TestGetBookedDates_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantRemote bool
	}{
		{name: "success false", status: http.StatusOK, body: `{"success":false,"message":"db down"}`, wantRemote: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`, wantRemote: true},
		{name: "malformed json", status: http.StatusOK, body: `{"success":tru`},
		{name: "inverted range", status: http.StatusOK, body: `{"success":true,"bookedDates":[{"ownerLabel":"x","startDate":"2024-01-15","endDate":"2024-01-10"}]}`},
		{name: "bad date", status: http.StatusOK, body: `{"success":true,"bookedDates":[{"ownerLabel":"x","startDate":"soon","endDate":"2024-01-10"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			ranges, err := backend.GetBookedDates(context.Background())
			require.Error(t, err)
			assert.Nil(t, ranges)

			var remote *RemoteError
			assert.Equal(t, tt.wantRemote, errors.As(err, &remote))
		})
	}
}

func TestCreateOrder(t *testing.T) {
	var received model.OrderRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, createOrderPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"success":true,"orderId":"order_123","amount":250000,"currency":"INR"}`))
	})

	req := model.OrderRequest{
		Amount:         250000,
		RequesterName:  "Asha Rao",
		RequesterOrg:   "North College",
		RequesterEmail: "asha@north.edu",
		Headcount:      25,
	}
	order, err := backend.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "order_123", order.OrderID)
	assert.Equal(t, int64(250000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, model.Requester{Email: "asha@north.edu", Org: "North College", Headcount: 25}, order.IssuedAgainst)
	assert.Equal(t, req, received)
}

func TestCreateOrder_RemoteFailure(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"gateway rejected"}`))
	})

	order, err := backend.CreateOrder(context.Background(), model.OrderRequest{Amount: 1})
	require.Error(t, err)
	assert.Nil(t, order)

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "gateway rejected", remote.Message)
}

func TestCreateOrder_MissingOrderID(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := backend.CreateOrder(context.Background(), model.OrderRequest{Amount: 1})
	require.Error(t, err)
}

func TestVerifyPayment(t *testing.T) {
	var received model.VerifyPaymentRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, verifyPaymentPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		if received.Signature == "bad" {
			_, _ = w.Write([]byte(`{"success":false,"message":"signature mismatch"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	req := model.VerifyPaymentRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig", Amount: 500}
	require.NoError(t, backend.VerifyPayment(context.Background(), req))
	assert.Equal(t, req, received)

	req.Signature = "bad"
	err := backend.VerifyPayment(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature mismatch")
}

func TestSubmitRegistration(t *testing.T) {
	var raw map[string]any
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, registrationsPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"success":true,"message":"registered","registrationId":"reg_42"}`))
	})

	payload := model.RegistrationPayload{
		Registration: model.Registration{
			OrganizationName: "North College",
			StartDate:        model.MustParseDate("2024-05-01"),
			EndDate:          model.MustParseDate("2024-05-30"),
		},
		PaymentProof: model.PaymentProof{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"},
		Amount:       500,
	}

	result, err := backend.SubmitRegistration(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "reg_42", result.RegistrationID)

	assert.Equal(t, "North College", raw["organizationName"])
	assert.Equal(t, "pay_1", raw["paymentId"])
	assert.Equal(t, "2024-05-01", raw["startDate"])
	assert.EqualValues(t, 500, raw["amount"])
}

func TestSubmitRegistration_SuccessFalseCarriesMessage(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"dates already taken"}`))
	})

	_, err := backend.SubmitRegistration(context.Background(), model.RegistrationPayload{})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "dates already taken", remote.Message)
}

func TestHttpClient_ContextCancelled(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := backend.GetBookedDates(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRemoteError_Message(t *testing.T) {
	assert.Equal(t, "create order: nope", (&RemoteError{Operation: "create order", Message: "nope"}).Error())
	assert.Equal(t, "verify payment: backend returned status 502", (&RemoteError{Operation: "verify payment", StatusCode: 502}).Error())
}

func TestSubmitRegistration_ErrorCodeIsNotAMessage(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"INTERNAL_ERROR"}`))
	})

	_, err := backend.SubmitRegistration(context.Background(), model.RegistrationPayload{})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	assert.Empty(t, remote.Message)
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"dates taken","error":"conflict"}`, "dates taken"},
		{"error only", `{"error":"conflict"}`, "conflict"},
		{"code only", `{"code":"INTERNAL_ERROR"}`, ""},
		{"not json", `<html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorMessage(&Response{Body: []byte(tt.body)}))
		})
	}
}

func TestHttpClient_ResponseSizeCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"bookedDates":[]}` + strings.Repeat(" ", 512)))
	}))
	t.Cleanup(server.Close)

	backend := NewBackend(server.URL, 2*time.Second, 256)
	_, err := backend.GetBookedDates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResponseTooLarge))

	roomy := NewBackend(server.URL, 2*time.Second, 4096)
	ranges, err := roomy.GetBookedDates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
