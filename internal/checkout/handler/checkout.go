package handler

import (
	"net/http"

	"cohort/internal/checkout/service"
	"cohort/internal/checkout/validator"
	apperrors "cohort/pkg/errors"
	httputil "cohort/pkg/http"
	"cohort/pkg/logger"
	"cohort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CheckoutHandler struct {
	service   service.CheckoutService
	validator *validator.CheckoutValidator
	log       *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, validator *validator.CheckoutValidator, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

type startRequest struct {
	Order        model.OrderRequest `json:"order"`
	Registration model.Registration `json:"registration"`
}

type acceptedResponse struct {
	SessionID string `json:"sessionId"`
	Accepted  string `json:"accepted"`
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req startRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Start", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	view, err := h.service.Start(r.Context(), req.Order, req.Registration)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Start", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteAccepted(w, view); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Start", "operation", "WriteAccepted", "error", err)
	}
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.Get(ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var proof model.PaymentProof
	if err := httputil.DecodeJSON(r, &proof); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Complete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.validator.ValidateProof(&proof); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Validation(err.Error(), map[string]any{"errors": err})); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Complete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.service.Complete(id, proof); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Complete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteAccepted(w, acceptedResponse{SessionID: id, Accepted: "completed"}); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Complete", "operation", "WriteAccepted", "error", err)
	}
}

func (h *CheckoutHandler) Dismiss(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Dismiss(id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Dismiss", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteAccepted(w, acceptedResponse{SessionID: id, Accepted: "dismissed"}); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Dismiss", "operation", "WriteAccepted", "error", err)
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/checkout/sessions", h.Start)
	router.GET("/api/v1/checkout/sessions/:id", h.Get)
	router.POST("/api/v1/checkout/sessions/:id/complete", h.Complete)
	router.POST("/api/v1/checkout/sessions/:id/dismiss", h.Dismiss)
}
