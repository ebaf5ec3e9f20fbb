package handler

import (
	"net/http"

	availabilityerrors "cohort/internal/availability/errors"
	"cohort/internal/availability/service"
	apperrors "cohort/pkg/errors"
	httputil "cohort/pkg/http"
	"cohort/pkg/logger"
	"cohort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

type overviewResponse struct {
	Status      service.Status       `json:"status"`
	BookedDates []model.BookingRange `json:"bookedDates"`
}

type checkResponse struct {
	Available bool                 `json:"available"`
	Conflicts []model.BookingRange `json:"conflicts"`
	Status    service.Status       `json:"status"`
}

type nextStartResponse struct {
	NextStart model.Date     `json:"nextStart"`
	Status    service.Status `json:"status"`
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := overviewResponse{
		Status:      h.service.Status(),
		BookedDates: h.service.BookedRanges(),
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Refresh(service.WithTrigger(r.Context(), "api")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Refresh", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, h.service.Status()); err != nil {
		h.log.Error("failed to write success response", "handler", "Refresh", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	candidate, err := parseCandidate(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	conflicts := h.service.ConflictingRanges(candidate)
	resp := checkResponse{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
		Status:    h.service.Status(),
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) NextStart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, err := httputil.ParseDateQuery(r, "from")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "NextStart", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp := nextStartResponse{
		NextStart: h.service.NextAvailableStart(from),
		Status:    h.service.Status(),
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "NextStart", "operation", "WriteSuccess", "error", err)
	}
}

func parseCandidate(r *http.Request) (model.CandidateRange, error) {
	start, err := httputil.ParseDateQuery(r, "start")
	if err != nil {
		return model.CandidateRange{}, err
	}
	end, err := httputil.ParseDateQuery(r, "end")
	if err != nil {
		return model.CandidateRange{}, err
	}

	candidate := model.CandidateRange{StartDate: start, EndDate: end}
	if !candidate.Valid() {
		return model.CandidateRange{}, apperrors.InvalidInput(availabilityerrors.ErrInvalidRange.Error())
	}
	return candidate, nil
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Get)
	router.POST("/api/v1/availability/refresh", h.Refresh)
	router.GET("/api/v1/availability/check", h.Check)
	router.GET("/api/v1/availability/next-start", h.NextStart)
}
