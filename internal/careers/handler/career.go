package handler

import (
	"errors"
	"io"
	"net/http"

	careererrors "cohort/internal/careers/errors"
	"cohort/internal/careers/service"
	"cohort/internal/careers/validator"
	apperrors "cohort/pkg/errors"
	httputil "cohort/pkg/http"
	"cohort/pkg/logger"
	"cohort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	multipartMemory = 1 << 20
	sniffLength     = 3072

	submittedMessage = "Application submitted successfully"
)

type CareerHandler struct {
	service service.CareerService
	log     *logger.Logger
}

func NewCareerHandler(service service.CareerService, log *logger.Logger) *CareerHandler {
	return &CareerHandler{
		service: service,
		log:     log,
	}
}

type applicationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserKey string `json:"userKey,omitempty"`
}

func (h *CareerHandler) Apply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	app, err := h.readApplication(r)
	if err != nil {
		h.reject(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Submit(r.Context(), app); err != nil {
		status := http.StatusInternalServerError
		message := careererrors.ErrSubmitFailed.Error()
		if appErr := apperrors.AsAppError(err); appErr.StatusCode() == http.StatusBadRequest {
			status = http.StatusBadRequest
			message = appErr.Message
		} else {
			h.log.Error("Career application failed", "handler", "Apply", "operation", "Submit", "error", err)
		}
		h.reject(w, status, message)
		return
	}

	resp := applicationResponse{Success: true, Message: submittedMessage, UserKey: app.UserKey}
	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Apply", "operation", "WriteJSON", "error", err)
	}
}

func (h *CareerHandler) reject(w http.ResponseWriter, status int, message string) {
	if err := httputil.WriteJSON(w, status, applicationResponse{Success: false, Message: message}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Apply", "operation", "WriteJSON", "error", err)
	}
}

func (h *CareerHandler) readApplication(r *http.Request) (*model.CareerApplication, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, careererrors.ErrResumeTooLarge
		}
		return nil, careererrors.ErrInvalidForm
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	app := &model.CareerApplication{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Position: r.FormValue("position"),
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, careererrors.ErrResumeRequired
		}
		return nil, careererrors.ErrInvalidForm
	}
	defer file.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, careererrors.ErrInvalidForm
	}

	app.Resume = model.Resume{
		Filename:    header.Filename,
		ContentType: validator.ResolveResumeType(header.Filename, header.Header.Get("Content-Type"), head[:n]),
		Size:        header.Size,
	}
	return app, nil
}

func (h *CareerHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/careers/applications", h.Apply)
}
