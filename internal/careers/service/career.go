package service

import (
	"context"
	"errors"
	"time"

	careererrors "cohort/internal/careers/errors"
	"cohort/internal/careers/validator"
	"cohort/pkg/config"
	apperrors "cohort/pkg/errors"
	"cohort/pkg/events"
	"cohort/pkg/metrics"
	"cohort/pkg/model"
	"cohort/pkg/sanitizer"

	"github.com/google/uuid"
)

type CareerService interface {
	Submit(ctx context.Context, app *model.CareerApplication) error
}

type careerService struct {
	validator *validator.CareerValidator
	publisher events.Publisher
	cfg       *config.Config
	metrics   *metrics.Metrics
}

func NewCareerService(validator *validator.CareerValidator, publisher events.Publisher, cfg *config.Config, m *metrics.Metrics) CareerService {
	return &careerService{
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
	}
}

// Submit accepts an application and forwards its metadata. The resume itself is
// never stored or forwarded.
func (s *careerService) Submit(ctx context.Context, app *model.CareerApplication) error {
	s.sanitize(app)

	if err := s.validator.Validate(app); err != nil {
		s.metrics.ObserveCareerApplication("rejected")
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			s.cfg.Log.Warn("Career application rejected", "position", app.Position, "error", err)
			return apperrors.InvalidInput(errs.First()).WithDetails(map[string]any{"errors": errs})
		}
		return apperrors.Internal(careererrors.ErrSubmitFailed.Error(), err)
	}

	app.UserKey = uuid.NewString()

	s.cfg.Log.Info("Career application received",
		"user_key", app.UserKey,
		"name", app.Name,
		"email", app.Email,
		"position", app.Position,
		"resume_filename", app.Resume.Filename,
		"resume_type", app.Resume.ContentType,
		"resume_size", app.Resume.Size,
	)

	event := events.Event{
		Type:          events.TypeCareerApplication,
		Key:           app.UserKey,
		CorrelationID: app.UserKey,
		Payload: events.CareerApplicationReceived{
			UserKey:           app.UserKey,
			Name:              app.Name,
			Email:             app.Email,
			Position:          app.Position,
			ResumeFilename:    app.Resume.Filename,
			ResumeContentType: app.Resume.ContentType,
			ResumeSize:        app.Resume.Size,
			OccurredAt:        time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish career application event",
			"user_key", app.UserKey,
			"error", err,
		)
	}

	s.metrics.ObserveCareerApplication("accepted")
	return nil
}

func (s *careerService) sanitize(app *model.CareerApplication) {
	app.Name = sanitizer.NormalizeName(app.Name)
	app.Email = sanitizer.NormalizeEmail(app.Email)
	app.Phone = sanitizer.NormalizePhone(app.Phone)
	app.Position = sanitizer.TrimAndNormalize(app.Position)
	app.Resume.Filename = sanitizer.TrimAndNormalize(app.Resume.Filename)
}
