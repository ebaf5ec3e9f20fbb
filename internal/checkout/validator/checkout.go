package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cohort/pkg/logger"
	"cohort/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CheckoutValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCheckoutValidator(log *logger.Logger) *CheckoutValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("unique_participants", validateUniqueParticipants); err != nil {
		log.Fatal("Failed to register 'unique_participants' validator",
			"error", err,
		)
	}

	log.Info("Checkout validator initialized successfully")

	return &CheckoutValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// validateUniqueParticipants rejects the same participant email listed twice.
func validateUniqueParticipants(fl validator.FieldLevel) bool {
	participants, ok := fl.Field().Interface().([]model.Participant)
	if !ok {
		return false
	}

	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		key := strings.ToLower(strings.TrimSpace(p.Email))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

func (v *CheckoutValidator) ValidateOrder(req *model.OrderRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CheckoutValidator) ValidateRegistration(reg *model.Registration) error {
	if err := v.validate.Struct(reg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if reg.StartDate.IsZero() || reg.EndDate.IsZero() {
		return ValidationErrors{
			ValidationError{
				Field:   "startDate",
				Message: "startDate and endDate are required",
			},
		}
	}

	if reg.EndDate.Before(reg.StartDate) {
		return ValidationErrors{
			ValidationError{
				Field:   "endDate",
				Message: "endDate must not be before startDate",
			},
		}
	}

	return nil
}

// ValidateAttempt checks everything a checkout needs before any remote call.
func (v *CheckoutValidator) ValidateAttempt(req *model.OrderRequest, reg *model.Registration) error {
	var all ValidationErrors

	for _, err := range []error{v.ValidateOrder(req), v.ValidateRegistration(reg)} {
		if err == nil {
			continue
		}
		var errs ValidationErrors
		if !errors.As(err, &errs) {
			return err
		}
		all = append(all, errs...)
	}

	if len(all) > 0 {
		return all
	}
	return nil
}

func (v *CheckoutValidator) ValidateProof(proof *model.PaymentProof) error {
	if err := v.validate.Struct(proof); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CheckoutValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +919876543210)", err.Field())
		case "iso4217":
			message = fmt.Sprintf("%s must be an ISO 4217 currency code", err.Field())
		case "unique_participants":
			message = fmt.Sprintf("%s must not list the same email twice", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
