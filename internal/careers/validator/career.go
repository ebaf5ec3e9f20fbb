package validator

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"reflect"
	"strings"

	careererrors "cohort/internal/careers/errors"
	"cohort/pkg/logger"
	"cohort/pkg/model"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	genericMediaType = "application/octet-stream"
)

var (
	allowedResumeTypes = map[string]struct{}{
		MimePDF:  {},
		MimeDOC:  {},
		MimeDOCX: {},
	}

	resumeTypeByExt = map[string]string{
		".pdf":  MimePDF,
		".doc":  MimeDOC,
		".docx": MimeDOCX,
	}
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

// First returns the message shown to the applicant.
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

type CareerValidator struct {
	validate      *validator.Validate
	maxResumeSize int64
	logger        *logger.Logger
}

func NewCareerValidator(maxResumeSize int64, log *logger.Logger) *CareerValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &CareerValidator{
		validate:      v,
		maxResumeSize: maxResumeSize,
		logger:        log,
	}
}

func (v *CareerValidator) Validate(app *model.CareerApplication) error {
	if err := v.validate.Struct(app); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if app.Resume.Size <= 0 {
		return ValidationErrors{
			ValidationError{Field: "resume", Message: careererrors.ErrResumeRequired.Error()},
		}
	}

	if _, ok := allowedResumeTypes[app.Resume.ContentType]; !ok {
		return ValidationErrors{
			ValidationError{Field: "resume", Message: careererrors.ErrResumeType.Error()},
		}
	}

	if app.Resume.Size > v.maxResumeSize {
		return ValidationErrors{
			ValidationError{
				Field:   "resume",
				Message: fmt.Sprintf("%s: maximum size is %s", careererrors.ErrResumeTooLarge, humanSize(v.maxResumeSize)),
			},
		}
	}

	return nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func (v *CareerValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = "please provide a valid email address"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// ResolveResumeType picks the resume's MIME type from the declared part type.
// Only a missing or generic declaration falls back to the file extension and
// then to the leading bytes of the file.
func ResolveResumeType(filename, declared string, head []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		mediaType = strings.ToLower(mediaType)
		if mediaType != genericMediaType {
			return mediaType
		}
	}

	if byExt, ok := resumeTypeByExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return byExt
	}

	if len(head) > 0 {
		detected := mimetype.Detect(head)
		for m := detected; m != nil; m = m.Parent() {
			if _, ok := allowedResumeTypes[m.String()]; ok {
				return m.String()
			}
		}
	}

	if declared == "" {
		return genericMediaType
	}
	return declared
}
